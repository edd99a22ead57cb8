package handler

import (
	"errors"
	"net/http"
	"strconv"

	"papelaria-pdv/internal/backup"
	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

var conflictErrors = []error{
	ledger.ErrDuplicateName,
	ledger.ErrDuplicateBarcode,
	ledger.ErrInsufficientCash,
	ledger.ErrProtectedEntity,
	ledger.ErrReferenced,
	ledger.ErrSaleReversed,
	ledger.ErrSaleNotUnpaid,
	ledger.ErrNoPendingAction,
}

var badRequestErrors = []error{
	ledger.ErrEmptyName,
	ledger.ErrInvalidAmount,
	ledger.ErrInvalidCreditCustomer,
	ledger.ErrEmptyCart,
	ledger.ErrCartIndex,
	ledger.ErrNotASale,
	ledger.ErrInvalidStatus,
	ledger.ErrInvalidDiscount,
	ledger.ErrInvalidDate,
	ledger.ErrInvalidPeriod,
	ledger.ErrInvalidSnapshot,
	ledger.ErrInvalidTheme,
	ledger.ErrUnknownAction,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// writeError maps ledger errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case isAny(err, conflictErrors):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case isAny(err, badRequestErrors):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case errors.Is(err, ledger.ErrPersist):
		util.Error(c, http.StatusInsufficientStorage, util.CodeStorage, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "erro interno")
	}
}

// respond writes data, or the error. A persistence failure still carries the
// data since the change was applied in memory.
func respond(c *gin.Context, data interface{}, err error) {
	switch {
	case err == nil:
		util.Success(c, data)
	case errors.Is(err, ledger.ErrPersist):
		util.Partial(c, err.Error(), data)
	default:
		writeError(c, err)
	}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "id inválido")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "parâmetros inválidos")
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	s := c.Query(key)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, key+" inválido")
		return 0, false
	}
	return n, true
}
