package handler

import (
	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

// ConfirmHandler: request returns a token, confirm runs it.
type ConfirmHandler struct {
	Ledger *ledger.Ledger
}

func NewConfirmHandler(l *ledger.Ledger) *ConfirmHandler {
	return &ConfirmHandler{Ledger: l}
}

type actionRequest struct {
	Kind     ledger.ActionKind `json:"kind" binding:"required"`
	TargetID int64             `json:"targetId"`
}

func (h *ConfirmHandler) Request(c *gin.Context) {
	var req actionRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Ledger.RequestAction(req.Kind, req.TargetID)
	respond(c, util.Response{"pending": a}, err)
}

// ---------- DELETE routes ----------

func (h *ConfirmHandler) requestFor(kind ledger.ActionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		a, err := h.Ledger.RequestAction(kind, id)
		respond(c, util.Response{"pending": a}, err)
	}
}

func (h *ConfirmHandler) DeleteProduct() gin.HandlerFunc {
	return h.requestFor(ledger.ActionDeleteProduct)
}

func (h *ConfirmHandler) DeleteCategory() gin.HandlerFunc {
	return h.requestFor(ledger.ActionDeleteCategory)
}

func (h *ConfirmHandler) DeleteCustomer() gin.HandlerFunc {
	return h.requestFor(ledger.ActionDeleteCustomer)
}

func (h *ConfirmHandler) DeleteRawMaterial() gin.HandlerFunc {
	return h.requestFor(ledger.ActionDeleteRawMaterial)
}

func (h *ConfirmHandler) DeleteOrder() gin.HandlerFunc {
	return h.requestFor(ledger.ActionDeleteOrder)
}

func (h *ConfirmHandler) DeleteTransaction() gin.HandlerFunc {
	return h.requestFor(ledger.ActionDeleteTransaction)
}

func (h *ConfirmHandler) ReverseSale() gin.HandlerFunc {
	return h.requestFor(ledger.ActionReverseSale)
}

// ---------- pending actions ----------

func (h *ConfirmHandler) Reset(c *gin.Context) {
	a, err := h.Ledger.RequestAction(ledger.ActionReset, 0)
	respond(c, util.Response{"pending": a}, err)
}

func (h *ConfirmHandler) Pending(c *gin.Context) {
	a, ok := h.Ledger.Pending()
	if !ok {
		util.Success(c, util.Response{"pending": nil})
		return
	}
	util.Success(c, util.Response{"pending": a})
}

type confirmRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *ConfirmHandler) Confirm(c *gin.Context) {
	var req confirmRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.Ledger.Confirm(req.Token)
	respond(c, util.Response{"done": a}, err)
}

func (h *ConfirmHandler) Cancel(c *gin.Context) {
	h.Ledger.CancelPending()
	util.Success(c, util.Response{"pending": nil})
}
