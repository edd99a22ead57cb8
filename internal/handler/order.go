package handler

import (
	"net/http"
	"time"

	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

// OrderHandler serves custom orders and the delivery calendar.
type OrderHandler struct {
	Ledger *ledger.Ledger
}

func NewOrderHandler(l *ledger.Ledger) *OrderHandler {
	return &OrderHandler{Ledger: l}
}

// ListOrders returns all orders, the ones due on ?date=YYYY-MM-DD, or the
// ones delivered in ?year=&month=.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	if day := c.Query("date"); day != "" {
		list, err := h.Ledger.OrdersOn(day)
		respond(c, util.Response{"items": list}, err)
		return
	}

	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}
	if year == 0 && month == 0 {
		util.Success(c, util.Response{"items": h.Ledger.Orders()})
		return
	}
	if year <= 0 || month < 1 || month > 12 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "mês inválido")
		return
	}
	util.Success(c, util.Response{"items": h.Ledger.OrdersInMonth(year, time.Month(month))})
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req ledger.OrderInput
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.Ledger.AddOrder(req)
	respond(c, util.Response{"order": o}, err)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ledger.OrderInput
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.Ledger.EditOrder(id, req)
	respond(c, util.Response{"order": o}, err)
}
