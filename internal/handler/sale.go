package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

// SaleHandler serves the cart, checkout, the sale lifecycle and cash flow.
type SaleHandler struct {
	Ledger *ledger.Ledger
}

func NewSaleHandler(l *ledger.Ledger) *SaleHandler {
	return &SaleHandler{Ledger: l}
}

// ---------- cart ----------

func (h *SaleHandler) GetCart(c *gin.Context) {
	util.Success(c, h.Ledger.Cart())
}

type addToCartRequest struct {
	ProductID int64  `json:"productId"`
	Barcode   string `json:"barcode"`
}

// AddToCart accepts either a product id or a scanned barcode.
func (h *SaleHandler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if !bindJSON(c, &req) {
		return
	}
	var (
		view ledger.CartView
		err  error
	)
	if req.Barcode != "" {
		view, err = h.Ledger.AddToCartByBarcode(req.Barcode)
	} else {
		view, err = h.Ledger.AddToCart(req.ProductID)
	}
	respond(c, view, err)
}

func cartIndex(c *gin.Context) (int, bool) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "índice inválido")
		return 0, false
	}
	return i, true
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

func (h *SaleHandler) ChangeQuantity(c *gin.Context) {
	i, ok := cartIndex(c)
	if !ok {
		return
	}
	var req quantityRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.Ledger.ChangeQuantity(i, req.Delta)
	respond(c, view, err)
}

func (h *SaleHandler) RemoveFromCart(c *gin.Context) {
	i, ok := cartIndex(c)
	if !ok {
		return
	}
	view, err := h.Ledger.RemoveFromCart(i)
	respond(c, view, err)
}

func (h *SaleHandler) SetItemDiscount(c *gin.Context) {
	i, ok := cartIndex(c)
	if !ok {
		return
	}
	var req ledger.Discount
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.Ledger.SetItemDiscount(i, req)
	respond(c, view, err)
}

func (h *SaleHandler) SetGeneralDiscount(c *gin.Context) {
	var req ledger.Discount
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.Ledger.SetGeneralDiscount(req)
	respond(c, view, err)
}

func (h *SaleHandler) ClearCart(c *gin.Context) {
	h.Ledger.ClearCart()
	util.Success(c, h.Ledger.Cart())
}

// ---------- checkout ----------

type checkoutRequest struct {
	CustomerID   *int64            `json:"customerId"`
	Method       string            `json:"method"`
	Installments int               `json:"installments"`
	Status       ledger.SaleStatus `json:"status"`
	Retroactive  bool              `json:"isRetroactive"`
	// Date is a local YYYY-MM-DDTHH:MM, used for retroactive sales.
	Date string `json:"date"`
}

func (h *SaleHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	in := ledger.CheckoutRequest{
		CustomerID:   req.CustomerID,
		Method:       req.Method,
		Installments: req.Installments,
		Status:       req.Status,
		Retroactive:  req.Retroactive,
	}
	if req.Retroactive && req.Date != "" {
		d, err := time.ParseInLocation("2006-01-02T15:04", req.Date, h.Ledger.Location())
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "data da venda inválida")
			return
		}
		in.Date = d
	}
	sale, err := h.Ledger.Checkout(in)
	respond(c, util.Response{"sale": sale}, err)
}

type paymentRequest struct {
	Method       string `json:"method"`
	Installments int    `json:"installments"`
}

func (h *SaleHandler) ReceivePayment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	receipt, err := h.Ledger.ReceivePayment(id, req.Method, req.Installments)
	respond(c, util.Response{"receipt": receipt}, err)
}

func (h *SaleHandler) EditSale(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ledger.EditSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, err := h.Ledger.EditSale(id, req)
	respond(c, util.Response{"sale": sale}, err)
}

// ---------- history ----------

func (h *SaleHandler) ListTransactions(c *gin.Context) {
	util.Success(c, util.Response{"items": h.Ledger.Transactions()})
}

func (h *SaleHandler) GetTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := h.Ledger.Transaction(id)
	respond(c, util.Response{"transaction": t}, err)
}

func (h *SaleHandler) ListUnpaid(c *gin.Context) {
	util.Success(c, util.Response{"items": h.Ledger.UnpaidSales()})
}

type receiptLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

// Receipt renders a sale with currency-formatted values for printing.
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := h.Ledger.Transaction(id)
	if err != nil {
		writeError(c, err)
		return
	}
	if t.Type != ledger.TxSale {
		writeError(c, ledger.ErrNotASale)
		return
	}

	lines := make([]receiptLine, 0, len(t.Items))
	for _, it := range t.Items {
		d := ledger.ItemDiscount(it)
		lines = append(lines, receiptLine{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    util.FormatBRL(it.Price),
			Discount: util.FormatBRL(d),
			Total:    util.FormatBRL(it.Total() - d),
		})
	}
	util.Success(c, util.Response{
		"title":        fmt.Sprintf("Venda #%d", t.ID),
		"date":         t.Time(h.Ledger.Location()).Format("02/01/2006 15:04"),
		"lines":        lines,
		"subtotal":     util.FormatBRL(t.Subtotal()),
		"discount":     util.FormatBRL(t.Discount),
		"total":        util.FormatBRL(t.Amount),
		"method":       t.Method,
		"installments": t.Installments,
		"status":       t.Status,
		"reversed":     t.Reversed,
	})
}

// ---------- cash ----------

type cashRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (h *SaleHandler) CashIn(c *gin.Context) {
	var req cashRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Ledger.CashIn(req.Amount, req.Description)
	respond(c, util.Response{"transaction": t, "balance": h.Ledger.CashBalance()}, err)
}

func (h *SaleHandler) CashOut(c *gin.Context) {
	var req cashRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.Ledger.CashOut(req.Amount, req.Description)
	respond(c, util.Response{"transaction": t, "balance": h.Ledger.CashBalance()}, err)
}

// balance vs. history
func (h *SaleHandler) CashStatus(c *gin.Context) {
	r := h.Ledger.Reconcile()
	util.Success(c, util.Response{
		"balance":    r.Balance,
		"expected":   r.Expected,
		"drift":      r.Drift,
		"consistent": r.Consistent(),
	})
}
