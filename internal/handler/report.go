package handler

import (
	"time"

	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	Ledger *ledger.Ledger
}

func NewReportHandler(l *ledger.Ledger) *ReportHandler {
	return &ReportHandler{Ledger: l}
}

// Period serves /reports/:period with optional ?year= and ?month=.
func (h *ReportHandler) Period(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}
	r, err := h.Ledger.PeriodReport(ledger.Period(c.Param("period")), year, time.Month(month))
	respond(c, r, err)
}

func (h *ReportHandler) Customers(c *gin.Context) {
	util.Success(c, util.Response{"items": h.Ledger.CustomerReport()})
}

func (h *ReportHandler) Products(c *gin.Context) {
	util.Success(c, h.Ledger.ProductPerformance())
}

// ProductSales lists who bought a product; ?customer= filters by name.
func (h *ReportHandler) ProductSales(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	s, err := h.Ledger.ProductSales(id, c.Query("customer"))
	respond(c, s, err)
}

func (h *ReportHandler) CashClosing(c *gin.Context) {
	util.Success(c, h.Ledger.CashClosing())
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	util.Success(c, h.Ledger.Dashboard())
}
