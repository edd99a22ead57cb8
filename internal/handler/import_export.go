package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type ImportExportHandler struct {
	Ledger *ledger.Ledger
}

func NewImportExportHandler(l *ledger.Ledger) *ImportExportHandler {
	return &ImportExportHandler{Ledger: l}
}

var txTypeLabels = map[ledger.TxType]string{
	ledger.TxSale:     "Venda",
	ledger.TxCashIn:   "Entrada",
	ledger.TxCashOut:  "Saída",
	ledger.TxReceipt:  "Recebimento",
	ledger.TxReversal: "Estorno",
}

var exportHeaders = []string{"ID", "Data", "Tipo", "Descrição", "Cliente", "Método", "Estado", "Desconto", "Valor"}

// exportRows flattens the transaction history for CSV and XLSX output.
func (h *ImportExportHandler) exportRows() [][]string {
	names := make(map[int64]string)
	for _, cust := range h.Ledger.Customers("") {
		names[cust.ID] = cust.Name
	}
	loc := h.Ledger.Location()

	txs := h.Ledger.Transactions()
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		customer := ""
		if t.CustomerID != nil {
			customer = names[*t.CustomerID]
		}
		status := string(t.Status)
		if t.Reversed {
			status = "Estornada"
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Time(loc).Format("2006-01-02 15:04"),
			txTypeLabels[t.Type],
			t.Description,
			customer,
			t.Method,
			status,
			util.FormatMoney(t.Discount),
			util.FormatMoney(t.Amount),
		})
	}
	return rows
}

func (h *ImportExportHandler) stamp() string {
	return time.Now().In(h.Ledger.Location()).Format("20060102")
}

// ExportCSV writes the transaction history as CSV.
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	rows := h.exportRows()

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transacoes_%s.csv\"", h.stamp()))

	// UTF-8 BOM so spreadsheet apps pick up the accents
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeaders)
	_ = w.WriteAll(rows)
}

// ExportXLSX: history sheet + annual sheet for ?year=.
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	report, err := h.Ledger.PeriodReport(ledger.PeriodAnnual, year, 0)
	if err != nil {
		writeError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const txSheet = "Transações"
	if err := f.SetSheetName("Sheet1", txSheet); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "falha ao criar planilha")
		return
	}
	for i, hd := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(txSheet, cell, hd)
	}
	for r, row := range h.exportRows() {
		for i, v := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(txSheet, cell, v)
		}
	}
	f.SetColWidth(txSheet, "A", "A", 16)
	f.SetColWidth(txSheet, "B", "B", 18)
	f.SetColWidth(txSheet, "D", "D", 32)
	f.SetColWidth(txSheet, "E", "E", 24)

	annualSheet := fmt.Sprintf("Anual %d", report.Start.Year())
	if _, err := f.NewSheet(annualSheet); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "falha ao criar planilha")
		return
	}
	f.SetSheetRow(annualSheet, "A1", &[]interface{}{"Mês", "Pago", "Não Pago", "Bruto", "Descontos", "Custo", "Lucro", "Margem (%)"})
	for i, m := range report.Months {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetSheetRow(annualSheet, cell, &[]interface{}{
			m.Label,
			util.FormatMoney(m.Paid),
			util.FormatMoney(m.Unpaid),
			util.FormatMoney(m.Gross),
			util.FormatMoney(m.Discount),
			util.FormatMoney(m.Cost),
			util.FormatMoney(m.Profit),
			util.FormatMoney(m.Margin),
		})
	}
	s := report.Summary
	cell, _ := excelize.CoordinatesToCellName(1, len(report.Months)+2)
	f.SetSheetRow(annualSheet, cell, &[]interface{}{
		"Total",
		"",
		"",
		util.FormatMoney(s.Gross),
		util.FormatMoney(s.Discounts),
		util.FormatMoney(s.Cost),
		util.FormatMoney(s.Profit),
		util.FormatMoney(s.Margin),
	})

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transacoes_%s.xlsx\"", h.stamp()))
	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "falha ao exportar")
	}
}

// ---------- snapshot ----------

func (h *ImportExportHandler) ExportJSON(c *gin.Context) {
	snap := h.Ledger.Export()
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "falha ao exportar")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"papelaria_backup_%s.json\"", h.stamp()))
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// ImportJSON validates an uploaded snapshot and parks a restore; nothing is
// replaced until it is confirmed.
func (h *ImportExportHandler) ImportJSON(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ficheiro em falta")
		return
	}
	src, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ficheiro ilegível")
		return
	}
	defer src.Close()

	snap, err := ledger.ParseSnapshot(src)
	if err != nil {
		writeError(c, err)
		return
	}
	a, err := h.Ledger.RequestRestore(snap)
	respond(c, util.Response{"pending": a, "backupDate": snap.BackupDate}, err)
}

// ImportSales loads historical sales from an uploaded CSV.
func (h *ImportExportHandler) ImportSales(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ficheiro em falta")
		return
	}
	src, err := fh.Open()
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ficheiro ilegível")
		return
	}
	defer src.Close()

	res, err := h.Ledger.ImportSales(src)
	respond(c, res, err)
}
