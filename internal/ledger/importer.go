package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// importDateLayout is the local date-time format of the import file.
const importDateLayout = "2006-01-02T15:04"

// ImportLineError describes a rejected row. Line is 1-based in the file.
type ImportLineError struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported int               `json:"imported"`
	Errors   []ImportLineError `json:"errors"`
}

// ImportSales reads historical sales, one per row:
//
//	date,productId,quantity,customerId,method,status
//
// Valid rows become sales immediately; invalid ones are reported and skipped.
// Imported sales never touch the cash balance.
func (l *Ledger) ImportSales(r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	l.mu.Lock()
	defer l.mu.Unlock()

	res := ImportResult{Errors: []ImportLineError{}}
	ids := map[int64]bool{}
	for _, t := range l.state.Transactions {
		ids[t.ID] = true
	}

	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Errors = append(res.Errors, ImportLineError{Line: pe.Line, Reason: pe.Err.Error()})
				continue
			}
			return res, err
		}
		line, _ := cr.FieldPos(0)
		raw := strings.Join(rec, ",")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		t, reason := l.parseImportRow(rec)
		if reason != "" {
			res.Errors = append(res.Errors, ImportLineError{Line: line, Raw: raw, Reason: reason})
			continue
		}
		id := t.Date + int64(row)
		for ids[id] {
			id++
		}
		ids[id] = true
		if id > l.lastID {
			l.lastID = id
		}
		t.ID = id
		l.state.Transactions = append(l.state.Transactions, t)
		res.Imported++
	}

	if res.Imported == 0 {
		return res, nil
	}
	sortTransactions(l.state.Transactions)
	l.log.Info("vendas importadas", "imported", res.Imported, "rejected", len(res.Errors))
	return res, l.commit()
}

func (l *Ledger) parseImportRow(rec []string) (Transaction, string) {
	if len(rec) < 6 {
		return Transaction{}, "número de colunas inválido"
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	rec[0] = strings.TrimPrefix(rec[0], "\ufeff")

	date, err := time.ParseInLocation(importDateLayout, rec[0], l.loc)
	if err != nil {
		return Transaction{}, fmt.Sprintf("data inválida %q", rec[0])
	}
	productID, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return Transaction{}, fmt.Sprintf("produto inválido %q", rec[1])
	}
	p := l.productByID(productID)
	if p == nil {
		return Transaction{}, fmt.Sprintf("produto %d não encontrado", productID)
	}
	qty, err := strconv.Atoi(rec[2])
	if err != nil || qty <= 0 {
		return Transaction{}, fmt.Sprintf("quantidade inválida %q", rec[2])
	}
	customerID, err := strconv.ParseInt(rec[3], 10, 64)
	if err != nil || l.customerByID(customerID) == nil {
		return Transaction{}, fmt.Sprintf("cliente %q não encontrado", rec[3])
	}
	if rec[4] == "" {
		return Transaction{}, "método de pagamento em falta"
	}
	status := SaleStatus(rec[5])
	if !status.valid() {
		return Transaction{}, fmt.Sprintf("estado inválido %q", rec[5])
	}

	item := newLineItem(*p, qty)
	return Transaction{
		Type:         TxSale,
		Amount:       item.Total(),
		Date:         date.UnixMilli(),
		Description:  "Venda importada",
		Items:        []LineItem{item},
		Cost:         p.Cost * float64(qty),
		CustomerID:   &customerID,
		Method:       rec[4],
		Installments: 1,
		Status:       status,
	}, ""
}
