package ledger

import (
	"fmt"
	"strings"
	"time"
)

// CheckoutRequest describes how the current cart is being paid.
type CheckoutRequest struct {
	CustomerID   *int64     `json:"customerId"`
	Method       string     `json:"method"`
	Installments int        `json:"installments"`
	Status       SaleStatus `json:"status"`
	Retroactive  bool       `json:"isRetroactive"`
	Date         time.Time  `json:"date"`
}

// installmentsFor keeps the requested count only for credit card payments.
func installmentsFor(method string, n int) int {
	if method == MethodCreditCard && n > 1 {
		return n
	}
	return 1
}

// Checkout turns the cart into a sale. A paid, non-retroactive sale adds its
// total to the cash balance. The cart is cleared on success.
func (l *Ledger) Checkout(req CheckoutRequest) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.cart.Items) == 0 {
		return Transaction{}, ErrEmptyCart
	}
	if req.Status == "" {
		req.Status = StatusPaid
	}
	if !req.Status.valid() {
		return Transaction{}, ErrInvalidStatus
	}
	if req.CustomerID != nil && l.customerByID(*req.CustomerID) == nil {
		if req.Status == StatusUnpaid {
			return Transaction{}, ErrInvalidCreditCustomer
		}
		return Transaction{}, fmt.Errorf("cliente %d: %w", *req.CustomerID, ErrNotFound)
	}

	method := strings.TrimSpace(req.Method)
	installments := 1
	if req.Status == StatusUnpaid {
		if req.CustomerID == nil || *req.CustomerID == WalkInCustomerID {
			return Transaction{}, ErrInvalidCreditCustomer
		}
		method = MethodOnCredit
	} else {
		if method == "" {
			method = MethodCash
		}
		installments = installmentsFor(method, req.Installments)
	}

	totals := ComputeTotals(l.cart.Items, l.cart.GeneralDiscount)
	var cost float64
	var units int
	for _, it := range l.cart.Items {
		cost += it.Cost * float64(it.Quantity)
		units += it.Quantity
	}

	date := l.nowMillis()
	if req.Retroactive && !req.Date.IsZero() {
		date = req.Date.UnixMilli()
	}

	sale := Transaction{
		ID:           l.nextID(),
		Type:         TxSale,
		Amount:       totals.Total,
		Date:         date,
		Description:  fmt.Sprintf("Venda de %d item(s)", units),
		Items:        append([]LineItem(nil), l.cart.Items...),
		Cost:         cost,
		Method:       method,
		Installments: installments,
		Status:       req.Status,
		Retroactive:  req.Retroactive,
		Discount:     totals.TotalDiscount,
	}
	if req.CustomerID != nil {
		id := *req.CustomerID
		sale.CustomerID = &id
	}

	if sale.Status == StatusPaid && !sale.Retroactive {
		l.applyCash(sale.Amount, "venda", sale.ID)
		sale.CashApplied = sale.Amount
	}
	l.insertTransaction(sale)
	l.cart = Cart{}
	l.log.Info("venda registada", "id", sale.ID, "total", sale.Amount, "status", sale.Status)

	return sale.clone(), l.commit()
}

// saleForUpdate finds a sale that can still be changed.
func (l *Ledger) saleForUpdate(id int64) (*Transaction, error) {
	_, t := l.findTransaction(id)
	if t == nil {
		return nil, ErrNotFound
	}
	if t.Type != TxSale {
		return nil, ErrNotASale
	}
	if t.Reversed {
		return nil, ErrSaleReversed
	}
	return t, nil
}

// ReceivePayment settles an unpaid sale. It records a recebimento entry for
// the sale amount and adds that amount to the cash balance.
func (l *Ledger) ReceivePayment(saleID int64, method string, installments int) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sale, err := l.saleForUpdate(saleID)
	if err != nil {
		return Transaction{}, err
	}
	if sale.Status != StatusUnpaid {
		return Transaction{}, ErrSaleNotUnpaid
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = MethodCash
	}
	installments = installmentsFor(method, installments)

	sale.Status = StatusPaid
	sale.Method = method
	sale.Installments = installments

	receipt := Transaction{
		ID:           l.nextID(),
		Type:         TxReceipt,
		Amount:       sale.Amount,
		Date:         l.nowMillis(),
		Description:  fmt.Sprintf("Recebimento da venda #%d", saleID),
		Method:       method,
		Installments: installments,
	}
	// insertTransaction may move sale in the slice.
	l.applyCash(receipt.Amount, "recebimento", receipt.ID)
	l.insertTransaction(receipt)

	return receipt, l.commit()
}

// ReverseSale marks a sale as reversed and records a negative estorno entry.
// Unless the sale is still unpaid its amount leaves the cash balance.
func (l *Ledger) ReverseSale(saleID int64) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rev, err := l.reverseSale(saleID)
	if err != nil {
		return Transaction{}, err
	}
	return rev, l.commit()
}

func (l *Ledger) reverseSale(saleID int64) (Transaction, error) {
	sale, err := l.saleForUpdate(saleID)
	if err != nil {
		return Transaction{}, err
	}
	amount := sale.Amount

	rev := Transaction{
		ID:          l.nextID(),
		Type:        TxReversal,
		Amount:      -amount,
		Date:        l.nowMillis(),
		Description: fmt.Sprintf("Estorno da venda #%d", saleID),
	}
	if sale.Status != StatusUnpaid {
		l.applyCash(-amount, "estorno", saleID)
		sale.CashApplied -= amount
	}
	sale.Reversed = true
	l.insertTransaction(rev)
	l.log.Info("venda estornada", "id", saleID, "amount", amount)
	return rev, nil
}

// EditSaleRequest changes the payment details of a sale.
type EditSaleRequest struct {
	Status       SaleStatus `json:"status"`
	Method       string     `json:"method"`
	Installments int        `json:"installments"`
}

// EditSale updates status, method and installments. Switching between paid
// and unpaid moves the sale amount in or out of the cash balance.
func (l *Ledger) EditSale(saleID int64, req EditSaleRequest) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !req.Status.valid() {
		return Transaction{}, ErrInvalidStatus
	}
	sale, err := l.saleForUpdate(saleID)
	if err != nil {
		return Transaction{}, err
	}
	if req.Status == StatusUnpaid && (sale.CustomerID == nil || *sale.CustomerID == WalkInCustomerID) {
		return Transaction{}, ErrInvalidCreditCustomer
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = sale.Method
	}
	old := sale.Status
	switch {
	case old == StatusUnpaid && req.Status == StatusPaid:
		l.applyCash(sale.Amount, "edição de venda", sale.ID)
		sale.CashApplied += sale.Amount
	case old == StatusPaid && req.Status == StatusUnpaid:
		l.applyCash(-sale.Amount, "edição de venda", sale.ID)
		sale.CashApplied -= sale.Amount
	}
	sale.Status = req.Status
	sale.Method = method
	sale.Installments = installmentsFor(method, req.Installments)

	return sale.clone(), l.commit()
}

// DeleteTransaction removes any transaction outright. The cash balance is not
// touched; Reconcile reports the resulting drift.
func (l *Ledger) DeleteTransaction(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.deleteTransaction(id); err != nil {
		return err
	}
	return l.commit()
}

func (l *Ledger) deleteTransaction(id int64) error {
	i, t := l.findTransaction(id)
	if t == nil {
		return ErrNotFound
	}
	if t.Type == TxSale && t.CashApplied != 0 {
		l.log.Warn("transação excluída sem ajuste de caixa", "id", id, "cashApplied", t.CashApplied)
	}
	l.state.Transactions = append(l.state.Transactions[:i], l.state.Transactions[i+1:]...)
	return nil
}

// UnpaidSales lists sales awaiting payment.
func (l *Ledger) UnpaidSales() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Transaction
	for _, t := range l.state.Transactions {
		if t.IsSale() && t.Status == StatusUnpaid {
			out = append(out, t.clone())
		}
	}
	return out
}
