package ledger

import (
	"fmt"
	"math"
	"strings"

	"papelaria-pdv/internal/util"
)

// CashIn records an entrada and adds amount to the balance.
func (l *Ledger) CashIn(amount float64, description string) (Transaction, error) {
	return l.moveCash(TxCashIn, amount, description)
}

// CashOut records a saida. It fails when amount exceeds the balance.
func (l *Ledger) CashOut(amount float64, description string) (Transaction, error) {
	return l.moveCash(TxCashOut, amount, description)
}

func (l *Ledger) moveCash(kind TxType, amount float64, description string) (Transaction, error) {
	if err := util.ValidateAmount(amount); err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	description = strings.TrimSpace(description)

	l.mu.Lock()
	defer l.mu.Unlock()

	delta := amount
	if kind == TxCashOut {
		if amount > l.state.CashBalance {
			return Transaction{}, ErrInsufficientCash
		}
		delta = -amount
	}
	if description == "" {
		if kind == TxCashOut {
			description = "Saída de caixa"
		} else {
			description = "Entrada de caixa"
		}
	}
	t := Transaction{
		ID:          l.nextID(),
		Type:        kind,
		Amount:      amount,
		Date:        l.nowMillis(),
		Description: description,
	}
	l.applyCash(delta, string(kind), t.ID)
	l.insertTransaction(t)
	return t, l.commit()
}

// CashBalance returns the running balance.
func (l *Ledger) CashBalance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.CashBalance
}

// Reconciliation compares the running balance with the one derived from
// the transaction history.
type Reconciliation struct {
	Balance  float64 `json:"balance"`
	Expected float64 `json:"expected"`
	Drift    float64 `json:"drift"`
}

// Consistent reports whether the drift is within a tenth of a cent.
func (r Reconciliation) Consistent() bool { return math.Abs(r.Drift) < 0.001 }

// Reconcile derives the balance as entradas - saidas + recebimentos plus what
// each sale applied, and reports how far the running balance is from it.
// Drift appears when transactions are deleted or data is restored by hand.
func (l *Ledger) Reconcile() Reconciliation {
	l.mu.Lock()
	defer l.mu.Unlock()
	return reconcile(l.state)
}

func reconcile(st State) Reconciliation {
	var expected float64
	for _, t := range st.Transactions {
		switch t.Type {
		case TxCashIn, TxReceipt:
			expected += t.Amount
		case TxCashOut:
			expected -= t.Amount
		case TxSale:
			expected += t.CashApplied
		}
	}
	return Reconciliation{
		Balance:  st.CashBalance,
		Expected: expected,
		Drift:    st.CashBalance - expected,
	}
}
