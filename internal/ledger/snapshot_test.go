package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportParseRestore(t *testing.T) {
	l, _, _ := newTestLedger(t)
	maria := addCustomer(t, l, "Maria")
	p := addProduct(t, l, "Fita Adesiva", 4, 1.5)
	sell(t, l, p, 3, CheckoutRequest{CustomerID: ptr(maria.ID), Status: StatusUnpaid})
	_, err := l.CashIn(25, "")
	require.NoError(t, err)

	snap := l.Export()
	assert.Equal(t, "2024-03-15T10:00:00.000Z", snap.BackupDate)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	parsed, err := ParseSnapshot(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, snap.State, parsed.State)

	// diverge, then restore
	_, err = l.CashIn(100, "")
	require.NoError(t, err)
	require.NoError(t, l.DeleteCustomer(addCustomer(t, l, "Temp").ID))

	require.NoError(t, l.Restore(parsed))
	assert.Equal(t, snap.State, l.State())
	assert.Equal(t, 25.0, l.CashBalance())
}

func TestParseSnapshotRequiresKeys(t *testing.T) {
	_, err := ParseSnapshot(strings.NewReader(`{"products":[],"customers":[]}`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	_, err = ParseSnapshot(strings.NewReader(`not json`))
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	s, err := ParseSnapshot(strings.NewReader(
		`{"products":[],"customers":[],"transactions":[{"id":1,"type":"venda","amount":5,"date":10,"description":"x","customerid":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Category{{ID: DefaultCategoryID, Name: DefaultCategoryName}}, s.Categories)
	require.NotNil(t, s.Transactions[0].CustomerID)
	assert.Equal(t, int64(3), *s.Transactions[0].CustomerID)
}

func TestReset(t *testing.T) {
	l, store, _ := newTestLedger(t)
	addProduct(t, l, "Cartolina", 1.2, 0.5)
	_, err := l.CashIn(10, "")
	require.NoError(t, err)

	require.NoError(t, l.Reset())
	assert.Equal(t, defaultState(), l.State())

	raw, ok, err := store.Get(KeyProducts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(raw))
}

func TestPendingActionFlow(t *testing.T) {
	l, _, _ := newTestLedger(t)
	p := addProduct(t, l, "Envelope", 0.8, 0.2)

	_, err := l.RequestAction(ActionDeleteCustomer, WalkInCustomerID)
	assert.ErrorIs(t, err, ErrProtectedEntity)
	_, ok := l.Pending()
	assert.False(t, ok)

	a, err := l.RequestAction(ActionDeleteProduct, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, a.Token)

	_, err = l.Confirm("not-the-token")
	assert.ErrorIs(t, err, ErrNoPendingAction)
	assert.Len(t, l.Products("", 0), 1, "wrong token must not run the action")

	_, err = l.Confirm(a.Token)
	require.NoError(t, err)
	assert.Empty(t, l.Products("", 0))

	_, err = l.Confirm(a.Token)
	assert.ErrorIs(t, err, ErrNoPendingAction)
}

func TestPendingActionRecheckedOnConfirm(t *testing.T) {
	l, _, _ := newTestLedger(t)
	p := addProduct(t, l, "Etiqueta", 3, 1)

	a, err := l.RequestAction(ActionDeleteProduct, p.ID)
	require.NoError(t, err)
	sell(t, l, p, 1, CheckoutRequest{})

	_, err = l.Confirm(a.Token)
	assert.ErrorIs(t, err, ErrReferenced)
	assert.Len(t, l.Products("", 0), 1)
}

func TestPendingCancelAndReplace(t *testing.T) {
	l, _, _ := newTestLedger(t)
	p := addProduct(t, l, "Post-it", 7, 3)
	sale := sell(t, l, p, 1, CheckoutRequest{})

	first, err := l.RequestAction(ActionReverseSale, sale.ID)
	require.NoError(t, err)
	second, err := l.RequestAction(ActionDeleteTransaction, sale.ID)
	require.NoError(t, err)

	_, err = l.Confirm(first.Token)
	assert.ErrorIs(t, err, ErrNoPendingAction, "a new request replaces the old one")

	l.CancelPending()
	_, err = l.Confirm(second.Token)
	assert.ErrorIs(t, err, ErrNoPendingAction)
	assert.Len(t, l.Transactions(), 1)
}

func TestPendingReverseAndRestore(t *testing.T) {
	l, _, _ := newTestLedger(t)
	p := addProduct(t, l, "Caneta Gel", 5, 2)
	snap := l.Export()
	sale := sell(t, l, p, 2, CheckoutRequest{})

	a, err := l.RequestAction(ActionReverseSale, sale.ID)
	require.NoError(t, err)
	_, err = l.Confirm(a.Token)
	require.NoError(t, err)
	assert.Zero(t, l.CashBalance())

	_, err = l.RequestAction(ActionRestore, 0)
	assert.ErrorIs(t, err, ErrUnknownAction)

	a, err = l.RequestRestore(snap)
	require.NoError(t, err)
	_, err = l.Confirm(a.Token)
	require.NoError(t, err)
	assert.Empty(t, l.Transactions())

	a, err = l.RequestAction(ActionReset, 0)
	require.NoError(t, err)
	_, err = l.Confirm(a.Token)
	require.NoError(t, err)
	assert.Empty(t, l.Products("", 0))
}

func TestImportSales(t *testing.T) {
	l, _, _ := newTestLedger(t)
	maria := addCustomer(t, l, "Maria")
	p := addProduct(t, l, "Lapiseira", 12, 5)

	csv := fmt.Sprintf("2024-03-01T09:30,%d,2,%d,Pix,Pago\n"+
		"2024-03-02T10:00,999,1,%d,Pix,Pago\n"+
		"linha inválida\n"+
		"2024-03-03T11:00,%d,1,%d,Dinheiro,Não Pago\n",
		p.ID, maria.ID, maria.ID, p.ID, maria.ID)

	res, err := l.ImportSales(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Equal(t, 3, res.Errors[1].Line)
	assert.Zero(t, l.CashBalance(), "imports never touch the cash")

	txs := l.Transactions()
	require.Len(t, txs, 2)
	first := txs[0]
	assert.Equal(t, time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC).UnixMilli(), first.ID)
	assert.Equal(t, 24.0, first.Amount)
	assert.Equal(t, 10.0, first.Cost)
	assert.Equal(t, "Venda importada", first.Description)
	assert.Equal(t, 1, first.Installments)
	assert.Equal(t, StatusUnpaid, txs[1].Status)
	assert.True(t, l.Reconcile().Consistent())
}
