package ledger

import (
	"strings"
	"testing"
	"time"

	"papelaria-pdv/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func ptr(v int64) *int64 { return &v }

// newTestLedger returns a loaded ledger on an empty memory store, with the
// clock fixed at 2024-03-15 10:00 UTC.
func newTestLedger(t *testing.T) (*Ledger, *storage.MemoryStore, *fakeClock) {
	t.Helper()
	store := storage.NewMemoryStore(0)
	clk := &fakeClock{t: time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)}
	l := New(store, WithClock(clk.Now), WithLocation(time.UTC))
	require.NoError(t, l.Load())
	return l, store, clk
}

func addProduct(t *testing.T, l *Ledger, name string, price, cost float64) Product {
	t.Helper()
	p, err := l.AddProduct(ProductInput{Name: name, Price: price, Cost: cost})
	require.NoError(t, err)
	return p
}

func addCustomer(t *testing.T, l *Ledger, name string) Customer {
	t.Helper()
	c, err := l.AddCustomer(name, "")
	require.NoError(t, err)
	return c
}

// sell checks out qty units of p with the given request.
func sell(t *testing.T, l *Ledger, p Product, qty int, req CheckoutRequest) Transaction {
	t.Helper()
	for i := 0; i < qty; i++ {
		_, err := l.AddToCart(p.ID)
		require.NoError(t, err)
	}
	sale, err := l.Checkout(req)
	require.NoError(t, err)
	return sale
}

func TestLoadDefaults(t *testing.T) {
	l, _, _ := newTestLedger(t)
	st := l.State()

	assert.Equal(t, []Category{{ID: DefaultCategoryID, Name: DefaultCategoryName}}, st.Categories)
	assert.Equal(t, []Customer{{ID: WalkInCustomerID, Name: WalkInCustomerName}}, st.Customers)
	assert.Empty(t, st.Products)
	assert.Empty(t, st.Transactions)
	assert.Zero(t, st.CashBalance)
	assert.Equal(t, "light", st.Theme)
}

func TestPersistRoundTrip(t *testing.T) {
	l, store, clk := newTestLedger(t)
	maria := addCustomer(t, l, "Maria")
	caneta := addProduct(t, l, "Caneta", 2.5, 1)
	sell(t, l, caneta, 4, CheckoutRequest{Method: MethodPix})
	sell(t, l, caneta, 1, CheckoutRequest{CustomerID: ptr(maria.ID), Status: StatusUnpaid})
	_, err := l.CashIn(50, "troco")
	require.NoError(t, err)
	_, err = l.AddRawMaterial(RawMaterialInput{Name: "Papel A4", Stock: 10, TotalCost: 25, ReceiptDate: "2024-03-01"})
	require.NoError(t, err)
	require.NoError(t, l.SetTheme("dark"))

	reloaded := New(store, WithClock(clk.Now), WithLocation(time.UTC))
	require.NoError(t, reloaded.Load())
	assert.Equal(t, l.State(), reloaded.State())
}

func TestLoadCorruptFallsBackToDefaults(t *testing.T) {
	store := storage.NewMemoryStore(0)
	require.NoError(t, store.Set(KeyProducts, []byte(`{not json`)))

	l := New(store)
	err := l.Load()
	assert.ErrorIs(t, err, ErrCorruptState)

	st := l.State()
	assert.Empty(t, st.Products)
	assert.Len(t, st.Customers, 1)
	assert.Len(t, st.Categories, 1)
}

func TestLoadMigratesLegacyCustomerKey(t *testing.T) {
	store := storage.NewMemoryStore(0)
	require.NoError(t, store.Set(KeyTransactions, []byte(
		`[{"id":5,"type":"venda","amount":10,"date":1000,"description":"Venda de 1 item(s)","customerid":7,"status":"Pago"}]`)))

	l := New(store)
	require.NoError(t, l.Load())
	txs := l.Transactions()
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].CustomerID)
	assert.Equal(t, int64(7), *txs[0].CustomerID)
	assert.Nil(t, txs[0].LegacyCustomerID)
}

func TestLoadPutsBackPermanentEntries(t *testing.T) {
	store := storage.NewMemoryStore(0)
	require.NoError(t, store.Set(KeyCustomers, []byte(`[{"id":7,"name":"Maria"}]`)))
	require.NoError(t, store.Set(KeyCategories, []byte(`[{"id":9,"name":"Escolar"}]`)))

	l := New(store)
	require.NoError(t, l.Load())
	st := l.State()
	assert.Equal(t, []Customer{{ID: WalkInCustomerID, Name: WalkInCustomerName}, {ID: 7, Name: "Maria"}}, st.Customers)
	assert.Equal(t, []Category{{ID: DefaultCategoryID, Name: DefaultCategoryName}, {ID: 9, Name: "Escolar"}}, st.Categories)

	require.NoError(t, store.Set(KeyCustomers, []byte(`[]`)))
	require.NoError(t, l.Load())
	assert.Equal(t, []Customer{{ID: WalkInCustomerID, Name: WalkInCustomerName}}, l.Customers(""))
}

func TestRestoreWithoutCustomersKeepsWalkIn(t *testing.T) {
	l, _, _ := newTestLedger(t)
	addCustomer(t, l, "Maria")

	s, err := ParseSnapshot(strings.NewReader(`{"products": [], "transactions": [], "customers": [], "cashBalance": 0}`))
	require.NoError(t, err)
	require.NoError(t, l.Restore(s))

	cs := l.Customers("")
	require.Len(t, cs, 1)
	assert.Equal(t, WalkInCustomerID, cs[0].ID)
	assert.Equal(t, WalkInCustomerName, cs[0].Name)
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	l, store, _ := newTestLedger(t)
	store.FailWrites = true

	_, err := l.CashIn(10, "")
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, 10.0, l.CashBalance())
	assert.Len(t, l.Transactions(), 1)
}

func TestQuotaExceededIsPersistError(t *testing.T) {
	store := storage.NewMemoryStore(64)
	l := New(store)
	require.NoError(t, l.Load())

	_, err := l.AddProduct(ProductInput{Name: "Um nome de produto bem comprido para estourar a quota", Price: 1})
	assert.ErrorIs(t, err, ErrPersist)
	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
}

func TestIDsStrictlyIncrease(t *testing.T) {
	l, _, _ := newTestLedger(t)
	var last int64
	for _, name := range []string{"Escolar", "Escritório", "Arte"} {
		c, err := l.AddCategory(name)
		require.NoError(t, err)
		assert.Greater(t, c.ID, last)
		last = c.ID
	}
}

func TestSetTheme(t *testing.T) {
	l, _, _ := newTestLedger(t)
	require.NoError(t, l.SetTheme("dark"))
	assert.Equal(t, "dark", l.Theme())
	assert.ErrorIs(t, l.SetTheme("blue"), ErrInvalidTheme)
}
