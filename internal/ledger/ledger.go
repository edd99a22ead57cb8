package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"papelaria-pdv/internal/logger"
	"papelaria-pdv/internal/storage"
)

// Storage keys, one per persisted collection.
const (
	KeyProducts     = "products"
	KeyCustomers    = "customers"
	KeyTransactions = "transactions"
	KeyOrders       = "orders"
	KeyCashBalance  = "cashBalance"
	KeyRawMaterials = "rawMaterials"
	KeyCategories   = "categories"
	KeyTheme        = "theme"
)

// Ledger owns the whole point-of-sale state. All exported methods are safe for
// concurrent use; each one runs as a single step against the state.
type Ledger struct {
	mu      sync.Mutex
	state   State
	cart    Cart
	pending *PendingAction

	store  storage.Store
	log    logger.Logger
	now    func() time.Time
	loc    *time.Location
	lastID int64
}

type Option func(*Ledger)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the zone used for calendar boundaries in reports.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func WithLogger(log logger.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// New returns a ledger holding the default state. Call Load to read what the
// store already has.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		state: defaultState(),
		store: store,
		log:   logger.Discard(),
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory state with the stored one. Missing keys take
// their defaults. If any stored value cannot be decoded the whole state falls
// back to defaults and ErrCorruptState is returned; the ledger stays usable.
func (l *Ledger) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, err := l.readState()
	if err != nil {
		l.log.Error("falha ao carregar dados", "error", err)
		l.state = defaultState()
		l.resetIDs()
		return fmt.Errorf("%w: %w", ErrCorruptState, err)
	}
	l.state = st
	l.resetIDs()
	l.log.Info("dados carregados",
		"products", len(st.Products),
		"customers", len(st.Customers),
		"transactions", len(st.Transactions),
		"cash", st.CashBalance)
	return nil
}

func (l *Ledger) readState() (State, error) {
	st := defaultState()
	decode := func(key string, dst any) error {
		raw, ok, err := l.store.Get(key)
		if err != nil {
			return err
		}
		if !ok || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	}

	for key, dst := range map[string]any{
		KeyProducts:     &st.Products,
		KeyCustomers:    &st.Customers,
		KeyTransactions: &st.Transactions,
		KeyOrders:       &st.Orders,
		KeyCashBalance:  &st.CashBalance,
		KeyRawMaterials: &st.RawMaterials,
		KeyCategories:   &st.Categories,
	} {
		if err := decode(key, dst); err != nil {
			return State{}, err
		}
	}

	raw, ok, err := l.store.Get(KeyTheme)
	if err != nil {
		return State{}, err
	}
	if ok && len(raw) > 0 {
		st.Theme = strings.Trim(string(raw), `"`)
	}

	normalize(&st)
	return st, nil
}

// normalize fills nil collections, puts back a missing default category or
// walk-in customer, migrates the legacy customerid key and sorts
// transactions by date.
func normalize(st *State) {
	if st.Products == nil {
		st.Products = []Product{}
	}
	if st.Customers == nil {
		st.Customers = []Customer{}
	}
	if st.Transactions == nil {
		st.Transactions = []Transaction{}
	}
	if st.Orders == nil {
		st.Orders = []Order{}
	}
	if st.RawMaterials == nil {
		st.RawMaterials = []RawMaterial{}
	}
	if !hasCategory(st.Categories, DefaultCategoryID) {
		st.Categories = append([]Category{{ID: DefaultCategoryID, Name: DefaultCategoryName}}, st.Categories...)
	}
	if !hasCustomer(st.Customers, WalkInCustomerID) {
		st.Customers = append([]Customer{{ID: WalkInCustomerID, Name: WalkInCustomerName}}, st.Customers...)
	}
	if st.Theme == "" {
		st.Theme = "light"
	}
	for i := range st.Transactions {
		t := &st.Transactions[i]
		if t.CustomerID == nil && t.LegacyCustomerID != nil {
			t.CustomerID = t.LegacyCustomerID
		}
		t.LegacyCustomerID = nil
	}
	sortTransactions(st.Transactions)
}

func hasCategory(cs []Category, id int64) bool {
	for _, c := range cs {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasCustomer(cs []Customer, id int64) bool {
	for _, c := range cs {
		if c.ID == id {
			return true
		}
	}
	return false
}

func sortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date < txs[j].Date })
}

// resetIDs makes sure nextID never hands out an id already in use.
func (l *Ledger) resetIDs() {
	var max int64
	bump := func(id int64) {
		if id > max {
			max = id
		}
	}
	for _, p := range l.state.Products {
		bump(p.ID)
	}
	for _, c := range l.state.Customers {
		bump(c.ID)
	}
	for _, c := range l.state.Categories {
		bump(c.ID)
	}
	for _, t := range l.state.Transactions {
		bump(t.ID)
	}
	for _, o := range l.state.Orders {
		bump(o.ID)
	}
	for _, r := range l.state.RawMaterials {
		bump(r.ID)
	}
	l.lastID = max
}

// nextID returns the current time in millis, pushed forward when needed so
// ids are strictly increasing.
func (l *Ledger) nextID() int64 {
	id := l.now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	l.lastID = id
	return id
}

func (l *Ledger) nowMillis() int64 { return l.now().UnixMilli() }

// commit writes every collection. A failed write keeps the in-memory state
// and reports ErrPersist.
func (l *Ledger) commit() error {
	values := []struct {
		key string
		val any
	}{
		{KeyProducts, l.state.Products},
		{KeyCustomers, l.state.Customers},
		{KeyTransactions, l.state.Transactions},
		{KeyOrders, l.state.Orders},
		{KeyCashBalance, l.state.CashBalance},
		{KeyRawMaterials, l.state.RawMaterials},
		{KeyCategories, l.state.Categories},
	}

	var firstErr error
	for _, v := range values {
		data, err := json.Marshal(v.val)
		if err == nil {
			err = l.store.Set(v.key, data)
		}
		if err != nil {
			l.log.Error("falha ao guardar", "key", v.key, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if err := l.store.Set(KeyTheme, []byte(l.state.Theme)); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		if errors.Is(firstErr, storage.ErrQuotaExceeded) {
			l.log.Warn("espaço de armazenamento esgotado, exporte um backup")
		}
		return fmt.Errorf("%w: %w", ErrPersist, firstErr)
	}
	return nil
}

// applyCash is the only place the cash balance changes.
func (l *Ledger) applyCash(delta float64, reason string, txID int64) {
	l.state.CashBalance += delta
	l.log.Info("saldo de caixa alterado",
		"delta", delta,
		"reason", reason,
		"tx", txID,
		"balance", l.state.CashBalance)
}

// Location returns the zone used for calendar boundaries.
func (l *Ledger) Location() *time.Location { return l.loc }

// Theme returns the persisted UI preference.
func (l *Ledger) Theme() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Theme
}

func (l *Ledger) SetTheme(theme string) error {
	if theme != "light" && theme != "dark" {
		return ErrInvalidTheme
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Theme = theme
	return l.commit()
}

// State returns a deep copy of the persisted collections.
func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone()
}

func (l *Ledger) findTransaction(id int64) (int, *Transaction) {
	for i := range l.state.Transactions {
		if l.state.Transactions[i].ID == id {
			return i, &l.state.Transactions[i]
		}
	}
	return -1, nil
}

// insertTransaction appends t and keeps the history ordered by date.
func (l *Ledger) insertTransaction(t Transaction) {
	l.state.Transactions = append(l.state.Transactions, t)
	sortTransactions(l.state.Transactions)
}

// Transactions returns every transaction, oldest first.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.clone().Transactions
}

func (l *Ledger) Transaction(id int64) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, t := l.findTransaction(id)
	if t == nil {
		return Transaction{}, ErrNotFound
	}
	return t.clone(), nil
}
