package ledger

import "time"

// Permanent default entities.
const (
	DefaultCategoryID   int64 = 1
	DefaultCategoryName       = "Sem Categoria"
	WalkInCustomerID    int64 = 1
	WalkInCustomerName        = "Cliente Balcão"
)

// Payment methods used by the point of sale.
const (
	MethodCash       = "Dinheiro"
	MethodPix        = "Pix"
	MethodCreditCard = "Cartão de Crédito"
	MethodOnCredit   = "A Prazo"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// Discount is either a fixed amount or a percentage. Value <= 0 means none.
type Discount struct {
	Type  DiscountType `json:"type"`
	Value float64      `json:"value"`
}

func (d Discount) active() bool { return d.Value > 0 }

type Product struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Cost       float64 `json:"cost"`
	CategoryID int64   `json:"categoryId"`
	Barcode    string  `json:"barcode"`
}

// LineItem is the copy of a product taken when it enters a cart. Sales keep
// it forever so later product edits or deletions never change history.
type LineItem struct {
	ProductID  int64    `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Cost       float64  `json:"cost"`
	CategoryID int64    `json:"categoryId"`
	Barcode    string   `json:"barcode"`
	Quantity   int      `json:"quantity"`
	Discount   Discount `json:"discount"`
}

func newLineItem(p Product, qty int) LineItem {
	return LineItem{
		ProductID:  p.ID,
		Name:       p.Name,
		Price:      p.Price,
		Cost:       p.Cost,
		CategoryID: p.CategoryID,
		Barcode:    p.Barcode,
		Quantity:   qty,
		Discount:   Discount{Type: DiscountFixed},
	}
}

// Total is price times quantity, before any discount.
func (li LineItem) Total() float64 { return li.Price * float64(li.Quantity) }

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type RawMaterial struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Stock       float64 `json:"stock"`
	Unit        string  `json:"unit"`
	TotalCost   float64 `json:"totalCost"`
	Supplier    string  `json:"supplier"`
	ReceiptDate string  `json:"receiptDate"`
}

// UnitCost is totalCost/stock, or 0 when there is no stock.
func (rm RawMaterial) UnitCost() float64 {
	if rm.Stock > 0 {
		return rm.TotalCost / rm.Stock
	}
	return 0
}

type TxType string

const (
	TxSale     TxType = "venda"
	TxCashIn   TxType = "entrada"
	TxCashOut  TxType = "saida"
	TxReceipt  TxType = "recebimento"
	TxReversal TxType = "estorno"
)

type SaleStatus string

const (
	StatusPaid   SaleStatus = "Pago"
	StatusUnpaid SaleStatus = "Não Pago"
)

func (s SaleStatus) valid() bool { return s == StatusPaid || s == StatusUnpaid }

// Transaction is one entry of the ledger history. Sale-only fields are empty
// for the other types.
type Transaction struct {
	ID          int64   `json:"id"`
	Type        TxType  `json:"type"`
	Amount      float64 `json:"amount"`
	Date        int64   `json:"date"` // epoch millis
	Description string  `json:"description"`

	Items        []LineItem `json:"items,omitempty"`
	Cost         float64    `json:"cost,omitempty"`
	CustomerID   *int64     `json:"customerId,omitempty"`
	Method       string     `json:"method,omitempty"`
	Installments int        `json:"installments,omitempty"`
	Status       SaleStatus `json:"status,omitempty"`
	Retroactive  bool       `json:"isRetroactive,omitempty"`
	Reversed     bool       `json:"reversed,omitempty"`
	Discount     float64    `json:"discount,omitempty"`

	// CashApplied is the net amount this sale itself has added to the cash
	// balance. Receipts are tracked by their own recebimento entries.
	CashApplied float64 `json:"cashApplied,omitempty"`

	// LegacyCustomerID reads the lower-case key written by older versions.
	LegacyCustomerID *int64 `json:"customerid,omitempty"`
}

// IsSale reports whether t is a non-reversed sale, the only kind counted in
// revenue.
func (t Transaction) IsSale() bool { return t.Type == TxSale && !t.Reversed }

// Time returns the transaction date in loc.
func (t Transaction) Time(loc *time.Location) time.Time {
	return time.UnixMilli(t.Date).In(loc)
}

// Subtotal is the sum of line totals before discounts.
func (t Transaction) Subtotal() float64 {
	var s float64
	for _, it := range t.Items {
		s += it.Total()
	}
	return s
}

func (t Transaction) clone() Transaction {
	c := t
	if t.Items != nil {
		c.Items = append([]LineItem(nil), t.Items...)
	}
	if t.CustomerID != nil {
		id := *t.CustomerID
		c.CustomerID = &id
	}
	return c
}

type OrderStatus string

const (
	OrderPending      OrderStatus = "em espera"
	OrderInProduction OrderStatus = "em producao"
	OrderCompleted    OrderStatus = "finalizado"
)

func (s OrderStatus) valid() bool {
	return s == OrderPending || s == OrderInProduction || s == OrderCompleted
}

// Order is a scheduled custom order. Dates are YYYY-MM-DD strings.
type Order struct {
	ID           int64       `json:"id"`
	CustomerID   int64       `json:"customerId"`
	OrderDate    string      `json:"orderDate"`
	DeliveryDate string      `json:"deliveryDate"`
	Description  string      `json:"description"`
	Value        float64     `json:"value"`
	Status       OrderStatus `json:"status"`
}

// Cart is the sale being composed. It is never persisted.
type Cart struct {
	Items           []LineItem `json:"items"`
	GeneralDiscount Discount   `json:"generalDiscount"`
}

// State holds every persisted collection.
type State struct {
	Products     []Product     `json:"products"`
	Customers    []Customer    `json:"customers"`
	Transactions []Transaction `json:"transactions"`
	Orders       []Order       `json:"orders"`
	CashBalance  float64       `json:"cashBalance"`
	RawMaterials []RawMaterial `json:"rawMaterials"`
	Categories   []Category    `json:"categories"`
	Theme        string        `json:"theme,omitempty"`
}

func defaultState() State {
	return State{
		Products:     []Product{},
		Customers:    []Customer{{ID: WalkInCustomerID, Name: WalkInCustomerName}},
		Transactions: []Transaction{},
		Orders:       []Order{},
		RawMaterials: []RawMaterial{},
		Categories:   []Category{{ID: DefaultCategoryID, Name: DefaultCategoryName}},
		Theme:        "light",
	}
}

func (s State) clone() State {
	c := s
	c.Products = append([]Product{}, s.Products...)
	c.Customers = append([]Customer{}, s.Customers...)
	c.Orders = append([]Order{}, s.Orders...)
	c.RawMaterials = append([]RawMaterial{}, s.RawMaterials...)
	c.Categories = append([]Category{}, s.Categories...)
	c.Transactions = make([]Transaction, len(s.Transactions))
	for i, t := range s.Transactions {
		c.Transactions[i] = t.clone()
	}
	return c
}
