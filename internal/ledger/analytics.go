package ledger

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const unknownCustomerName = "Cliente Não Identificado"

// ---------- per customer ----------

type CustomerRow struct {
	Key    string  `json:"key"` // customer id, or "unknown"
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Paid   float64 `json:"paid"`
	Unpaid float64 `json:"unpaid"`
	Total  float64 `json:"total"`
}

// CustomerReport groups non-reversed sales by customer, biggest total first.
func (l *Ledger) CustomerReport() []CustomerRow {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := []CustomerRow{}
	index := map[string]int{}
	for _, t := range l.state.Transactions {
		if !t.IsSale() {
			continue
		}
		key := "unknown"
		if t.CustomerID != nil && *t.CustomerID != 0 {
			key = strconv.FormatInt(*t.CustomerID, 10)
		}
		i, ok := index[key]
		if !ok {
			name, found := l.customerName(t.CustomerID)
			if !found {
				name = unknownCustomerName
			}
			i = len(rows)
			index[key] = i
			rows = append(rows, CustomerRow{Key: key, Name: name})
		}
		r := &rows[i]
		r.Count++
		if t.Status == StatusUnpaid {
			r.Unpaid += t.Amount
		} else {
			r.Paid += t.Amount
		}
		r.Total += t.Amount
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}

// ---------- product performance ----------

type ProductRow struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
}

type ProductPerformance struct {
	// Sold has one row per product id found in sales, deleted products included.
	Sold []ProductRow `json:"sold"`
	// Catalog has one row per current product, zero when never sold.
	Catalog   []ProductRow `json:"catalog"`
	TopSold   []ProductRow `json:"topSold"`
	TopProfit []ProductRow `json:"topProfit"`
	Unsold    []Product    `json:"unsold"`
}

const topN = 5

// ProductPerformance aggregates line items of non-reversed sales. Revenue is
// price times quantity, before discounts.
func (l *Ledger) ProductPerformance() ProductPerformance {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out ProductPerformance
	index := map[int64]int{}
	for _, t := range l.state.Transactions {
		if !t.IsSale() {
			continue
		}
		for _, it := range t.Items {
			i, ok := index[it.ProductID]
			if !ok {
				i = len(out.Sold)
				index[it.ProductID] = i
				out.Sold = append(out.Sold, ProductRow{ProductID: it.ProductID, Name: it.Name})
			}
			r := &out.Sold[i]
			r.Quantity += it.Quantity
			r.Revenue += it.Total()
			r.Cost += it.Cost * float64(it.Quantity)
			r.Profit = r.Revenue - r.Cost
		}
	}

	out.Catalog = make([]ProductRow, 0, len(l.state.Products))
	out.Unsold = []Product{}
	for _, p := range l.state.Products {
		row := ProductRow{ProductID: p.ID, Name: p.Name}
		if i, ok := index[p.ID]; ok {
			row = out.Sold[i]
			row.Name = p.Name
		} else {
			out.Unsold = append(out.Unsold, p)
		}
		out.Catalog = append(out.Catalog, row)
	}
	if out.Sold == nil {
		out.Sold = []ProductRow{}
	}

	out.TopSold = topRows(out.Catalog, func(a, b ProductRow) bool { return a.Quantity > b.Quantity })
	out.TopProfit = topRows(out.Catalog, func(a, b ProductRow) bool { return a.Profit > b.Profit })
	return out
}

func topRows(rows []ProductRow, less func(a, b ProductRow) bool) []ProductRow {
	s := append([]ProductRow{}, rows...)
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
	if len(s) > topN {
		s = s[:topN]
	}
	return s
}

// ---------- product sales detail ----------

type SaleDetail struct {
	TransactionID int64     `json:"transactionId"`
	Date          time.Time `json:"date"`
	CustomerName  string    `json:"customerName"`
	Quantity      int       `json:"quantity"`
	Total         float64   `json:"total"`
	Discount      float64   `json:"discount"`
	Final         float64   `json:"final"`
}

type ProductSales struct {
	ProductID int64        `json:"productId"`
	Name      string       `json:"name"`
	TotalSold int          `json:"totalSold"`
	Details   []SaleDetail `json:"details"`
}

// ProductSales lists every non-reversed sale of a product. Each line carries
// its own discount plus its share of the sale-level discount. customerFilter
// narrows the details by a case-insensitive substring of the customer name;
// TotalSold always covers every sale.
func (l *Ledger) ProductSales(productID int64, customerFilter string) (ProductSales, error) {
	customerFilter = strings.ToLower(strings.TrimSpace(customerFilter))
	l.mu.Lock()
	defer l.mu.Unlock()

	out := ProductSales{ProductID: productID, Details: []SaleDetail{}}
	if p := l.productByID(productID); p != nil {
		out.Name = p.Name
	}
	found := out.Name != ""

	for _, t := range l.state.Transactions {
		if !t.IsSale() {
			continue
		}
		for _, it := range t.Items {
			if it.ProductID != productID {
				continue
			}
			found = true
			if out.Name == "" {
				out.Name = it.Name
			}
			out.TotalSold += it.Quantity

			name, ok := l.customerName(t.CustomerID)
			if !ok {
				name = WalkInCustomerName
			}
			if customerFilter != "" && !strings.Contains(strings.ToLower(name), customerFilter) {
				continue
			}
			discount := ItemDiscount(it) + generalDiscountShare(t, it)
			out.Details = append(out.Details, SaleDetail{
				TransactionID: t.ID,
				Date:          t.Time(l.loc),
				CustomerName:  name,
				Quantity:      it.Quantity,
				Total:         it.Total(),
				Discount:      discount,
				Final:         it.Total() - discount,
			})
		}
	}
	if !found {
		return ProductSales{}, ErrNotFound
	}
	return out, nil
}

// ---------- cash closing ----------

type CashClosing struct {
	Date     string             `json:"date"`
	ByMethod map[string]float64 `json:"byMethod"`
	Total    float64            `json:"total"`
	Sales    int                `json:"sales"`
	Receipts int                `json:"receipts"`
	Balance  float64            `json:"balance"`
}

// CashClosing sums what came in today per payment method: paid sales plus
// receipts of older unpaid sales.
func (l *Ledger) CashClosing() CashClosing {
	now := l.now().In(l.loc)
	w, _ := WindowFor(PeriodDaily, now, 0, 0)

	l.mu.Lock()
	defer l.mu.Unlock()
	c := CashClosing{
		Date:     now.Format(dateLayout),
		ByMethod: map[string]float64{MethodCash: 0, MethodPix: 0, MethodCreditCard: 0},
		Balance:  l.state.CashBalance,
	}
	for _, t := range l.state.Transactions {
		if !w.contains(t.Time(l.loc)) {
			continue
		}
		switch {
		case t.IsSale() && t.Status == StatusPaid:
			c.Sales++
		case t.Type == TxReceipt:
			c.Receipts++
		default:
			continue
		}
		c.ByMethod[t.Method] += t.Amount
		c.Total += t.Amount
	}
	return c
}

// ---------- dashboard ----------

type Dashboard struct {
	SalesToday    float64       `json:"salesToday"`
	ProfitToday   float64       `json:"profitToday"`
	CountToday    int           `json:"countToday"`
	AverageTicket float64       `json:"averageTicket"`
	Unpaid        float64       `json:"unpaid"`
	CashBalance   float64       `json:"cashBalance"`
	Recent        []Transaction `json:"recent"`
	DueToday      []Order       `json:"dueToday"`
}

const recentCount = 5

func (l *Ledger) Dashboard() Dashboard {
	now := l.now().In(l.loc)
	w, _ := WindowFor(PeriodDaily, now, 0, 0)
	today := now.Format(dateLayout)

	l.mu.Lock()
	defer l.mu.Unlock()
	d := Dashboard{CashBalance: l.state.CashBalance, Recent: []Transaction{}, DueToday: []Order{}}
	for _, t := range l.state.Transactions {
		if !t.IsSale() {
			continue
		}
		if t.Status == StatusUnpaid {
			d.Unpaid += t.Amount
		}
		if w.contains(t.Time(l.loc)) {
			d.SalesToday += t.Amount
			d.ProfitToday += t.Amount - t.Cost
			d.CountToday++
		}
	}
	if d.CountToday > 0 {
		d.AverageTicket = d.SalesToday / float64(d.CountToday)
	}

	txs := l.state.Transactions
	for i := len(txs) - 1; i >= 0 && len(d.Recent) < recentCount; i-- {
		d.Recent = append(d.Recent, txs[i].clone())
	}
	for _, o := range l.state.Orders {
		if o.DeliveryDate == today && o.Status != OrderCompleted {
			d.DueToday = append(d.DueToday, o)
		}
	}
	return d
}

// ---------- customer summary ----------

type CustomerSummary struct {
	Customer     Customer      `json:"customer"`
	TotalSpent   float64       `json:"totalSpent"`
	TotalUnpaid  float64       `json:"totalUnpaid"`
	Transactions []Transaction `json:"transactions"`
}

// CustomerSummary totals a customer's non-reversed sales.
func (l *Ledger) CustomerSummary(id int64) (CustomerSummary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.customerByID(id)
	if c == nil {
		return CustomerSummary{}, ErrNotFound
	}
	s := CustomerSummary{Customer: *c, Transactions: []Transaction{}}
	for _, t := range l.state.Transactions {
		if !t.IsSale() || t.CustomerID == nil || *t.CustomerID != id {
			continue
		}
		s.TotalSpent += t.Amount
		if t.Status == StatusUnpaid {
			s.TotalUnpaid += t.Amount
		}
		s.Transactions = append(s.Transactions, t.clone())
	}
	return s, nil
}
