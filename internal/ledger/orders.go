package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"papelaria-pdv/internal/util"
)

const dateLayout = "2006-01-02"

type OrderInput struct {
	CustomerID   int64       `json:"customerId"`
	OrderDate    string      `json:"orderDate"`
	DeliveryDate string      `json:"deliveryDate"`
	Description  string      `json:"description"`
	Value        float64     `json:"value"`
	Status       OrderStatus `json:"status"`
}

// checkOrder validates in. Orders still waiting carry no value.
func (l *Ledger) checkOrder(in OrderInput) (OrderInput, error) {
	if in.Status == "" {
		in.Status = OrderPending
	}
	if !in.Status.valid() {
		return in, ErrInvalidStatus
	}
	if l.customerByID(in.CustomerID) == nil {
		return in, fmt.Errorf("cliente %d: %w", in.CustomerID, ErrNotFound)
	}
	for _, d := range []string{in.OrderDate, in.DeliveryDate} {
		if err := util.ValidateDate(d); err != nil {
			return in, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return in, ErrEmptyName
	}
	if in.Status == OrderPending {
		in.Value = 0
	} else if util.ValidatePrice(in.Value) != nil {
		return in, ErrInvalidAmount
	}
	return in, nil
}

func (l *Ledger) AddOrder(in OrderInput) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	in, err := l.checkOrder(in)
	if err != nil {
		return Order{}, err
	}
	o := Order{
		ID:           l.nextID(),
		CustomerID:   in.CustomerID,
		OrderDate:    in.OrderDate,
		DeliveryDate: in.DeliveryDate,
		Description:  in.Description,
		Value:        in.Value,
		Status:       in.Status,
	}
	l.state.Orders = append(l.state.Orders, o)
	return o, l.commit()
}

// EditOrder updates everything except the customer.
func (l *Ledger) EditOrder(id int64, in OrderInput) (Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.state.Orders {
		o := &l.state.Orders[i]
		if o.ID != id {
			continue
		}
		in.CustomerID = o.CustomerID
		var err error
		if in, err = l.checkOrder(in); err != nil {
			return Order{}, err
		}
		o.OrderDate, o.DeliveryDate = in.OrderDate, in.DeliveryDate
		o.Description, o.Value, o.Status = in.Description, in.Value, in.Status
		return *o, l.commit()
	}
	return Order{}, ErrNotFound
}

func (l *Ledger) DeleteOrder(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.deleteOrder(id); err != nil {
		return err
	}
	return l.commit()
}

func (l *Ledger) deleteOrder(id int64) error {
	for i, o := range l.state.Orders {
		if o.ID == id {
			l.state.Orders = append(l.state.Orders[:i], l.state.Orders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Orders returns every order sorted by delivery date.
func (l *Ledger) Orders() []Order {
	return l.ordersWhere(func(Order) bool { return true })
}

// OrdersOn returns the orders delivered on day (YYYY-MM-DD).
func (l *Ledger) OrdersOn(day string) ([]Order, error) {
	if err := util.ValidateDate(day); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return l.ordersWhere(func(o Order) bool { return o.DeliveryDate == day }), nil
}

// OrdersInMonth feeds the calendar view.
func (l *Ledger) OrdersInMonth(year int, month time.Month) []Order {
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	return l.ordersWhere(func(o Order) bool { return strings.HasPrefix(o.DeliveryDate, prefix) })
}

func (l *Ledger) ordersWhere(keep func(Order) bool) []Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []Order{}
	for _, o := range l.state.Orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DeliveryDate < out[j].DeliveryDate })
	return out
}
