package ledger

// Totals breaks down a cart or sale. Total = Subtotal - TotalDiscount.
type Totals struct {
	Subtotal        float64 `json:"subtotal"`
	ItemDiscount    float64 `json:"itemDiscount"`
	GeneralDiscount float64 `json:"generalDiscount"`
	TotalDiscount   float64 `json:"totalDiscount"`
	Total           float64 `json:"total"`
}

// ItemDiscount is the discount amount of one line. A percentage applies to
// the line total; anything else is treated as a fixed amount.
func ItemDiscount(li LineItem) float64 {
	if !li.Discount.active() {
		return 0
	}
	if li.Discount.Type == DiscountPercentage {
		return li.Total() * li.Discount.Value / 100
	}
	return li.Discount.Value
}

// ComputeTotals applies item discounts first, then the general discount on
// what is left of the subtotal.
func ComputeTotals(items []LineItem, general Discount) Totals {
	var t Totals
	for _, it := range items {
		t.Subtotal += it.Total()
	}
	for _, it := range items {
		t.ItemDiscount += ItemDiscount(it)
	}
	if general.active() {
		if general.Type == DiscountPercentage {
			t.GeneralDiscount = (t.Subtotal - t.ItemDiscount) * general.Value / 100
		} else {
			t.GeneralDiscount = general.Value
		}
	}
	t.TotalDiscount = t.ItemDiscount + t.GeneralDiscount
	t.Total = t.Subtotal - t.TotalDiscount
	return t
}

// generalDiscountShare spreads the sale-level discount over one line in
// proportion to its share of the subtotal.
func generalDiscountShare(t Transaction, li LineItem) float64 {
	var items float64
	for _, it := range t.Items {
		items += ItemDiscount(it)
	}
	general := t.Discount - items
	subtotal := t.Subtotal()
	if general <= 0 || subtotal <= 0 {
		return 0
	}
	return general * (li.Total() / subtotal)
}

func validDiscount(d Discount) (Discount, error) {
	switch d.Type {
	case "":
		d.Type = DiscountFixed
	case DiscountFixed, DiscountPercentage:
	default:
		return Discount{}, ErrInvalidDiscount
	}
	if d.Value < 0 {
		d.Value = 0
	}
	if d.Type == DiscountPercentage && d.Value > 100 {
		return Discount{}, ErrInvalidDiscount
	}
	return d, nil
}
