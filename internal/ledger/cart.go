package ledger

import "strings"

// CartView is the cart with its computed totals.
type CartView struct {
	Cart
	Totals Totals `json:"totals"`
}

func (l *Ledger) cartView() CartView {
	c := Cart{
		Items:           append([]LineItem{}, l.cart.Items...),
		GeneralDiscount: l.cart.GeneralDiscount,
	}
	return CartView{Cart: c, Totals: ComputeTotals(c.Items, c.GeneralDiscount)}
}

func (l *Ledger) Cart() CartView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cartView()
}

// AddToCart adds one unit of the product, merging with an existing line.
func (l *Ledger) AddToCart(productID int64) (CartView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.productByID(productID)
	if p == nil {
		return CartView{}, ErrNotFound
	}
	l.addProduct(*p)
	return l.cartView(), nil
}

// AddToCartByBarcode adds the product carrying the exact barcode.
func (l *Ledger) AddToCartByBarcode(barcode string) (CartView, error) {
	barcode = strings.TrimSpace(barcode)
	l.mu.Lock()
	defer l.mu.Unlock()
	if barcode == "" {
		return CartView{}, ErrNotFound
	}
	for _, p := range l.state.Products {
		if p.Barcode == barcode {
			l.addProduct(p)
			return l.cartView(), nil
		}
	}
	return CartView{}, ErrNotFound
}

func (l *Ledger) addProduct(p Product) {
	for i := range l.cart.Items {
		if l.cart.Items[i].ProductID == p.ID {
			l.cart.Items[i].Quantity++
			return
		}
	}
	l.cart.Items = append(l.cart.Items, newLineItem(p, 1))
}

// ChangeQuantity adds delta to a line. Dropping to zero removes the line.
func (l *Ledger) ChangeQuantity(index, delta int) (CartView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.cart.Items) {
		return CartView{}, ErrCartIndex
	}
	l.cart.Items[index].Quantity += delta
	if l.cart.Items[index].Quantity <= 0 {
		l.removeLine(index)
	}
	return l.cartView(), nil
}

func (l *Ledger) RemoveFromCart(index int) (CartView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.cart.Items) {
		return CartView{}, ErrCartIndex
	}
	l.removeLine(index)
	return l.cartView(), nil
}

func (l *Ledger) removeLine(i int) {
	l.cart.Items = append(l.cart.Items[:i], l.cart.Items[i+1:]...)
}

func (l *Ledger) SetItemDiscount(index int, d Discount) (CartView, error) {
	d, err := validDiscount(d)
	if err != nil {
		return CartView{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.cart.Items) {
		return CartView{}, ErrCartIndex
	}
	l.cart.Items[index].Discount = d
	return l.cartView(), nil
}

func (l *Ledger) SetGeneralDiscount(d Discount) (CartView, error) {
	d, err := validDiscount(d)
	if err != nil {
		return CartView{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cart.GeneralDiscount = d
	return l.cartView(), nil
}

// ClearCart empties the cart and resets the general discount.
func (l *Ledger) ClearCart() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cart = Cart{}
}
