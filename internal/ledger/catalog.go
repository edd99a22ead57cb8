package ledger

import (
	"fmt"
	"strings"

	"papelaria-pdv/internal/util"
)

const maxNameLen = 80

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := util.ValidateName(name, maxNameLen); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyName, err)
	}
	return name, nil
}

func sameName(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }

// ---------- products ----------

type ProductInput struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Cost       float64 `json:"cost"`
	CategoryID int64   `json:"categoryId"`
	Barcode    string  `json:"barcode"`
}

func (l *Ledger) productByID(id int64) *Product {
	for i := range l.state.Products {
		if l.state.Products[i].ID == id {
			return &l.state.Products[i]
		}
	}
	return nil
}

// checkProduct validates in and returns it normalized. selfID is the product
// being edited, or 0 for a new one.
func (l *Ledger) checkProduct(in ProductInput, selfID int64) (ProductInput, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return in, err
	}
	in.Name = name
	if util.ValidatePrice(in.Price) != nil || util.ValidatePrice(in.Cost) != nil {
		return in, ErrInvalidAmount
	}
	if in.CategoryID == 0 {
		in.CategoryID = DefaultCategoryID
	}
	if l.categoryByID(in.CategoryID) == nil {
		return in, fmt.Errorf("categoria %d: %w", in.CategoryID, ErrNotFound)
	}
	in.Barcode = strings.TrimSpace(in.Barcode)
	for _, p := range l.state.Products {
		if p.ID == selfID {
			continue
		}
		if sameName(p.Name, in.Name) {
			return in, ErrDuplicateName
		}
		if in.Barcode != "" && p.Barcode == in.Barcode {
			return in, ErrDuplicateBarcode
		}
	}
	return in, nil
}

func (l *Ledger) AddProduct(in ProductInput) (Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	in, err := l.checkProduct(in, 0)
	if err != nil {
		return Product{}, err
	}
	p := Product{
		ID:         l.nextID(),
		Name:       in.Name,
		Price:      in.Price,
		Cost:       in.Cost,
		CategoryID: in.CategoryID,
		Barcode:    in.Barcode,
	}
	l.state.Products = append(l.state.Products, p)
	return p, l.commit()
}

// EditProduct changes the catalog entry only; past sales keep their copies.
func (l *Ledger) EditProduct(id int64, in ProductInput) (Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.productByID(id)
	if p == nil {
		return Product{}, ErrNotFound
	}
	in, err := l.checkProduct(in, id)
	if err != nil {
		return Product{}, err
	}
	p.Name, p.Price, p.Cost, p.CategoryID, p.Barcode = in.Name, in.Price, in.Cost, in.CategoryID, in.Barcode
	return *p, l.commit()
}

func (l *Ledger) DeleteProduct(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.canDeleteProduct(id); err != nil {
		return err
	}
	l.deleteProduct(id)
	return l.commit()
}

// canDeleteProduct refuses products that appear in any sale.
func (l *Ledger) canDeleteProduct(id int64) error {
	if l.productByID(id) == nil {
		return ErrNotFound
	}
	for _, t := range l.state.Transactions {
		for _, it := range t.Items {
			if it.ProductID == id {
				return ErrReferenced
			}
		}
	}
	return nil
}

func (l *Ledger) deleteProduct(id int64) {
	out := l.state.Products[:0]
	for _, p := range l.state.Products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	l.state.Products = out
}

// Products filters by name or barcode substring and by category (0 = all).
func (l *Ledger) Products(query string, categoryID int64) []Product {
	query = strings.ToLower(strings.TrimSpace(query))
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []Product{}
	for _, p := range l.state.Products {
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) && !strings.Contains(p.Barcode, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ---------- categories ----------

func (l *Ledger) categoryByID(id int64) *Category {
	for i := range l.state.Categories {
		if l.state.Categories[i].ID == id {
			return &l.state.Categories[i]
		}
	}
	return nil
}

func (l *Ledger) checkCategoryName(name string, selfID int64) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	for _, c := range l.state.Categories {
		if c.ID != selfID && sameName(c.Name, name) {
			return "", ErrDuplicateName
		}
	}
	return name, nil
}

func (l *Ledger) AddCategory(name string) (Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name, err := l.checkCategoryName(name, 0)
	if err != nil {
		return Category{}, err
	}
	c := Category{ID: l.nextID(), Name: name}
	l.state.Categories = append(l.state.Categories, c)
	return c, l.commit()
}

func (l *Ledger) RenameCategory(id int64, name string) (Category, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.categoryByID(id)
	if c == nil {
		return Category{}, ErrNotFound
	}
	name, err := l.checkCategoryName(name, id)
	if err != nil {
		return Category{}, err
	}
	c.Name = name
	return *c, l.commit()
}

// DeleteCategory moves the category's products to the default category.
func (l *Ledger) DeleteCategory(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.canDeleteCategory(id); err != nil {
		return err
	}
	l.deleteCategory(id)
	return l.commit()
}

func (l *Ledger) canDeleteCategory(id int64) error {
	if id == DefaultCategoryID {
		return ErrProtectedEntity
	}
	if l.categoryByID(id) == nil {
		return ErrNotFound
	}
	return nil
}

func (l *Ledger) deleteCategory(id int64) {
	for i := range l.state.Products {
		if l.state.Products[i].CategoryID == id {
			l.state.Products[i].CategoryID = DefaultCategoryID
		}
	}
	out := l.state.Categories[:0]
	for _, c := range l.state.Categories {
		if c.ID != id {
			out = append(out, c)
		}
	}
	l.state.Categories = out
}

func (l *Ledger) Categories() []Category {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Category{}, l.state.Categories...)
}

// ---------- customers ----------

func (l *Ledger) customerByID(id int64) *Customer {
	for i := range l.state.Customers {
		if l.state.Customers[i].ID == id {
			return &l.state.Customers[i]
		}
	}
	return nil
}

func (l *Ledger) checkCustomerName(name string, selfID int64) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	for _, c := range l.state.Customers {
		if c.ID != selfID && sameName(c.Name, name) {
			return "", ErrDuplicateName
		}
	}
	return name, nil
}

func (l *Ledger) AddCustomer(name, contact string) (Customer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name, err := l.checkCustomerName(name, 0)
	if err != nil {
		return Customer{}, err
	}
	c := Customer{ID: l.nextID(), Name: name, Contact: strings.TrimSpace(contact)}
	l.state.Customers = append(l.state.Customers, c)
	return c, l.commit()
}

func (l *Ledger) EditCustomer(id int64, name, contact string) (Customer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.customerByID(id)
	if c == nil {
		return Customer{}, ErrNotFound
	}
	name, err := l.checkCustomerName(name, id)
	if err != nil {
		return Customer{}, err
	}
	c.Name, c.Contact = name, strings.TrimSpace(contact)
	return *c, l.commit()
}

func (l *Ledger) DeleteCustomer(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.canDeleteCustomer(id); err != nil {
		return err
	}
	l.deleteCustomer(id)
	return l.commit()
}

// canDeleteCustomer refuses the walk-in customer and anyone with history.
func (l *Ledger) canDeleteCustomer(id int64) error {
	if id == WalkInCustomerID {
		return ErrProtectedEntity
	}
	if l.customerByID(id) == nil {
		return ErrNotFound
	}
	for _, t := range l.state.Transactions {
		if t.CustomerID != nil && *t.CustomerID == id {
			return ErrReferenced
		}
	}
	return nil
}

func (l *Ledger) deleteCustomer(id int64) {
	out := l.state.Customers[:0]
	for _, c := range l.state.Customers {
		if c.ID != id {
			out = append(out, c)
		}
	}
	l.state.Customers = out
}

// Customers filters by name substring, case-insensitive.
func (l *Ledger) Customers(query string) []Customer {
	query = strings.ToLower(strings.TrimSpace(query))
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []Customer{}
	for _, c := range l.state.Customers {
		if query == "" || strings.Contains(strings.ToLower(c.Name), query) {
			out = append(out, c)
		}
	}
	return out
}

func (l *Ledger) customerName(id *int64) (string, bool) {
	if id == nil {
		return "", false
	}
	if c := l.customerByID(*id); c != nil {
		return c.Name, true
	}
	return "", false
}

// ---------- raw materials ----------

type RawMaterialInput struct {
	Name        string  `json:"name"`
	Stock       float64 `json:"stock"`
	Unit        string  `json:"unit"`
	TotalCost   float64 `json:"totalCost"`
	Supplier    string  `json:"supplier"`
	ReceiptDate string  `json:"receiptDate"`
}

// checkRawMaterial runs under l.mu; selfID is skipped in the name check.
func (l *Ledger) checkRawMaterial(in RawMaterialInput, selfID int64) (RawMaterialInput, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return in, err
	}
	for _, rm := range l.state.RawMaterials {
		if rm.ID != selfID && sameName(rm.Name, name) {
			return in, ErrDuplicateName
		}
	}
	in.Name = name
	if in.Stock < 0 || util.ValidatePrice(in.TotalCost) != nil {
		return in, ErrInvalidAmount
	}
	in.Unit = strings.TrimSpace(in.Unit)
	in.Supplier = strings.TrimSpace(in.Supplier)
	if in.ReceiptDate != "" {
		if err := util.ValidateDate(in.ReceiptDate); err != nil {
			return in, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
	}
	return in, nil
}

func (l *Ledger) AddRawMaterial(in RawMaterialInput) (RawMaterial, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	in, err := l.checkRawMaterial(in, 0)
	if err != nil {
		return RawMaterial{}, err
	}
	rm := RawMaterial{
		ID:          l.nextID(),
		Name:        in.Name,
		Stock:       in.Stock,
		Unit:        in.Unit,
		TotalCost:   in.TotalCost,
		Supplier:    in.Supplier,
		ReceiptDate: in.ReceiptDate,
	}
	l.state.RawMaterials = append(l.state.RawMaterials, rm)
	return rm, l.commit()
}

func (l *Ledger) EditRawMaterial(id int64, in RawMaterialInput) (RawMaterial, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	in, err := l.checkRawMaterial(in, id)
	if err != nil {
		return RawMaterial{}, err
	}
	for i := range l.state.RawMaterials {
		rm := &l.state.RawMaterials[i]
		if rm.ID != id {
			continue
		}
		rm.Name, rm.Stock, rm.Unit = in.Name, in.Stock, in.Unit
		rm.TotalCost, rm.Supplier, rm.ReceiptDate = in.TotalCost, in.Supplier, in.ReceiptDate
		return *rm, l.commit()
	}
	return RawMaterial{}, ErrNotFound
}

func (l *Ledger) DeleteRawMaterial(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.deleteRawMaterial(id); err != nil {
		return err
	}
	return l.commit()
}

func (l *Ledger) deleteRawMaterial(id int64) error {
	for i, rm := range l.state.RawMaterials {
		if rm.ID == id {
			l.state.RawMaterials = append(l.state.RawMaterials[:i], l.state.RawMaterials[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// RawMaterials filters by name or supplier substring.
func (l *Ledger) RawMaterials(query string) []RawMaterial {
	query = strings.ToLower(strings.TrimSpace(query))
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []RawMaterial{}
	for _, rm := range l.state.RawMaterials {
		if query == "" ||
			strings.Contains(strings.ToLower(rm.Name), query) ||
			strings.Contains(strings.ToLower(rm.Supplier), query) {
			out = append(out, rm)
		}
	}
	return out
}
