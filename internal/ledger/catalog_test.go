package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductValidation(t *testing.T) {
	l, _, _ := newTestLedger(t)
	_, err := l.AddProduct(ProductInput{Name: "Grampeador", Price: 15, Barcode: "111"})
	require.NoError(t, err)

	_, err = l.AddProduct(ProductInput{Name: "  ", Price: 1})
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = l.AddProduct(ProductInput{Name: "grampeador", Price: 1})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = l.AddProduct(ProductInput{Name: "Clips", Price: 1, Barcode: "111"})
	assert.ErrorIs(t, err, ErrDuplicateBarcode)
	_, err = l.AddProduct(ProductInput{Name: "Clips", Price: -1})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.AddProduct(ProductInput{Name: "Clips", Price: 1, CategoryID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, l.Products("", 0), 1)
	assert.Len(t, l.Products("GRAMP", 0), 1)
	assert.Len(t, l.Products("111", DefaultCategoryID), 1)
	assert.Empty(t, l.Products("xyz", 0))
}

func TestDeleteProductInHistory(t *testing.T) {
	l, _, _ := newTestLedger(t)
	sold := addProduct(t, l, "Apontador", 3, 1)
	unsold := addProduct(t, l, "Transferidor", 4, 1)
	sell(t, l, sold, 1, CheckoutRequest{})

	assert.ErrorIs(t, l.DeleteProduct(sold.ID), ErrReferenced)
	require.NoError(t, l.DeleteProduct(unsold.ID))
	assert.ErrorIs(t, l.DeleteProduct(unsold.ID), ErrNotFound)
	assert.Len(t, l.Products("", 0), 1)
}

func TestDeleteCategoryReassignsProducts(t *testing.T) {
	l, _, _ := newTestLedger(t)
	arte, err := l.AddCategory("Arte")
	require.NoError(t, err)
	p, err := l.AddProduct(ProductInput{Name: "Guache", Price: 12, CategoryID: arte.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, l.DeleteCategory(DefaultCategoryID), ErrProtectedEntity)
	require.NoError(t, l.DeleteCategory(arte.ID))

	got := l.Products("", 0)
	require.Len(t, got, 1)
	assert.Equal(t, p.ID, got[0].ID)
	assert.Equal(t, DefaultCategoryID, got[0].CategoryID)
	assert.Len(t, l.Categories(), 1)
}

func TestCategoryNamesUnique(t *testing.T) {
	l, _, _ := newTestLedger(t)
	c, err := l.AddCategory("Escolar")
	require.NoError(t, err)
	_, err = l.AddCategory("escolar ")
	assert.ErrorIs(t, err, ErrDuplicateName)

	renamed, err := l.RenameCategory(c.ID, "Material Escolar")
	require.NoError(t, err)
	assert.Equal(t, "Material Escolar", renamed.Name)
}

func TestCustomerNamesUnique(t *testing.T) {
	l, _, _ := newTestLedger(t)
	maria := addCustomer(t, l, "Maria")
	joao := addCustomer(t, l, "João")

	_, err := l.AddCustomer("maria", "")
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = l.AddCustomer(" cliente balcão ", "")
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = l.EditCustomer(joao.ID, "MARIA", "")
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = l.EditCustomer(joao.ID, "Cliente Balcão", "")
	assert.ErrorIs(t, err, ErrDuplicateName)

	renamed, err := l.EditCustomer(maria.ID, "MARIA", "9999-0000")
	require.NoError(t, err)
	assert.Equal(t, "MARIA", renamed.Name)
	assert.Len(t, l.Customers(""), 3)
}

func TestDeleteCustomerRules(t *testing.T) {
	l, _, _ := newTestLedger(t)
	maria := addCustomer(t, l, "Maria")
	joao := addCustomer(t, l, "João")
	p := addProduct(t, l, "Caneta", 2, 1)
	sell(t, l, p, 1, CheckoutRequest{CustomerID: ptr(maria.ID)})

	assert.ErrorIs(t, l.DeleteCustomer(WalkInCustomerID), ErrProtectedEntity)
	assert.ErrorIs(t, l.DeleteCustomer(maria.ID), ErrReferenced)
	require.NoError(t, l.DeleteCustomer(joao.ID))
	assert.Len(t, l.Customers(""), 2)
	assert.Len(t, l.Customers("mar"), 1)
}

func TestRawMaterials(t *testing.T) {
	l, _, _ := newTestLedger(t)
	rm, err := l.AddRawMaterial(RawMaterialInput{Name: "Papel Kraft", Stock: 4, Unit: "rolo", TotalCost: 30, Supplier: "Distribuidora Sul"})
	require.NoError(t, err)
	assert.Equal(t, 7.5, rm.UnitCost())

	rm, err = l.EditRawMaterial(rm.ID, RawMaterialInput{Name: "Papel Kraft", Stock: 0, TotalCost: 30})
	require.NoError(t, err)
	assert.Zero(t, rm.UnitCost())

	_, err = l.AddRawMaterial(RawMaterialInput{Name: "Cola", ReceiptDate: "15/03/2024"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	a4, err := l.AddRawMaterial(RawMaterialInput{Name: "Papel A4", Stock: 10, TotalCost: 25})
	require.NoError(t, err)
	_, err = l.AddRawMaterial(RawMaterialInput{Name: "papel a4", Stock: 1})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = l.EditRawMaterial(a4.ID, RawMaterialInput{Name: "PAPEL KRAFT"})
	assert.ErrorIs(t, err, ErrDuplicateName)
	a4, err = l.EditRawMaterial(a4.ID, RawMaterialInput{Name: "Papel A4 ", Stock: 8, TotalCost: 20})
	require.NoError(t, err)
	assert.Equal(t, "Papel A4", a4.Name)
	assert.Len(t, l.RawMaterials(""), 2)

	assert.Len(t, l.RawMaterials("kraft"), 1)
	require.NoError(t, l.DeleteRawMaterial(rm.ID))
	assert.ErrorIs(t, l.DeleteRawMaterial(rm.ID), ErrNotFound)
}

func TestOrders(t *testing.T) {
	l, _, _ := newTestLedger(t)
	maria := addCustomer(t, l, "Maria")

	o, err := l.AddOrder(OrderInput{
		CustomerID:   maria.ID,
		OrderDate:    "2024-03-10",
		DeliveryDate: "2024-03-15",
		Description:  "Convites de aniversário",
		Value:        120,
	})
	require.NoError(t, err)
	assert.Equal(t, OrderPending, o.Status)
	assert.Zero(t, o.Value, "waiting orders carry no value")

	o, err = l.EditOrder(o.ID, OrderInput{
		OrderDate:    "2024-03-10",
		DeliveryDate: "2024-03-15",
		Description:  "Convites de aniversário",
		Value:        120,
		Status:       OrderInProduction,
	})
	require.NoError(t, err)
	assert.Equal(t, 120.0, o.Value)
	assert.Equal(t, maria.ID, o.CustomerID)

	_, err = l.AddOrder(OrderInput{CustomerID: maria.ID, OrderDate: "2024-03-10", DeliveryDate: "amanhã", Description: "x"})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = l.AddOrder(OrderInput{CustomerID: 999, OrderDate: "2024-03-10", DeliveryDate: "2024-03-20", Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	on, err := l.OrdersOn("2024-03-15")
	require.NoError(t, err)
	assert.Len(t, on, 1)
	assert.Len(t, l.OrdersInMonth(2024, time.March), 1)
	assert.Empty(t, l.OrdersInMonth(2024, time.April))

	dash := l.Dashboard()
	assert.Len(t, dash.DueToday, 1)

	require.NoError(t, l.DeleteOrder(o.ID))
	assert.Empty(t, l.Orders())
}
