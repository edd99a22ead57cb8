package handler

import (
	"strconv"

	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves products, categories, customers and raw materials.
// Deletions go through ConfirmHandler.
type CatalogHandler struct {
	Ledger *ledger.Ledger
}

func NewCatalogHandler(l *ledger.Ledger) *CatalogHandler {
	return &CatalogHandler{Ledger: l}
}

// ListProducts supports ?q= (name or barcode) and ?category=.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var category int64
	if s := c.Query("category"); s != "" {
		category, _ = strconv.ParseInt(s, 10, 64)
	}
	util.Success(c, util.Response{"items": h.Ledger.Products(c.Query("q"), category)})
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req ledger.ProductInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Ledger.AddProduct(req)
	respond(c, util.Response{"product": p}, err)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ledger.ProductInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Ledger.EditProduct(id, req)
	respond(c, util.Response{"product": p}, err)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	util.Success(c, util.Response{"items": h.Ledger.Categories()})
}

type nameRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.Ledger.AddCategory(req.Name)
	respond(c, util.Response{"category": cat}, err)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.Ledger.RenameCategory(id, req.Name)
	respond(c, util.Response{"category": cat}, err)
}

func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	util.Success(c, util.Response{"items": h.Ledger.Customers(c.Query("q"))})
}

func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.Ledger.AddCustomer(req.Name, req.Contact)
	respond(c, util.Response{"customer": cust}, err)
}

func (h *CatalogHandler) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	cust, err := h.Ledger.EditCustomer(id, req.Name, req.Contact)
	respond(c, util.Response{"customer": cust}, err)
}

// CustomerSummary returns totals and history of one customer.
func (h *CatalogHandler) CustomerSummary(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	s, err := h.Ledger.CustomerSummary(id)
	respond(c, s, err)
}

type rawMaterialResp struct {
	ledger.RawMaterial
	UnitCost float64 `json:"unitCost"`
}

func (h *CatalogHandler) ListRawMaterials(c *gin.Context) {
	list := h.Ledger.RawMaterials(c.Query("q"))
	items := make([]rawMaterialResp, 0, len(list))
	for _, rm := range list {
		items = append(items, rawMaterialResp{RawMaterial: rm, UnitCost: rm.UnitCost()})
	}
	util.Success(c, util.Response{"items": items})
}

func (h *CatalogHandler) CreateRawMaterial(c *gin.Context) {
	var req ledger.RawMaterialInput
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.Ledger.AddRawMaterial(req)
	respond(c, util.Response{"rawMaterial": rawMaterialResp{rm, rm.UnitCost()}}, err)
}

func (h *CatalogHandler) UpdateRawMaterial(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req ledger.RawMaterialInput
	if !bindJSON(c, &req) {
		return
	}
	rm, err := h.Ledger.EditRawMaterial(id, req)
	respond(c, util.Response{"rawMaterial": rawMaterialResp{rm, rm.UnitCost()}}, err)
}
