package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"papelaria-pdv/internal/backup"
	"papelaria-pdv/internal/config"
	"papelaria-pdv/internal/database"
	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/models"
	"papelaria-pdv/internal/reminder"
	"papelaria-pdv/internal/storage"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	ledger *ledger.Ledger
	db     *gorm.DB
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	dir := t.TempDir()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(dir, "pdv.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	l := ledger.New(storage.NewGormStore(db, 0), ledger.WithLocation(time.UTC))
	require.NoError(t, l.Load())

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		Security: config.SecurityConfig{EncryptionKey: "chave-de-teste"},
		Backup:   config.BackupConfig{Dir: filepath.Join(dir, "backups")},
	}
	engine := SetupRouter(cfg, Deps{
		DB:       db,
		Ledger:   l,
		Backups:  backup.NewManager(db, l, cfg.Security.EncryptionKey, cfg.Backup.Dir, nil),
		Reminder: reminder.New(time.Hour, nil, nil),
	})
	return &testAPI{t: t, engine: engine, ledger: l, db: db}
}

func (a *testAPI) send(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (a *testAPI) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req)
}

func (a *testAPI) upload(path, name string, content []byte) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(a.t, err)
	_, err = fw.Write(content)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.send(req)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (a *testAPI) createProduct(name string, price, cost float64) ledger.Product {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/products", ledger.ProductInput{Name: name, Price: price, Cost: cost})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[struct {
		Product ledger.Product `json:"product"`
	}](a.t, env).Product
}

func TestCheckoutFlow(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("Caderno", 12.5, 6)

	w, _ := api.do(http.MethodPost, "/api/cart/items", gin.H{"productId": p.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodPut, "/api/cart/items/0/quantity", gin.H{"delta": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w, env := api.do(http.MethodPut, "/api/cart/discount", ledger.Discount{Type: ledger.DiscountFixed, Value: 5})
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[ledger.CartView](t, env)
	assert.InDelta(t, 20, view.Totals.Total, 1e-9)

	w, env = api.do(http.MethodPost, "/api/checkout", gin.H{"method": ledger.MethodCash})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sale := decode[struct {
		Sale ledger.Transaction `json:"sale"`
	}](t, env).Sale
	assert.InDelta(t, 20, sale.Amount, 1e-9)
	assert.Equal(t, ledger.StatusPaid, sale.Status)

	_, env = api.do(http.MethodGet, "/api/cash", nil)
	cash := decode[map[string]interface{}](t, env)
	assert.InDelta(t, 20, cash["balance"], 1e-9)
	assert.Equal(t, true, cash["consistent"])

	w, env = api.do(http.MethodGet, fmt.Sprintf("/api/sales/%d/receipt", sale.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	receipt := decode[map[string]interface{}](t, env)
	assert.Equal(t, "R$ 20,00", receipt["total"])
	assert.Equal(t, "R$ 25,00", receipt["subtotal"])
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct("Lápis", 1, 0.3)

	w, env := api.do(http.MethodPost, "/api/products", ledger.ProductInput{Name: "lápis", Price: 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, util.CodeConflict, env.Code)

	w, env = api.do(http.MethodPut, "/api/products/999", ledger.ProductInput{Name: "Borracha", Price: 2})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, util.CodeNotFound, env.Code)

	w, _ = api.do(http.MethodPut, "/api/products/abc", ledger.ProductInput{Name: "Borracha"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/api/checkout", gin.H{"method": ledger.MethodCash})
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty cart")

	w, _ = api.do(http.MethodPost, "/api/cash/out", gin.H{"amount": 10})
	assert.Equal(t, http.StatusConflict, w.Code, "insufficient cash")

	w, _ = api.do(http.MethodGet, "/api/reports/period/hourly", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("Cola", 4, 2)

	w, env := api.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode[struct {
		Pending ledger.PendingAction `json:"pending"`
	}](t, env).Pending
	assert.Equal(t, ledger.ActionDeleteProduct, pending.Kind)
	assert.Len(t, api.ledger.Products("", 0), 1, "nothing deleted before confirm")

	w, _ = api.do(http.MethodPost, "/api/confirm", gin.H{"token": "errado"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPost, "/api/confirm", gin.H{"token": pending.Token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, api.ledger.Products("", 0))
}

func TestReferencedProductRejected(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("Régua", 3, 1)
	_, err := api.ledger.AddToCart(p.ID)
	require.NoError(t, err)
	_, err = api.ledger.Checkout(ledger.CheckoutRequest{Method: ledger.MethodPix})
	require.NoError(t, err)

	w, _ := api.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	_, ok := api.ledger.Pending()
	assert.False(t, ok)
}

func TestAuditLogIsEncrypted(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct("Tesoura", 8, 4)

	var rows []models.AuditLog
	require.NoError(t, api.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.NotContains(t, rows[0].ActionEnc, "Tesoura")
	assert.NotEqual(t, "/api/products", rows[0].PathEnc)

	w, env := api.do(http.MethodGet, "/api/logs?q=tesoura", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[struct {
		Items []struct {
			Path   string `json:"path"`
			Action string `json:"action"`
			Method string `json:"method"`
		} `json:"items"`
		Total int `json:"total"`
	}](t, env)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "/api/products", out.Items[0].Path)
	assert.Equal(t, http.MethodPost, out.Items[0].Method)
	assert.Contains(t, out.Items[0].Action, "Tesoura")
}

func TestExports(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("Marcador", 7.5, 3)
	_, err := api.ledger.AddToCart(p.ID)
	require.NoError(t, err)
	_, err = api.ledger.Checkout(ledger.CheckoutRequest{Method: ledger.MethodCash})
	require.NoError(t, err)

	w, _ := api.do(http.MethodGet, "/api/export/csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\ufeffID,Data,Tipo"))
	assert.Contains(t, body, "Venda,Venda de 1 item(s)")
	assert.Contains(t, body, "7.50")

	w, _ = api.do(http.MethodGet, "/api/export/xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Transações", "I2")
	require.NoError(t, err)
	assert.Equal(t, "7.50", v)
	assert.Len(t, f.GetSheetList(), 2)

	w, _ = api.do(http.MethodGet, "/api/export/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap, err := ledger.ParseSnapshot(w.Body)
	require.NoError(t, err)
	assert.Len(t, snap.Products, 1)
}

func TestImportSalesUpload(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("Envelope", 0.5, 0.1)

	csv := fmt.Sprintf("2024-02-01T09:30,%d,10,1,Dinheiro,Pago\n2024-02-01T09:30,%d,0,1,Dinheiro,Pago\n", p.ID, p.ID)
	w, env := api.upload("/api/import/sales", "vendas.csv", []byte(csv))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[ledger.ImportResult](t, env)
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Line)
	assert.Zero(t, api.ledger.CashBalance())
}

func TestImportSnapshotNeedsConfirmation(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct("Clips", 1, 0.2)

	w, _ := api.upload("/api/import/json", "backup.json", []byte(`{"products": []}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	doc := `{"products": [], "transactions": [], "customers": [], "cashBalance": 42}`
	w, env := api.upload("/api/import/json", "backup.json", []byte(doc))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pending := decode[struct {
		Pending ledger.PendingAction `json:"pending"`
	}](t, env).Pending
	assert.Len(t, api.ledger.Products("", 0), 1)

	w, _ = api.do(http.MethodPost, "/api/confirm", gin.H{"token": pending.Token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, api.ledger.Products("", 0))
	assert.InDelta(t, 42, api.ledger.CashBalance(), 1e-9)
}

func TestBackupRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	api.createProduct("Grampeador", 25, 12)

	w, _ := api.do(http.MethodPost, "/api/backups", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, env := api.do(http.MethodGet, "/api/backups", nil)
	list := decode[struct {
		Items []struct {
			ID uint `json:"id"`
		} `json:"items"`
	}](t, env).Items
	require.Len(t, list, 1)

	w, env = api.do(http.MethodPost, fmt.Sprintf("/api/backups/%d/restore", list[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	pending := decode[struct {
		Pending ledger.PendingAction `json:"pending"`
	}](t, env).Pending
	assert.Equal(t, ledger.ActionRestore, pending.Kind)

	w, _ = api.do(http.MethodGet, "/api/backups/999/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTheme(t *testing.T) {
	api := newTestAPI(t)
	w, _ := api.do(http.MethodPut, "/api/settings/theme", gin.H{"theme": "dark"})
	require.Equal(t, http.StatusOK, w.Code)
	_, env := api.do(http.MethodGet, "/api/settings/theme", nil)
	assert.Equal(t, "dark", decode[map[string]string](t, env)["theme"])

	w, _ = api.do(http.MethodPut, "/api/settings/theme", gin.H{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
