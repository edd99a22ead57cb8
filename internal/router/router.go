package router

import (
	"net/http"
	"time"

	"papelaria-pdv/internal/backup"
	"papelaria-pdv/internal/config"
	"papelaria-pdv/internal/handler"
	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/logger"
	"papelaria-pdv/internal/middleware"
	"papelaria-pdv/internal/reminder"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps are the long-lived components the handlers share.
type Deps struct {
	DB       *gorm.DB
	Ledger   *ledger.Ledger
	Backups  *backup.Manager
	Reminder *reminder.Reminder
	Log      logger.Logger
}

// SetupRouter configures the gin engine and the JSON API.
func SetupRouter(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.AuditMiddleware(d.DB, cfg.Security.EncryptionKey, d.Log))

	confirm := handler.NewConfirmHandler(d.Ledger)
	api.POST("/actions", confirm.Request)
	api.GET("/actions/pending", confirm.Pending)
	api.POST("/confirm", confirm.Confirm)
	api.POST("/actions/cancel", confirm.Cancel)
	api.POST("/reset", confirm.Reset)

	catalog := handler.NewCatalogHandler(d.Ledger)
	api.GET("/products", catalog.ListProducts)
	api.POST("/products", catalog.CreateProduct)
	api.PUT("/products/:id", catalog.UpdateProduct)
	api.DELETE("/products/:id", confirm.DeleteProduct())

	api.GET("/categories", catalog.ListCategories)
	api.POST("/categories", catalog.CreateCategory)
	api.PUT("/categories/:id", catalog.UpdateCategory)
	api.DELETE("/categories/:id", confirm.DeleteCategory())

	api.GET("/customers", catalog.ListCustomers)
	api.POST("/customers", catalog.CreateCustomer)
	api.PUT("/customers/:id", catalog.UpdateCustomer)
	api.GET("/customers/:id/summary", catalog.CustomerSummary)
	api.DELETE("/customers/:id", confirm.DeleteCustomer())

	api.GET("/raw-materials", catalog.ListRawMaterials)
	api.POST("/raw-materials", catalog.CreateRawMaterial)
	api.PUT("/raw-materials/:id", catalog.UpdateRawMaterial)
	api.DELETE("/raw-materials/:id", confirm.DeleteRawMaterial())

	sale := handler.NewSaleHandler(d.Ledger)
	api.GET("/cart", sale.GetCart)
	api.POST("/cart/items", sale.AddToCart)
	api.PUT("/cart/items/:index/quantity", sale.ChangeQuantity)
	api.PUT("/cart/items/:index/discount", sale.SetItemDiscount)
	api.DELETE("/cart/items/:index", sale.RemoveFromCart)
	api.PUT("/cart/discount", sale.SetGeneralDiscount)
	api.DELETE("/cart", sale.ClearCart)
	api.POST("/checkout", sale.Checkout)

	api.GET("/sales/unpaid", sale.ListUnpaid)
	api.POST("/sales/:id/payment", sale.ReceivePayment)
	api.PUT("/sales/:id", sale.EditSale)
	api.GET("/sales/:id/receipt", sale.Receipt)
	api.DELETE("/sales/:id", confirm.ReverseSale())

	api.GET("/transactions", sale.ListTransactions)
	api.GET("/transactions/:id", sale.GetTransaction)
	api.DELETE("/transactions/:id", confirm.DeleteTransaction())

	api.GET("/cash", sale.CashStatus)
	api.POST("/cash/in", sale.CashIn)
	api.POST("/cash/out", sale.CashOut)

	order := handler.NewOrderHandler(d.Ledger)
	api.GET("/orders", order.ListOrders)
	api.POST("/orders", order.CreateOrder)
	api.PUT("/orders/:id", order.UpdateOrder)
	api.DELETE("/orders/:id", confirm.DeleteOrder())

	report := handler.NewReportHandler(d.Ledger)
	api.GET("/dashboard", report.Dashboard)
	api.GET("/reports/customers", report.Customers)
	api.GET("/reports/products", report.Products)
	api.GET("/reports/products/:id/sales", report.ProductSales)
	api.GET("/reports/cash-closing", report.CashClosing)
	api.GET("/reports/period/:period", report.Period)

	backups := handler.NewBackupHandler(d.Backups, d.Ledger, d.Reminder)
	api.POST("/backups", backups.CreateBackup)
	api.GET("/backups", backups.ListBackups)
	api.GET("/backups/:id/download", backups.DownloadBackup)
	api.POST("/backups/:id/restore", backups.RestoreBackup)
	api.DELETE("/backups/:id", backups.DeleteBackup)
	api.GET("/backups/reminder", backups.ReminderStatus)
	api.POST("/backups/reminder/ack", backups.AckReminder)

	ie := handler.NewImportExportHandler(d.Ledger)
	api.GET("/export/json", ie.ExportJSON)
	api.GET("/export/csv", ie.ExportCSV)
	api.GET("/export/xlsx", ie.ExportXLSX)
	api.POST("/import/json", ie.ImportJSON)
	api.POST("/import/sales", ie.ImportSales)

	settings := handler.NewSettingsHandler(d.Ledger)
	api.GET("/settings/theme", settings.GetTheme)
	api.PUT("/settings/theme", settings.SetTheme)

	logs := handler.NewLogHandler(d.DB, cfg.Security.EncryptionKey)
	api.GET("/logs", logs.ListLogs)

	return r
}
