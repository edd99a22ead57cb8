package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"papelaria-pdv/internal/logger"
	"papelaria-pdv/internal/models"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxAuditBody = 2000

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// AuditMiddleware stores every mutating request in audit_logs, with path and
// action encrypted under encryptKey.
func AuditMiddleware(db *gorm.DB, encryptKey string, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !mutating(c.Request.Method) {
			c.Next()
			return
		}

		// keep small JSON bodies for the action summary; uploads are skipped
		var bodyBytes []byte
		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody {
			action += " " + string(bodyBytes)
		}

		encPath, _ := util.EncryptField(encryptKey, path)
		encAction, _ := util.EncryptField(encryptKey, action)

		entry := models.AuditLog{
			Method:    c.Request.Method,
			PathEnc:   encPath,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.Create(&entry).Error; err != nil && log != nil {
			log.Warn("falha ao gravar auditoria", "path", path, "error", err)
		}
	}
}
