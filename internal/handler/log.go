package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"papelaria-pdv/internal/models"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the audit log.
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{DB: db, EncryptKey: encryptKey}
}

type logResp struct {
	ID        uint      `json:"id"`
	Operation string    `json:"operation,omitempty"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// operations labels the audited routes that touch money.
var operations = []struct {
	method, prefix, label string
}{
	{http.MethodPost, "/api/checkout", "Venda"},
	{http.MethodPost, "/api/sales/", "Pagamento recebido"},
	{http.MethodPut, "/api/sales/", "Venda alterada"},
	{http.MethodDelete, "/api/sales/", "Estorno pedido"},
	{http.MethodPost, "/api/cash/in", "Entrada de caixa"},
	{http.MethodPost, "/api/cash/out", "Saída de caixa"},
	{http.MethodDelete, "/api/transactions/", "Exclusão de transação pedida"},
	{http.MethodPost, "/api/import/sales", "Importação de vendas"},
	{http.MethodPost, "/api/confirm", "Ação confirmada"},
}

func operationOf(method, path string) string {
	for _, op := range operations {
		if op.method == method && strings.HasPrefix(path, op.prefix) {
			return op.label
		}
	}
	return ""
}

func pageParams(c *gin.Context, def int) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(def)))
	if size <= 0 || size > 100 {
		size = def
	}
	return page, size
}

// ListLogs lists audit entries, newest first, with paging, ?start=/?end=
// (YYYY-MM-DD) and ?q= over the decrypted path and action. With
// ?money=1 only the operations that touch sales or cash are kept.
func (h *LogHandler) ListLogs(c *gin.Context) {
	page, size := pageParams(c, 20)

	base := h.DB.Model(&models.AuditLog{})
	if s := c.Query("start"); s != "" {
		start, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "data inicial inválida")
			return
		}
		base = base.Where("created_at >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "data final inválida")
			return
		}
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}

	var logs []models.AuditLog
	if err := base.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "falha na consulta")
		return
	}

	// path and action are encrypted, so the keyword filter runs here
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	moneyOnly := c.Query("money") == "1"
	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		path := util.DecryptField(h.EncryptKey, l.PathEnc)
		action := util.DecryptField(h.EncryptKey, l.ActionEnc)
		op := operationOf(l.Method, path)
		if moneyOnly && op == "" {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(path), q) && !strings.Contains(strings.ToLower(action), q) {
			continue
		}
		items = append(items, logResp{
			ID:        l.ID,
			Operation: op,
			Action:    action,
			Path:      path,
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	total := len(items)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	util.Success(c, util.Response{
		"items": items[start:end],
		"total": total,
		"page":  page,
		"size":  size,
	})
}
