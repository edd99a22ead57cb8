package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"papelaria-pdv/internal/backup"
	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/models"
	"papelaria-pdv/internal/reminder"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

// BackupHandler serves encrypted backups and the backup reminder.
type BackupHandler struct {
	Backups  *backup.Manager
	Ledger   *ledger.Ledger
	Reminder *reminder.Reminder
}

func NewBackupHandler(m *backup.Manager, l *ledger.Ledger, r *reminder.Reminder) *BackupHandler {
	return &BackupHandler{Backups: m, Ledger: l, Reminder: r}
}

func backupResp(b models.Backup) gin.H {
	return gin.H{
		"id":         b.ID,
		"file_name":  b.FileName,
		"size":       b.Size,
		"auto":       b.Auto,
		"created_at": b.CreatedAt,
	}
}

func backupID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "id inválido")
		return 0, false
	}
	return uint(id), true
}

// CreateBackup writes a new backup and clears the reminder.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	b, err := h.Backups.Create(false)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "falha ao criar backup")
		return
	}
	if h.Reminder != nil {
		h.Reminder.Ack()
	}
	util.Success(c, util.Response{"backup": backupResp(b)})
}

func (h *BackupHandler) ListBackups(c *gin.Context) {
	list, err := h.Backups.List()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "falha ao listar backups")
		return
	}
	items := make([]gin.H, 0, len(list))
	for _, b := range list {
		items = append(items, backupResp(b))
	}
	util.Success(c, util.Response{"items": items})
}

func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	id, ok := backupID(c)
	if !ok {
		return
	}
	b, err := h.Backups.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", b.FileName))
	c.File(b.FilePath)
}

func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	id, ok := backupID(c)
	if !ok {
		return
	}
	if err := h.Backups.Delete(id); err != nil {
		writeError(c, err)
		return
	}
	util.Success(c, util.Response{"message": "backup excluído"})
}

// RestoreBackup decrypts the backup and parks a restore; it runs on confirm.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	id, ok := backupID(c)
	if !ok {
		return
	}
	snap, err := h.Backups.Read(id)
	if err != nil {
		writeError(c, err)
		return
	}
	a, err := h.Ledger.RequestRestore(snap)
	respond(c, util.Response{"pending": a, "backupDate": snap.BackupDate}, err)
}

// ---------- reminder ----------

func (h *BackupHandler) ReminderStatus(c *gin.Context) {
	due, at := h.Reminder.Due()
	util.Success(c, util.Response{"due": due, "lastAt": at})
}

func (h *BackupHandler) AckReminder(c *gin.Context) {
	h.Reminder.Ack()
	util.Success(c, util.Response{"due": false})
}
