package handler

import (
	"papelaria-pdv/internal/ledger"
	"papelaria-pdv/internal/util"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	Ledger *ledger.Ledger
}

func NewSettingsHandler(l *ledger.Ledger) *SettingsHandler {
	return &SettingsHandler{Ledger: l}
}

func (h *SettingsHandler) GetTheme(c *gin.Context) {
	util.Success(c, util.Response{"theme": h.Ledger.Theme()})
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (h *SettingsHandler) SetTheme(c *gin.Context) {
	var req themeRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.Ledger.SetTheme(req.Theme)
	respond(c, util.Response{"theme": h.Ledger.Theme()}, err)
}
