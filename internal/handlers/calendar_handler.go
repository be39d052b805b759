package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/calsync"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/infra/calendar/google"
	"github.com/agendaflow/scheduling/internal/infra/repository"
	"github.com/agendaflow/scheduling/internal/middleware"
	"github.com/agendaflow/scheduling/internal/models"
)

// ======================================================
// HANDLER — conexão do profissional com o Google Calendar
// ======================================================

type CalendarHandler struct {
	accounts *repository.CalendarAccountGormStore
	google   *google.Client
}

func NewCalendarHandler(
	accounts *repository.CalendarAccountGormStore,
	googleClient *google.Client,
) *CalendarHandler {
	return &CalendarHandler{
		accounts: accounts,
		google:   googleClient,
	}
}

// ------------------------------------------------------
// CONNECT → devolve a URL de consentimento do Google
// ------------------------------------------------------

func (h *CalendarHandler) Connect(c *gin.Context) {
	// o vínculo com o profissional é a própria sessão autenticada do
	// callback; o state só protege contra CSRF
	c.JSON(http.StatusOK, gin.H{
		"auth_url": h.google.AuthURL(newState()),
	})
}

// ------------------------------------------------------
// CALLBACK → troca o code por token e grava a conta
// ------------------------------------------------------

type CalendarCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *CalendarHandler) Callback(c *gin.Context) {
	professionalID := c.MustGet(middleware.ContextProfessionalID).(uint)

	var req CalendarCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Código de autorização obrigatório.")
		return
	}

	authJSON, err := h.google.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		httperr.BadRequest(c, "oauth_exchange_failed", "Não foi possível conectar ao Google.")
		return
	}

	account, err := h.accounts.GetByProfessional(c.Request.Context(), professionalID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			httperr.Internal(c, "failed_to_get_account", "Erro ao consultar conexão.")
			return
		}
		account = &models.CalendarAccount{ProfessionalID: professionalID}
	}

	account.AuthJSON = authJSON
	account.Status = calsync.AccountConnected
	account.ChannelToken = newChannelToken()

	if err := h.accounts.Upsert(c.Request.Context(), account); err != nil {
		httperr.Internal(c, "failed_to_save_account", "Erro ao salvar conexão.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        account.Status,
		"channel_token": account.ChannelToken,
	})
}

// ------------------------------------------------------
// STATUS / DISCONNECT
// ------------------------------------------------------

func (h *CalendarHandler) Status(c *gin.Context) {
	professionalID := c.MustGet(middleware.ContextProfessionalID).(uint)

	account, err := h.accounts.GetByProfessional(c.Request.Context(), professionalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, gin.H{"status": "not_connected"})
			return
		}
		httperr.Internal(c, "failed_to_get_account", "Erro ao consultar conexão.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         account.Status,
		"last_synced_at": account.LastSyncedAt,
	})
}

func (h *CalendarHandler) Disconnect(c *gin.Context) {
	professionalID := c.MustGet(middleware.ContextProfessionalID).(uint)

	account, err := h.accounts.GetByProfessional(c.Request.Context(), professionalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, gin.H{"status": "not_connected"})
			return
		}
		httperr.Internal(c, "failed_to_get_account", "Erro ao consultar conexão.")
		return
	}

	if err := h.accounts.MarkDisconnected(c.Request.Context(), account); err != nil {
		httperr.Internal(c, "failed_to_disconnect", "Erro ao desconectar.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": account.Status})
}

// ------------------------------------------------------
// helpers
// ------------------------------------------------------

func newState() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "state"
	}
	return hex.EncodeToString(buf)
}

func newChannelToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
