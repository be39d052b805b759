package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agendaflow/scheduling/internal/calsync"
	"github.com/agendaflow/scheduling/internal/infra/repository"
)

// WebhookHandler recebe as notificações push do calendário externo.
// A notificação não carrega o evento em si, só o sinal de que algo
// mudou: quem decide o que importar é a reconciliação.
type WebhookHandler struct {
	accounts   *repository.CalendarAccountGormStore
	dispatcher *calsync.Dispatcher
}

func NewWebhookHandler(
	accounts *repository.CalendarAccountGormStore,
	dispatcher *calsync.Dispatcher,
) *WebhookHandler {
	return &WebhookHandler{
		accounts:   accounts,
		dispatcher: dispatcher,
	}
}

func (h *WebhookHandler) Notify(c *gin.Context) {
	token := c.GetHeader("X-Goog-Channel-Token")
	if token == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	account, err := h.accounts.GetByChannelToken(c.Request.Context(), token)
	if err != nil {
		// token desconhecido: responde 200 para o Google não re-entregar
		c.Status(http.StatusOK)
		return
	}

	h.dispatcher.Dispatch(calsync.Job{
		Reconcile:      true,
		ProfessionalID: account.ProfessionalID,
	})

	c.Status(http.StatusOK)
}
