package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/agendaflow/scheduling/internal/httperr"
)

// mapBusinessError traduz os códigos de negócio dos casos de uso para a
// resposta HTTP. Qualquer coisa fora da taxonomia vira 500 genérico.
func mapBusinessError(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, "schedule_conflict"), httperr.IsExclusionConflict(err):
		httperr.Conflict(c, "schedule_conflict", "Conflito de horário.")

	case httperr.IsBusiness(err, "invalid_state"):
		httperr.BadRequest(c, "invalid_state", "Transição de status inválida.")

	case httperr.IsBusiness(err, "missing_settlement"):
		httperr.BadRequest(c, "missing_settlement", "Informe valor e forma de pagamento.")

	case httperr.IsBusiness(err, "invalid_availability"):
		httperr.BadRequest(c, "invalid_availability", "Grade de horários inválida.")

	case httperr.IsBusiness(err, "outside_availability"):
		httperr.BadRequest(c, "outside_availability", "Fora do horário de atendimento.")

	case httperr.IsBusiness(err, "too_soon"):
		httperr.BadRequest(c, "too_soon", "Horário inválido.")

	case httperr.IsBusiness(err, "invalid_date_or_time"):
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")

	case httperr.IsBusiness(err, "invalid_interval"):
		httperr.BadRequest(c, "invalid_interval", "Intervalo inválido.")

	case httperr.IsBusiness(err, "missing_services"):
		httperr.BadRequest(c, "missing_services", "Selecione ao menos um serviço.")

	case httperr.IsBusiness(err, "service_not_found"):
		httperr.BadRequest(c, "service_not_found", "Serviço não encontrado.")

	case httperr.IsBusiness(err, "professional_not_found"):
		httperr.BadRequest(c, "professional_not_found", "Profissional não encontrado.")

	case httperr.IsBusiness(err, "appointment_not_found"):
		httperr.NotFound(c, "appointment_not_found", "Agendamento não encontrado.")

	default:
		httperr.Internal(c, "internal_error", "Erro interno.")
	}
}
