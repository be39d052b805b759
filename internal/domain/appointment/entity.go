package appointment

import (
	"time"

	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Settlement é o acerto financeiro informado pelo colaborador de
// pagamentos ao concluir um atendimento.
type Settlement struct {
	Amount float64
	Method string
}

func Confirm(ap *models.Appointment) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusScheduled)
	return nil
}

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, settlement *Settlement, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}
	if settlement == nil || settlement.Amount < 0 || settlement.Method == "" {
		return httperr.ErrBusiness("missing_settlement")
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

func MarkNoShow(ap *models.Appointment, now time.Time) error {
	if err := CanMarkNoShow(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusNoShow)
	return nil
}

// ApplyReschedule muda a janela do agendamento. O caso de uso só chama
// depois de validar expediente e conflito; aqui apenas o estado muda.
func ApplyReschedule(ap *models.Appointment, newStart, newEnd time.Time) error {
	if err := CanReschedule(Status(ap.Status)); err != nil {
		return err
	}
	if !newEnd.After(newStart) {
		return httperr.ErrBusiness("invalid_interval")
	}

	ap.StartTime = newStart
	ap.EndTime = newEnd
	return nil
}

// ValidateNew garante os invariantes de criação: fim depois do início
// e, para agendamentos de cliente, pelo menos um serviço.
func ValidateNew(ap *models.Appointment) error {
	if !ap.EndTime.After(ap.StartTime) {
		return httperr.ErrBusiness("invalid_interval")
	}
	if !ap.IsPersonalBlock && len(ap.Services) == 0 {
		return httperr.ErrBusiness("missing_services")
	}
	return nil
}

// NeedsMirror indica se a transição precisa refletir no calendário
// externo: só quando o evento já foi espelhado.
func NeedsMirror(ap *models.Appointment) bool {
	return ap.ExternalEventID != nil && *ap.ExternalEventID != ""
}
