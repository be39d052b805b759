package appointment

import (
	"context"

	"github.com/agendaflow/scheduling/internal/audit"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"

	"github.com/google/uuid"
)

type ConfirmAppointment struct {
	repo  domain.Repository
	audit AuditSink
}

func NewConfirmAppointment(repo domain.Repository, audit AuditSink) *ConfirmAppointment {
	return &ConfirmAppointment{repo: repo, audit: audit}
}

// Confirmar não muda a janela do agendamento, então o espelho externo
// não precisa ser tocado.
func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	providerID uint,
	professionalID uint,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentForProfessional(ctx, appointmentID, professionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	if err := domain.Confirm(ap); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: providerID,
		UserID:     &professionalID,
		Action:     "appointment_confirmed",
		Entity:     "appointment",
		EntityID:   ap.ID.String(),
	})

	return ap, nil
}
