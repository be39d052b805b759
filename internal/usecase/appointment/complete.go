package appointment

import (
	"context"

	"github.com/agendaflow/scheduling/internal/audit"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
	"github.com/agendaflow/scheduling/internal/timezone"

	"github.com/google/uuid"
)

type CompleteAppointmentInput struct {
	ProviderID     uint
	ProfessionalID uint
	AppointmentID  uuid.UUID

	// Acerto financeiro obrigatório: valor e forma de pagamento.
	// A captura em si é do colaborador de pagamentos; aqui só registramos.
	SettlementAmount float64
	SettlementMethod string
}

type CompleteAppointment struct {
	repo  domain.Repository
	audit AuditSink
}

func NewCompleteAppointment(repo domain.Repository, audit AuditSink) *CompleteAppointment {
	return &CompleteAppointment{repo: repo, audit: audit}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	in CompleteAppointmentInput,
) (*models.Appointment, error) {

	provider, err := uc.repo.GetProviderByID(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForProfessional(ctx, in.AppointmentID, in.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	settlement := &domain.Settlement{
		Amount: in.SettlementAmount,
		Method: in.SettlementMethod,
	}

	now := timezone.NowIn(provider.Timezone)
	if err := domain.Complete(ap, settlement, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: in.ProviderID,
		UserID:     &in.ProfessionalID,
		Action:     "appointment_completed",
		Entity:     "appointment",
		EntityID:   ap.ID.String(),
		Metadata: map[string]any{
			"settlement_amount": settlement.Amount,
			"settlement_method": settlement.Method,
		},
	})

	return ap, nil
}
