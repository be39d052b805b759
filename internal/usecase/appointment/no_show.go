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

type MarkNoShow struct {
	repo  domain.Repository
	audit AuditSink
}

func NewMarkNoShow(repo domain.Repository, audit AuditSink) *MarkNoShow {
	return &MarkNoShow{repo: repo, audit: audit}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	providerID uint,
	professionalID uint,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	provider, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForProfessional(ctx, appointmentID, professionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	now := timezone.NowIn(provider.Timezone)
	if err := domain.MarkNoShow(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: providerID,
		UserID:     &professionalID,
		Action:     "appointment_no_show",
		Entity:     "appointment",
		EntityID:   ap.ID.String(),
	})

	return ap, nil
}
