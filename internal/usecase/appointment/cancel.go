package appointment

import (
	"context"

	"github.com/agendaflow/scheduling/internal/audit"
	"github.com/agendaflow/scheduling/internal/calsync"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
	"github.com/agendaflow/scheduling/internal/timezone"

	"github.com/google/uuid"
)

type CancelAppointment struct {
	repo  domain.Repository
	audit AuditSink
	sync  SyncQueue
	cache SlotCache
}

func NewCancelAppointment(
	repo domain.Repository,
	audit AuditSink,
	sync SyncQueue,
	cache SlotCache,
) *CancelAppointment {
	return &CancelAppointment{
		repo:  repo,
		audit: audit,
		sync:  sync,
		cache: cache,
	}
}

func (uc *CancelAppointment) Execute(
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

	mirrored := domain.NeedsMirror(ap)

	now := timezone.NowIn(provider.Timezone)
	if err := domain.Cancel(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// o slot voltou a ficar livre; apaga o espelho se ele existia
	if mirrored {
		uc.sync.Dispatch(calsync.Job{
			Op:             calsync.OpDelete,
			AppointmentID:  ap.ID,
			ProfessionalID: ap.ProfessionalID,
		})
	}

	uc.cache.InvalidateDay(ctx, professionalID, ap.StartTime.Format("2006-01-02"))

	uc.audit.Dispatch(audit.Event{
		ProviderID: providerID,
		UserID:     &professionalID,
		Action:     "appointment_cancelled",
		Entity:     "appointment",
		EntityID:   ap.ID.String(),
	})

	return ap, nil
}
