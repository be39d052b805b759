package appointment

import (
	"context"
	"time"

	"github.com/agendaflow/scheduling/internal/audit"
	"github.com/agendaflow/scheduling/internal/calsync"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/domain/schedule"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
	"github.com/agendaflow/scheduling/internal/timezone"

	"github.com/google/uuid"
)

type RescheduleAppointmentInput struct {
	ProviderID     uint
	ProfessionalID uint
	AppointmentID  uuid.UUID

	NewDate string
	NewTime string
}

type RescheduleAppointment struct {
	repo  domain.Repository
	audit AuditSink
	sync  SyncQueue
	cache SlotCache
}

func NewRescheduleAppointment(
	repo domain.Repository,
	audit AuditSink,
	sync SyncQueue,
	cache SlotCache,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:  repo,
		audit: audit,
		sync:  sync,
		cache: cache,
	}
}

// Execute move o agendamento para a nova janela. A troca é tudo-ou-nada:
// se a nova janela conflita, o horário original permanece reservado.
func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*models.Appointment, error) {

	provider, err := uc.repo.GetProviderByID(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForProfessional(ctx, in.AppointmentID, in.ProfessionalID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	oldDate := ap.StartTime.Format("2006-01-02")
	duration := ap.EndTime.Sub(ap.StartTime)

	newStart, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.NewDate+" "+in.NewTime,
		timezone.Location(provider.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	newEnd := newStart.Add(duration)

	now := timezone.NowIn(provider.Timezone)
	if newStart.Before(now) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	day, err := uc.repo.GetDailyAvailability(ctx, in.ProfessionalID, int(newStart.Weekday()))
	if err != nil {
		return nil, httperr.ErrBusiness("outside_availability")
	}
	if !schedule.Contains(*day, newStart, newEnd) {
		return nil, httperr.ErrBusiness("outside_availability")
	}

	// checagem de conflito + mudança de janela na mesma transação,
	// ignorando o próprio registro
	if err := uc.repo.ReserveReschedule(ctx, ap, newStart, newEnd); err != nil {
		return nil, err
	}

	if domain.NeedsMirror(ap) {
		uc.sync.Dispatch(calsync.Job{
			Op:             calsync.OpUpdate,
			AppointmentID:  ap.ID,
			ProfessionalID: ap.ProfessionalID,
		})
	}

	uc.cache.InvalidateDay(ctx, in.ProfessionalID, oldDate)
	uc.cache.InvalidateDay(ctx, in.ProfessionalID, in.NewDate)

	uc.audit.Dispatch(audit.Event{
		ProviderID: in.ProviderID,
		UserID:     &in.ProfessionalID,
		Action:     "appointment_rescheduled",
		Entity:     "appointment",
		EntityID:   ap.ID.String(),
		Metadata: map[string]any{
			"new_start": newStart,
			"new_end":   newEnd,
		},
	})

	return ap, nil
}
