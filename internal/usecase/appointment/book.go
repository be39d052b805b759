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
)

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	ProviderID     uint
	ProfessionalID uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceIDs []uint

	Date  string
	Time  string
	Notes string

	// true para agendamento criado pelo próprio profissional,
	// que nasce confirmado sem passar por pending.
	PreConfirmed bool

	ReminderMinutes int
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo  domain.Repository
	audit AuditSink
	sync  SyncQueue
	cache SlotCache
}

func NewBookAppointment(
	repo domain.Repository,
	audit AuditSink,
	sync SyncQueue,
	cache SlotCache,
) *BookAppointment {
	return &BookAppointment{
		repo:  repo,
		audit: audit,
		sync:  sync,
		cache: cache,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Provider
	// --------------------------------------------------
	provider, err := uc.repo.GetProviderByID(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2️⃣ Profissional pertence ao provider
	// --------------------------------------------------
	prof, err := uc.repo.GetProfessional(ctx, in.ProfessionalID)
	if err != nil || prof.ProviderID != in.ProviderID {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	// --------------------------------------------------
	// 3️⃣ Data / hora no fuso do negócio
	// --------------------------------------------------
	tz := provider.Timezone
	if prof.Timezone != "" {
		tz = prof.Timezone
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(tz),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 4️⃣ Antecedência mínima
	// --------------------------------------------------
	minAdvance := provider.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 120
	}

	now := timezone.NowIn(tz)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// --------------------------------------------------
	// 5️⃣ Serviços (snapshot congelado no agendamento)
	// --------------------------------------------------
	if len(in.ServiceIDs) == 0 {
		return nil, httperr.ErrBusiness("missing_services")
	}

	snapshots := make(models.ServiceSnapshots, 0, len(in.ServiceIDs))
	for _, serviceID := range in.ServiceIDs {
		svc, err := uc.repo.GetService(ctx, in.ProviderID, serviceID)
		if err != nil {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		if !svc.Active {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		snapshots = append(snapshots, models.ServiceSnapshot{
			Name:        svc.Name,
			DurationMin: svc.DurationMin,
			Price:       svc.Price,
		})
	}

	end := start.Add(snapshots.TotalDuration())

	// --------------------------------------------------
	// 6️⃣ Expediente do dia
	// --------------------------------------------------
	day, err := uc.repo.GetDailyAvailability(ctx, in.ProfessionalID, int(start.Weekday()))
	if err != nil {
		return nil, httperr.ErrBusiness("outside_availability")
	}
	if !schedule.Contains(*day, start, end) {
		return nil, httperr.ErrBusiness("outside_availability")
	}

	// --------------------------------------------------
	// 7️⃣ Cliente (get or create por telefone)
	// --------------------------------------------------
	client, err := uc.repo.GetOrCreateClient(
		ctx,
		in.ProviderID,
		in.ClientName,
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 8️⃣ Reserva atômica (checagem + insert na mesma transação)
	// --------------------------------------------------
	status := domain.InitialStatus()
	if in.PreConfirmed {
		status = domain.StatusScheduled
	}

	ap := &models.Appointment{
		ProviderID:      in.ProviderID,
		ProfessionalID:  in.ProfessionalID,
		ClientID:        &client.ID,
		StartTime:       start,
		EndTime:         end,
		Services:        snapshots,
		Status:          string(status),
		Notes:           in.Notes,
		ReminderMinutes: in.ReminderMinutes,
	}

	if err := domain.ValidateNew(ap); err != nil {
		return nil, err
	}
	if err := uc.repo.Reserve(ctx, ap); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 9️⃣ Efeitos pós-commit: espelho, cache, auditoria
	// --------------------------------------------------
	uc.sync.Dispatch(calsync.Job{
		Op:             calsync.OpCreate,
		AppointmentID:  ap.ID,
		ProfessionalID: ap.ProfessionalID,
	})

	uc.cache.InvalidateDay(ctx, in.ProfessionalID, in.Date)

	uc.audit.Dispatch(audit.Event{
		ProviderID: in.ProviderID,
		Action:     "appointment_booked",
		Entity:     "appointment",
		EntityID:   ap.ID.String(),
	})

	return ap, nil
}
