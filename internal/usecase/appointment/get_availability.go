package appointment

import (
	"context"
	"time"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/domain/schedule"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/timezone"
)

type GetAvailability struct {
	repo  domain.Repository
	cache SlotCache
}

func NewGetAvailability(repo domain.Repository, cache SlotCache) *GetAvailability {
	return &GetAvailability{repo: repo, cache: cache}
}

// Execute devolve os horários em que a combinação de serviços caberia
// na agenda do profissional na data pedida. Dia fechado retorna lista
// vazia, não erro.
func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.TimeSlot, error) {

	// --------------------------------------------------
	// 1️⃣ Duração total dos serviços pedidos
	// --------------------------------------------------
	if len(in.ServiceIDs) == 0 {
		return nil, httperr.ErrBusiness("missing_services")
	}

	var totalMin int
	for _, serviceID := range in.ServiceIDs {
		svc, err := uc.repo.GetService(ctx, in.ProviderID, serviceID)
		if err != nil {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		totalMin += svc.DurationMin
	}
	duration := time.Duration(totalMin) * time.Minute

	// --------------------------------------------------
	// 2️⃣ Cache
	// --------------------------------------------------
	dateKey := in.Date.Format("2006-01-02")
	if slots, ok := uc.cache.Get(ctx, in.ProfessionalID, dateKey, totalMin); ok {
		return slots, nil
	}

	// --------------------------------------------------
	// 3️⃣ Janela do dia no fuso do profissional
	// --------------------------------------------------
	prof, err := uc.repo.GetProfessional(ctx, in.ProfessionalID)
	if err != nil || prof.ProviderID != in.ProviderID {
		return nil, httperr.ErrBusiness("professional_not_found")
	}

	tz := prof.Timezone
	if tz == "" {
		provider, err := uc.repo.GetProviderByID(ctx, in.ProviderID)
		if err != nil {
			return nil, err
		}
		tz = provider.Timezone
	}
	loc := timezone.Location(tz)
	date := in.Date.In(loc)

	day, err := uc.repo.GetDailyAvailability(ctx, in.ProfessionalID, int(date.Weekday()))
	if err != nil {
		return []domain.TimeSlot{}, nil
	}
	windowStart, windowEnd, open := schedule.WindowOn(*day, date)
	if !open {
		return []domain.TimeSlot{}, nil
	}

	// --------------------------------------------------
	// 4️⃣ Ocupações ativas do dia
	// --------------------------------------------------
	occupations, err := uc.repo.ListOccupationsForDay(
		ctx,
		in.ProfessionalID,
		windowStart,
		windowEnd,
	)
	if err != nil {
		return nil, err
	}

	busy := make([]schedule.Interval, 0, len(occupations))
	for _, ap := range occupations {
		busy = append(busy, schedule.Interval{
			Start: ap.StartTime,
			End:   ap.EndTime,
		})
	}

	// --------------------------------------------------
	// 5️⃣ Grade de horários
	// --------------------------------------------------
	step := time.Duration(prof.SlotIntervalMinutes) * time.Minute
	if step <= 0 {
		step = 30 * time.Minute
	}

	var cutoff time.Time
	now := timezone.NowIn(tz)
	if date.Year() == now.Year() && date.YearDay() == now.YearDay() {
		cutoff = now
	}

	starts := schedule.ComputeSlots(windowStart, windowEnd, duration, step, busy, cutoff)

	slots := make([]domain.TimeSlot, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, domain.TimeSlot{
			Start: s.Format("15:04"),
			End:   s.Add(duration).Format("15:04"),
		})
	}

	uc.cache.Set(ctx, in.ProfessionalID, dateKey, totalMin, slots)

	return slots, nil
}
