package appointment

import (
	"context"

	"github.com/agendaflow/scheduling/internal/audit"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/domain/schedule"
	"github.com/agendaflow/scheduling/internal/models"
)

// SetWeeklyAvailability substitui a grade semanal do profissional de uma
// vez. Agendamentos existentes fora da nova grade não são cancelados:
// a grade só governa novas reservas.
type SetWeeklyAvailability struct {
	repo  domain.Repository
	audit AuditSink
}

func NewSetWeeklyAvailability(repo domain.Repository, audit AuditSink) *SetWeeklyAvailability {
	return &SetWeeklyAvailability{repo: repo, audit: audit}
}

func (uc *SetWeeklyAvailability) Execute(
	ctx context.Context,
	providerID uint,
	professionalID uint,
	days []models.DailyAvailability,
) error {

	if err := schedule.ValidateWeek(days); err != nil {
		return err
	}

	if err := uc.repo.ReplaceDailyAvailability(ctx, professionalID, days); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ProviderID: providerID,
		UserID:     &professionalID,
		Action:     "availability_updated",
		Entity:     "daily_availability",
	})

	return nil
}
