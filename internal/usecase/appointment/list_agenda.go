package appointment

import (
	"context"
	"time"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
	"github.com/agendaflow/scheduling/internal/timezone"
)

type ListAgenda struct {
	repo domain.Repository
}

func NewListAgenda(repo domain.Repository) *ListAgenda {
	return &ListAgenda{repo: repo}
}

// ByDate lista os agendamentos do profissional num dia ("2006-01-02").
func (uc *ListAgenda) ByDate(
	ctx context.Context,
	providerID uint,
	professionalID uint,
	date string,
) ([]models.Appointment, error) {

	provider, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(provider.Timezone)
	start, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	return uc.repo.ListAppointmentsForPeriod(
		ctx,
		professionalID,
		start,
		start.AddDate(0, 0, 1),
	)
}

// ByMonth lista os agendamentos do profissional num mês ("2006-01").
func (uc *ListAgenda) ByMonth(
	ctx context.Context,
	providerID uint,
	professionalID uint,
	month string,
) ([]models.Appointment, error) {

	provider, err := uc.repo.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(provider.Timezone)
	start, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	return uc.repo.ListAppointmentsForPeriod(
		ctx,
		professionalID,
		start,
		start.AddDate(0, 1, 0),
	)
}
