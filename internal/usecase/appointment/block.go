package appointment

import (
	"context"
	"time"

	"github.com/agendaflow/scheduling/internal/audit"
	"github.com/agendaflow/scheduling/internal/calsync"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
	"github.com/agendaflow/scheduling/internal/timezone"
)

type CreateBlockInput struct {
	ProviderID     uint
	ProfessionalID uint

	Date      string
	StartTime string
	EndTime   string
	Notes     string
}

// CreateBlock reserva um intervalo pessoal do profissional (folga,
// almoço fora da grade). Bloqueio ocupa horário como agendamento,
// mas nunca tem cliente nem serviços.
type CreateBlock struct {
	repo  domain.Repository
	audit AuditSink
	sync  SyncQueue
	cache SlotCache
}

func NewCreateBlock(
	repo domain.Repository,
	audit AuditSink,
	sync SyncQueue,
	cache SlotCache,
) *CreateBlock {
	return &CreateBlock{
		repo:  repo,
		audit: audit,
		sync:  sync,
		cache: cache,
	}
}

func (uc *CreateBlock) Execute(
	ctx context.Context,
	in CreateBlockInput,
) (*models.Appointment, error) {

	provider, err := uc.repo.GetProviderByID(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(provider.Timezone)

	start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.StartTime, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.EndTime, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	ap := &models.Appointment{
		ProviderID:      in.ProviderID,
		ProfessionalID:  in.ProfessionalID,
		StartTime:       start,
		EndTime:         end,
		Status:          string(domain.StatusBlocked),
		IsPersonalBlock: true,
		Notes:           in.Notes,
	}

	if err := domain.ValidateNew(ap); err != nil {
		return nil, err
	}
	if err := uc.repo.Reserve(ctx, ap); err != nil {
		return nil, err
	}

	uc.sync.Dispatch(calsync.Job{
		Op:             calsync.OpCreate,
		AppointmentID:  ap.ID,
		ProfessionalID: ap.ProfessionalID,
	})

	uc.cache.InvalidateDay(ctx, in.ProfessionalID, in.Date)

	uc.audit.Dispatch(audit.Event{
		ProviderID: in.ProviderID,
		UserID:     &in.ProfessionalID,
		Action:     "block_created",
		Entity:     "appointment",
		EntityID:   ap.ID.String(),
	})

	return ap, nil
}
