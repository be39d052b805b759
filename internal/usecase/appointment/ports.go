package appointment

import (
	"context"

	"github.com/agendaflow/scheduling/internal/audit"
	"github.com/agendaflow/scheduling/internal/calsync"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
)

// Colaboradores externos dos casos de uso, na forma mínima que cada um
// precisa. As implementações reais são audit.Dispatcher, calsync.Dispatcher
// e cache.SlotCache.

type AuditSink interface {
	Dispatch(ev audit.Event)
}

type SyncQueue interface {
	Dispatch(job calsync.Job)
}

type SlotCache interface {
	Get(ctx context.Context, professionalID uint, date string, durationMin int) ([]domain.TimeSlot, bool)
	Set(ctx context.Context, professionalID uint, date string, durationMin int, slots []domain.TimeSlot)
	InvalidateDay(ctx context.Context, professionalID uint, date string) error
}
