package calsync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sweeper drena o ledger de retry em varreduras periódicas. Cada
// varredura só age sobre entradas vencidas e re-resolve o agendamento
// antes de agir, então varreduras sobrepostas são seguras.
type Sweeper struct {
	retry       RetryStore
	repo        AppointmentStore
	coordinator *Coordinator
	lease       Lease
	log         *zap.Logger
	interval    time.Duration
}

func NewSweeper(
	retry RetryStore,
	repo AppointmentStore,
	coordinator *Coordinator,
	lease Lease,
	log *zap.Logger,
	interval time.Duration,
) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		retry:       retry,
		repo:        repo,
		coordinator: coordinator,
		lease:       lease,
		log:         log,
		interval:    interval,
	}
}

// Run gira o ticker até o contexto encerrar.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Sweeper) tick(ctx context.Context) {
	if s.lease != nil {
		ok, err := s.lease.TryAcquire(ctx, s.interval)
		if err != nil {
			s.log.Warn("sweep lease unavailable, sweeping anyway", zap.Error(err))
		} else if !ok {
			return
		} else {
			defer func() {
				if err := s.lease.Release(ctx); err != nil {
					s.log.Warn("sweep lease release failed", zap.Error(err))
				}
			}()
		}
	}

	processed, err := s.Sweep(ctx, time.Now())
	if err != nil {
		s.log.Error("retry sweep failed", zap.Error(err))
		return
	}
	if processed > 0 {
		s.log.Info("retry sweep finished", zap.Int("entries", processed))
	}
}

// Sweep processa as entradas pendentes vencidas. Retorna quantas foram
// tocadas. Puro em relação ao relógio: o ticker fica de fora para a
// função ser testável.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	entries, err := s.retry.FindDue(ctx, now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		processed++

		if _, err := s.repo.GetAppointment(ctx, entry.AppointmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// agendamento não existe mais: abandona, não retenta
				if err := s.retry.MarkCompleted(ctx, entry.ID); err != nil {
					s.log.Error("failed to close orphan retry entry",
						zap.String("entry_id", entry.ID.String()), zap.Error(err))
				}
				continue
			}
			s.log.Warn("retry sweep could not resolve appointment",
				zap.String("appointment_id", entry.AppointmentID.String()), zap.Error(err))
			continue
		}

		err := s.coordinator.Process(ctx, Operation(entry.Operation), entry.AppointmentID)
		switch {
		case err == nil:
			if err := s.retry.MarkCompleted(ctx, entry.ID); err != nil {
				s.log.Error("failed to complete retry entry",
					zap.String("entry_id", entry.ID.String()), zap.Error(err))
			}
		case IsRevoked(err):
			// sem retry automático; reconexão manual reabre o fluxo
			if err := s.retry.MarkFailed(ctx, entry.ID, err.Error()); err != nil {
				s.log.Error("failed to fail retry entry",
					zap.String("entry_id", entry.ID.String()), zap.Error(err))
			}
		default:
			// transitório: o coordinator já reagendou a própria entrada
			// com attempts+1 e novo backoff
		}
	}

	return processed, nil
}
