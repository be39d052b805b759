package calsync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
)

// Reconciler importa eventos do calendário externo como bloqueios
// internos. Nunca apaga nem altera agendamento de cliente; só adiciona
// bloqueios para horários que o negócio declarou indisponíveis.
type Reconciler struct {
	repo     AppointmentStore
	accounts AccountStore
	client   Client
	log      *zap.Logger
	timeout  time.Duration
	interval time.Duration
}

func NewReconciler(
	repo AppointmentStore,
	accounts AccountStore,
	client Client,
	log *zap.Logger,
	timeout time.Duration,
	interval time.Duration,
) *Reconciler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Reconciler{
		repo:     repo,
		accounts: accounts,
		client:   client,
		log:      log,
		timeout:  timeout,
		interval: interval,
	}
}

// Run varre todas as contas conectadas no intervalo configurado.
// O webhook dispara o mesmo Reconcile por profissional, fora do ticker.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			accounts, err := r.accounts.ListConnected(ctx)
			if err != nil {
				r.log.Error("reconcile poll: listing accounts failed", zap.Error(err))
				continue
			}
			for _, account := range accounts {
				if err := r.Reconcile(ctx, account.ProfessionalID); err != nil {
					r.log.Warn("reconcile poll failed for professional",
						zap.Uint("professional_id", account.ProfessionalID),
						zap.Error(err),
					)
				}
			}
		}
	}
}

// Reconcile puxa os eventos recentes do profissional e cria um bloqueio
// interno para cada evento ainda não representado, chaveado pelo id
// externo. Rever o mesmo id é no-op, então repetir a chamada é seguro.
func (r *Reconciler) Reconcile(ctx context.Context, professionalID uint) error {
	account, err := r.accounts.GetByProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if account.Status != AccountConnected {
		return nil
	}

	prof, err := r.repo.GetProfessional(ctx, professionalID)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	events, err := r.client.FetchRecentEvents(callCtx, account)
	cancel()
	if err != nil {
		if IsRevoked(err) {
			if mErr := r.accounts.MarkDisconnected(ctx, account); mErr != nil {
				r.log.Error("failed to mark account disconnected",
					zap.Uint("professional_id", professionalID), zap.Error(mErr))
			}
		}
		return err
	}

	imported := 0
	for _, ev := range events {
		if ev.ID == "" || !ev.EndsAt.After(ev.StartsAt) {
			continue
		}

		_, err := r.repo.FindByExternalEventID(ctx, professionalID, ev.ID)
		if err == nil {
			// já representado internamente (bloqueio importado antes ou
			// evento espelhado por nós)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		externalID := ev.ID
		block := &models.Appointment{
			ProviderID:      prof.ProviderID,
			ProfessionalID:  professionalID,
			StartTime:       ev.StartsAt,
			EndTime:         ev.EndsAt,
			Status:          string(domain.StatusBlocked),
			IsPersonalBlock: true,
			ExternalEventID: &externalID,
			Notes:           ev.Summary,
		}

		if err := r.repo.Reserve(ctx, block); err != nil {
			if httperr.IsBusiness(err, "schedule_conflict") || httperr.IsExclusionConflict(err) {
				// horário já ocupado internamente; a disponibilidade já o
				// exclui, importar o bloqueio não acrescentaria nada
				r.log.Debug("skipping external event overlapping internal booking",
					zap.Uint("professional_id", professionalID),
					zap.String("external_event_id", ev.ID),
				)
				continue
			}
			return err
		}
		imported++
	}

	if err := r.accounts.TouchSynced(ctx, account, time.Now()); err != nil {
		r.log.Warn("failed to record last sync",
			zap.Uint("professional_id", professionalID), zap.Error(err))
	}

	if imported > 0 {
		r.log.Info("imported external events as blocks",
			zap.Uint("professional_id", professionalID),
			zap.Int("events", imported),
		)
	}
	return nil
}
