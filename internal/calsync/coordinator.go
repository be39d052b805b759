package calsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/audit"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/models"
)

// Coordinator executa o espelhamento de saída (create/update/delete) no
// calendário externo. Falhas transitórias viram entradas no ledger de
// retry; credencial revogada desconecta a conta e para de retentar.
// Nada aqui propaga erro para a transação de booking — quem chama é o
// dispatcher assíncrono ou o sweeper.
type Coordinator struct {
	repo     AppointmentStore
	accounts AccountStore
	retry    RetryStore
	client   Client
	audit    *audit.Dispatcher
	log      *zap.Logger
	timeout  time.Duration
}

func NewCoordinator(
	repo AppointmentStore,
	accounts AccountStore,
	retry RetryStore,
	client Client,
	auditDispatcher *audit.Dispatcher,
	log *zap.Logger,
	timeout time.Duration,
) *Coordinator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Coordinator{
		repo:     repo,
		accounts: accounts,
		retry:    retry,
		client:   client,
		audit:    auditDispatcher,
		log:      log,
		timeout:  timeout,
	}
}

// Process espelha uma operação. Retorno nil = nada mais a fazer
// (sucesso, no-op idempotente ou profissional sem calendário conectado).
// Erro classificado Transient já fica registrado no ledger antes de
// retornar; Revoked desconecta a conta.
func (c *Coordinator) Process(ctx context.Context, op Operation, appointmentID uuid.UUID) error {
	ap, err := c.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// agendamento sumiu, não há o que espelhar
			return nil
		}
		return c.absorb(ctx, op, appointmentID, 0, err)
	}

	account, err := c.accounts.GetByProfessional(ctx, ap.ProfessionalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// profissional nunca conectou calendário: espelhamento desligado
			return nil
		}
		return c.absorb(ctx, op, appointmentID, ap.ProfessionalID, err)
	}
	if account.Status != AccountConnected {
		// já desconectado; aguarda reconexão manual
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	switch op {
	case OpCreate:
		err = c.create(callCtx, account, ap)
	case OpUpdate:
		err = c.update(callCtx, account, ap)
	case OpDelete:
		err = c.delete(callCtx, account, ap)
	default:
		return nil
	}

	if err == nil {
		return nil
	}

	if IsRevoked(err) {
		c.disconnect(ctx, account, err)
		return err
	}

	// transitório ou desconhecido: o ledger é o único caminho de recuperação
	return c.absorb(ctx, op, ap.ID, ap.ProfessionalID, err)
}

func (c *Coordinator) create(ctx context.Context, account *models.CalendarAccount, ap *models.Appointment) error {
	if !domain.IsActive(domain.Status(ap.Status)) {
		// cancelado/encerrado antes do espelho existir: criar agora
		// deixaria um evento órfão que nenhum delete vai remover
		return nil
	}
	if domain.NeedsMirror(ap) {
		// já sincronizado; segunda chamada é no-op
		return nil
	}

	externalID, err := c.client.CreateEvent(ctx, account, ap)
	if err != nil {
		return err
	}

	ap.ExternalEventID = &externalID
	if err := c.repo.UpdateAppointment(ctx, ap); err != nil {
		// evento criado mas id não persistido; o retry recria o espelho
		return err
	}

	c.log.Info("calendar event mirrored",
		zap.String("appointment_id", ap.ID.String()),
		zap.String("external_event_id", externalID),
	)
	return nil
}

func (c *Coordinator) update(ctx context.Context, account *models.CalendarAccount, ap *models.Appointment) error {
	if !domain.IsActive(domain.Status(ap.Status)) {
		// a remoção do espelho é o job de delete que o cancelamento
		// enfileirou; um update atrasado não tem mais o que manter
		return nil
	}
	if !domain.NeedsMirror(ap) {
		// nunca foi espelhado: update degrada para create
		return c.create(ctx, account, ap)
	}
	return c.client.UpdateEvent(ctx, account, ap)
}

func (c *Coordinator) delete(ctx context.Context, account *models.CalendarAccount, ap *models.Appointment) error {
	if !domain.NeedsMirror(ap) {
		return nil
	}

	err := c.client.DeleteEvent(ctx, account, *ap.ExternalEventID)
	if err != nil && !IsGone(err) {
		return err
	}

	// evento já removido (ou 404/410, que para delete é sucesso)
	ap.ExternalEventID = nil
	return c.repo.UpdateAppointment(ctx, ap)
}

// absorb registra a falha no ledger e devolve o erro original para o
// chamador logar. Falha ao gravar o ledger é o único caso logado aqui,
// porque aí não sobrou caminho de recuperação.
func (c *Coordinator) absorb(ctx context.Context, op Operation, appointmentID uuid.UUID, professionalID uint, cause error) error {
	if _, err := c.retry.RecordFailure(ctx, appointmentID, professionalID, op, cause.Error(), time.Now()); err != nil {
		c.log.Error("sync retry ledger write failed",
			zap.String("appointment_id", appointmentID.String()),
			zap.String("operation", string(op)),
			zap.Error(err),
		)
	}
	return cause
}

func (c *Coordinator) disconnect(ctx context.Context, account *models.CalendarAccount, cause error) {
	if err := c.accounts.MarkDisconnected(ctx, account); err != nil {
		c.log.Error("failed to mark calendar account disconnected",
			zap.Uint("professional_id", account.ProfessionalID),
			zap.Error(err),
		)
		return
	}

	c.log.Warn("calendar credential revoked, sync paused",
		zap.Uint("professional_id", account.ProfessionalID),
		zap.Error(cause),
	)

	if c.audit != nil {
		c.audit.Dispatch(audit.Event{
			UserID:   &account.ProfessionalID,
			Action:   "calendar_disconnected",
			Entity:   "calendar_account",
			EntityID: account.GoogleCalendarID,
		})
	}
}
