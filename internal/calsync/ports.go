package calsync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendaflow/scheduling/internal/models"
)

// ===============================
// Outward operations
// ===============================

type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// ===============================
// Ports
// ===============================

// ExternalEvent é um evento do calendário do provedor, já normalizado.
type ExternalEvent struct {
	ID       string
	Summary  string
	StartsAt time.Time
	EndsAt   time.Time
}

// Client é o colaborador que fala com o calendário externo. Toda falha
// retorna classificada (Transient/Revoked/Gone) via calsync.Error.
type Client interface {
	CreateEvent(ctx context.Context, account *models.CalendarAccount, ap *models.Appointment) (string, error)
	UpdateEvent(ctx context.Context, account *models.CalendarAccount, ap *models.Appointment) error
	DeleteEvent(ctx context.Context, account *models.CalendarAccount, externalEventID string) error
	FetchRecentEvents(ctx context.Context, account *models.CalendarAccount) ([]ExternalEvent, error)
}

// AppointmentStore é o recorte do repositório de agendamentos que o
// sync precisa. O repositório do domínio satisfaz a interface.
type AppointmentStore interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	GetProfessional(ctx context.Context, id uint) (*models.Professional, error)
	FindByExternalEventID(ctx context.Context, professionalID uint, externalEventID string) (*models.Appointment, error)
	Reserve(ctx context.Context, ap *models.Appointment) error
}

// RetryStore é o ledger durável de falhas de espelhamento.
type RetryStore interface {
	// RecordFailure cria a entrada pendente de (appointment, operação) ou,
	// se já existe, incrementa attempts e recomputa o backoff. Nunca
	// duplica entradas ativas.
	RecordFailure(
		ctx context.Context,
		appointmentID uuid.UUID,
		professionalID uint,
		op Operation,
		cause string,
		now time.Time,
	) (*models.SyncRetryEntry, error)

	FindDue(ctx context.Context, now time.Time) ([]models.SyncRetryEntry, error)

	MarkCompleted(ctx context.Context, entryID uuid.UUID) error

	// MarkFailed encerra a entrada sem retry automático (credencial revogada).
	MarkFailed(ctx context.Context, entryID uuid.UUID, cause string) error
}

type AccountStore interface {
	GetByProfessional(ctx context.Context, professionalID uint) (*models.CalendarAccount, error)
	ListConnected(ctx context.Context) ([]models.CalendarAccount, error)
	MarkDisconnected(ctx context.Context, account *models.CalendarAccount) error
	TouchSynced(ctx context.Context, account *models.CalendarAccount, at time.Time) error
}

// Lease é o single-flight das varreduras periódicas: se duas instâncias
// (ou dois ticks atrasados) coincidem, só uma varre.
type Lease interface {
	TryAcquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

const AccountConnected = "connected"
const AccountDisconnected = "disconnected"
