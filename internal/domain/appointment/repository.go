package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agendaflow/scheduling/internal/models"
)

type Repository interface {
	// -------- Provider --------
	GetProviderByID(
		ctx context.Context,
		id uint,
	) (*models.Provider, error)

	GetProviderBySlug(
		ctx context.Context,
		slug string,
	) (*models.Provider, error)

	// -------- Service --------
	GetService(
		ctx context.Context,
		providerID uint,
		serviceID uint,
	) (*models.Service, error)

	ListActiveServices(
		ctx context.Context,
		providerID uint,
	) ([]models.Service, error)

	// -------- Professional --------
	GetProfessional(
		ctx context.Context,
		id uint,
	) (*models.Professional, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		providerID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Availability --------
	GetDailyAvailability(
		ctx context.Context,
		professionalID uint,
		weekday int,
	) (*models.DailyAvailability, error)

	ListDailyAvailability(
		ctx context.Context,
		professionalID uint,
	) ([]models.DailyAvailability, error)

	ReplaceDailyAvailability(
		ctx context.Context,
		professionalID uint,
		entries []models.DailyAvailability,
	) error

	// -------- Appointment (reserve / conflict) --------

	// Reserve executa a checagem de sobreposição e o insert na mesma
	// transação. Retorna schedule_conflict se outro agendamento ativo
	// ocupa o intervalo.
	Reserve(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// ReserveReschedule move um agendamento existente para a nova janela,
	// com a mesma garantia atômica, ignorando o próprio registro na
	// checagem de conflito. Nada muda em caso de erro.
	ReserveReschedule(
		ctx context.Context,
		ap *models.Appointment,
		newStart time.Time,
		newEnd time.Time,
	) error

	ExistsOverlapping(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
	) (bool, error)

	// -------- Appointment (state change / queries) --------
	GetAppointment(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Appointment, error)

	GetAppointmentForProfessional(
		ctx context.Context,
		id uuid.UUID,
		professionalID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// ListOccupationsForDay retorna os agendamentos ativos (pending,
	// scheduled, blocked) do profissional no intervalo, ordenados por início.
	ListOccupationsForDay(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	FindByExternalEventID(
		ctx context.Context,
		professionalID uint,
		externalEventID string,
	) (*models.Appointment, error)
}
