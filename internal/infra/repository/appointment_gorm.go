package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Provider
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProviderByID(
	ctx context.Context,
	id uint,
) (*models.Provider, error) {

	var provider models.Provider
	if err := r.db.WithContext(ctx).First(&provider, id).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *AppointmentGormRepository) GetProviderBySlug(
	ctx context.Context,
	slug string,
) (*models.Provider, error) {

	var provider models.Provider
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&provider).Error; err != nil {
		return nil, err
	}
	return &provider, nil
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	providerID uint,
	serviceID uint,
) (*models.Service, error) {

	var service models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", serviceID, providerID).
		First(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *AppointmentGormRepository) ListActiveServices(
	ctx context.Context,
	providerID uint,
) ([]models.Service, error) {

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("provider_id = ? AND active = true", providerID).
		Order("name ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// --------------------------------------------------
// Professional
// --------------------------------------------------

func (r *AppointmentGormRepository) GetProfessional(
	ctx context.Context,
	id uint,
) (*models.Professional, error) {

	var prof models.Professional
	if err := r.db.WithContext(ctx).First(&prof, id).Error; err != nil {
		return nil, err
	}
	return &prof, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	providerID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("provider_id = ? AND phone = ?", providerID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}

	client = models.Client{
		ProviderID: providerID,
		Name:       name,
		Phone:      phone,
		Email:      email,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) GetDailyAvailability(
	ctx context.Context,
	professionalID uint,
	weekday int,
) (*models.DailyAvailability, error) {

	var day models.DailyAvailability
	if err := r.db.WithContext(ctx).
		Where("professional_id = ? AND weekday = ?", professionalID, weekday).
		First(&day).Error; err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *AppointmentGormRepository) ListDailyAvailability(
	ctx context.Context,
	professionalID uint,
) ([]models.DailyAvailability, error) {

	var days []models.DailyAvailability
	if err := r.db.WithContext(ctx).
		Where("professional_id = ?", professionalID).
		Order("weekday ASC").
		Find(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

// ReplaceDailyAvailability troca a grade semanal inteira numa transação:
// a grade nunca fica num estado intermediário visível.
func (r *AppointmentGormRepository) ReplaceDailyAvailability(
	ctx context.Context,
	professionalID uint,
	entries []models.DailyAvailability,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("professional_id = ?", professionalID).
			Delete(&models.DailyAvailability{}).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].ID = 0
			entries[i].ProfessionalID = professionalID
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

// --------------------------------------------------
// Appointment (reserve / conflict)
// --------------------------------------------------

// overlapQuery seleciona os agendamentos ativos que cruzam a janela
// [start, end), travando as linhas com FOR UPDATE. O lock precisa cair
// nas linhas, nunca num agregado: Postgres rejeita FOR UPDATE junto de
// count() com SQLSTATE 0A000. excludeID tira o próprio registro da
// checagem no reagendamento.
func overlapQuery(
	tx *gorm.DB,
	professionalID uint,
	excludeID uuid.UUID,
	start time.Time,
	end time.Time,
) *gorm.DB {

	q := tx.
		Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(
			"professional_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			professionalID,
			domain.ActiveStatuses,
			end,
			start,
		)

	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	return q
}

// Reserve faz checagem de sobreposição e insert na mesma transação,
// travando as linhas concorrentes com SELECT ... FOR UPDATE. A exclusion
// constraint do Postgres é a rede de segurança para o que escapar daqui.
func (r *AppointmentGormRepository) Reserve(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var blockers []uuid.UUID
		if err := overlapQuery(tx, ap.ProfessionalID, uuid.Nil, ap.StartTime, ap.EndTime).
			Pluck("id", &blockers).Error; err != nil {
			return err
		}
		if len(blockers) > 0 {
			return httperr.ErrBusiness("schedule_conflict")
		}
		return tx.Create(ap).Error
	})

	if httperr.IsExclusionConflict(err) {
		return httperr.ErrBusiness("schedule_conflict")
	}
	return err
}

// ReserveReschedule move o agendamento para a nova janela com a mesma
// garantia atômica do Reserve, ignorando o próprio registro na checagem.
// Em caso de conflito nada muda no banco.
func (r *AppointmentGormRepository) ReserveReschedule(
	ctx context.Context,
	ap *models.Appointment,
	newStart time.Time,
	newEnd time.Time,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var blockers []uuid.UUID
		if err := overlapQuery(tx, ap.ProfessionalID, ap.ID, newStart, newEnd).
			Pluck("id", &blockers).Error; err != nil {
			return err
		}
		if len(blockers) > 0 {
			return httperr.ErrBusiness("schedule_conflict")
		}

		if err := domain.ApplyReschedule(ap, newStart, newEnd); err != nil {
			return err
		}
		return tx.Save(ap).Error
	})

	if httperr.IsExclusionConflict(err) {
		return httperr.ErrBusiness("schedule_conflict")
	}
	return err
}

func (r *AppointmentGormRepository) ExistsOverlapping(
	ctx context.Context,
	professionalID uint,
	start time.Time,
	end time.Time,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"professional_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			professionalID,
			domain.ActiveStatuses,
			end,
			start,
		).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

// --------------------------------------------------
// Appointment (state change / queries)
// --------------------------------------------------

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) GetAppointmentForProfessional(
	ctx context.Context,
	id uuid.UUID,
	professionalID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND professional_id = ?", id, professionalID).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *AppointmentGormRepository) ListOccupationsForDay(
	ctx context.Context,
	professionalID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time").
		Where(
			"professional_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			professionalID,
			domain.ActiveStatuses,
			end,
			start,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	professionalID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Where(
			"professional_id = ? AND start_time >= ? AND start_time < ?",
			professionalID,
			start,
			end,
		).
		Order("start_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *AppointmentGormRepository) FindByExternalEventID(
	ctx context.Context,
	professionalID uint,
	externalEventID string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"professional_id = ? AND external_event_id = ?",
			professionalID,
			externalEventID,
		).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
