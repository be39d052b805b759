package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/calsync"
	"github.com/agendaflow/scheduling/internal/models"
)

type SyncRetryGormStore struct {
	db *gorm.DB
}

func NewSyncRetryGormStore(db *gorm.DB) *SyncRetryGormStore {
	return &SyncRetryGormStore{db: db}
}

// RecordFailure faz upsert da entrada pendente de (appointment, operação):
// se já existe, incrementa a tentativa e empurra o próximo retry; senão
// cria. O índice parcial idx_sync_retry_active garante no máximo uma
// entrada pendente por par mesmo sob concorrência.
func (s *SyncRetryGormStore) RecordFailure(
	ctx context.Context,
	appointmentID uuid.UUID,
	professionalID uint,
	op calsync.Operation,
	cause string,
	now time.Time,
) (*models.SyncRetryEntry, error) {

	var entry models.SyncRetryEntry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Where(
				"appointment_id = ? AND operation = ? AND status = 'pending'",
				appointmentID,
				string(op),
			).
			First(&entry).Error

		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			entry = models.SyncRetryEntry{
				AppointmentID:  appointmentID,
				ProfessionalID: professionalID,
				Operation:      string(op),
				Status:         "pending",
			}
		} else if findErr != nil {
			return findErr
		}

		entry.AttemptCount++
		entry.LastError = truncateCause(cause)
		entry.NextRetryAt = now.Add(calsync.NextRetryDelay(entry.AttemptCount))

		return tx.Save(&entry).Error
	})

	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *SyncRetryGormStore) FindDue(
	ctx context.Context,
	now time.Time,
) ([]models.SyncRetryEntry, error) {

	var entries []models.SyncRetryEntry
	if err := s.db.WithContext(ctx).
		Where("status = 'pending' AND next_retry_at <= ?", now).
		Order("next_retry_at ASC").
		Limit(100).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *SyncRetryGormStore) MarkCompleted(
	ctx context.Context,
	entryID uuid.UUID,
) error {
	return s.db.WithContext(ctx).
		Model(&models.SyncRetryEntry{}).
		Where("id = ?", entryID).
		Update("status", "completed").Error
}

func (s *SyncRetryGormStore) MarkFailed(
	ctx context.Context,
	entryID uuid.UUID,
	cause string,
) error {
	return s.db.WithContext(ctx).
		Model(&models.SyncRetryEntry{}).
		Where("id = ?", entryID).
		Updates(map[string]any{
			"status":     "failed",
			"last_error": truncateCause(cause),
		}).Error
}

// coluna last_error é varchar(500)
func truncateCause(cause string) string {
	if len(cause) > 500 {
		return cause[:500]
	}
	return cause
}

var _ calsync.RetryStore = (*SyncRetryGormStore)(nil)
