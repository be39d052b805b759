package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/calsync"
	"github.com/agendaflow/scheduling/internal/models"
)

type CalendarAccountGormStore struct {
	db *gorm.DB
}

func NewCalendarAccountGormStore(db *gorm.DB) *CalendarAccountGormStore {
	return &CalendarAccountGormStore{db: db}
}

func (s *CalendarAccountGormStore) GetByProfessional(
	ctx context.Context,
	professionalID uint,
) (*models.CalendarAccount, error) {

	var account models.CalendarAccount
	if err := s.db.WithContext(ctx).
		Where("professional_id = ?", professionalID).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *CalendarAccountGormStore) GetByChannelToken(
	ctx context.Context,
	token string,
) (*models.CalendarAccount, error) {

	var account models.CalendarAccount
	if err := s.db.WithContext(ctx).
		Where("channel_token = ?", token).
		First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *CalendarAccountGormStore) ListConnected(
	ctx context.Context,
) ([]models.CalendarAccount, error) {

	var accounts []models.CalendarAccount
	if err := s.db.WithContext(ctx).
		Where("status = ?", calsync.AccountConnected).
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *CalendarAccountGormStore) Upsert(
	ctx context.Context,
	account *models.CalendarAccount,
) error {
	return s.db.WithContext(ctx).Save(account).Error
}

func (s *CalendarAccountGormStore) MarkDisconnected(
	ctx context.Context,
	account *models.CalendarAccount,
) error {
	account.Status = calsync.AccountDisconnected
	return s.db.WithContext(ctx).
		Model(account).
		Update("status", calsync.AccountDisconnected).Error
}

func (s *CalendarAccountGormStore) TouchSynced(
	ctx context.Context,
	account *models.CalendarAccount,
	at time.Time,
) error {
	account.LastSyncedAt = &at
	return s.db.WithContext(ctx).
		Model(account).
		Update("last_synced_at", at).Error
}

var _ calsync.AccountStore = (*CalendarAccountGormStore)(nil)
