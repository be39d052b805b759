package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncRetryEntry é o registro durável de uma falha de espelhamento
// para o calendário externo, consumido pelo worker de retry.
type SyncRetryEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	AppointmentID  uuid.UUID `gorm:"type:uuid;index" json:"appointment_id"`
	ProfessionalID uint      `gorm:"index" json:"professional_id"`

	// create | update | delete
	Operation string `gorm:"size:10;not null" json:"operation"`

	AttemptCount int    `gorm:"default:0" json:"attempt_count"`
	LastError    string `gorm:"size:500" json:"last_error"`

	NextRetryAt time.Time `gorm:"index" json:"next_retry_at"`

	// pending | failed | completed
	Status string `gorm:"size:10;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *SyncRetryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
