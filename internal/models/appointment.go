package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceSnapshot congela nome/duração/preço do serviço no momento
// do agendamento. Mudanças posteriores no catálogo não afetam o histórico.
type ServiceSnapshot struct {
	Name        string  `json:"name"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`
}

type ServiceSnapshots []ServiceSnapshot

func (s ServiceSnapshots) Value() (driver.Value, error) {
	if s == nil {
		s = ServiceSnapshots{}
	}
	return json.Marshal(s)
}

func (s *ServiceSnapshots) Scan(value any) error {
	if value == nil {
		*s = ServiceSnapshots{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("services: unsupported column type")
	}
	return json.Unmarshal(raw, s)
}

func (s ServiceSnapshots) TotalDuration() time.Duration {
	var total time.Duration
	for _, svc := range s {
		total += time.Duration(svc.DurationMin) * time.Minute
	}
	return total
}

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ProviderID uint `json:"provider_id"`

	ProfessionalID uint         `gorm:"index" json:"professional_id"`
	Professional   Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"professional"`

	// Nulo para bloqueios e encaixes sem cadastro (walk-in).
	ClientID *uint   `json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client,omitempty"`

	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Services ServiceSnapshots `gorm:"type:jsonb" json:"services"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	// Id do evento espelhado no calendário externo. Presente = já sincronizado.
	// Unicidade por (professional_id, external_event_id) garantida por índice
	// parcial criado em internal/db.
	ExternalEventID *string `gorm:"size:255;index" json:"external_event_id"`

	// Bloqueio do próprio profissional (folga ou evento externo importado).
	IsPersonalBlock bool `json:"is_personal_block"`

	ReminderMinutes int  `gorm:"default:0" json:"reminder_minutes"`
	ReminderSent    bool `gorm:"default:false" json:"reminder_sent"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
