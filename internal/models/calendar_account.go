package models

import "time"

// CalendarAccount guarda a conexão OAuth de um profissional
// com o calendário externo (Google).
type CalendarAccount struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ProfessionalID uint `gorm:"uniqueIndex" json:"professional_id"`

	GoogleCalendarID string `gorm:"size:255" json:"google_calendar_id"`

	// Token OAuth serializado em JSON. Nunca exposto na API.
	AuthJSON string `gorm:"type:text" json:"-"`

	// connected | disconnected
	Status string `gorm:"size:15;default:'connected'" json:"status"`

	// Token opaco usado para validar o webhook de notificações.
	ChannelToken string `gorm:"size:64" json:"-"`

	LastSyncedAt *time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
