package models

import "time"

type Professional struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	ProviderID uint     `json:"provider_id"`
	Provider   Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"provider"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;default:'owner'" json:"role"`

	// Granularidade da grade de horários (15/30/60 minutos).
	SlotIntervalMinutes int `gorm:"default:30" json:"slot_interval_minutes"`

	// Fuso opcional do profissional; vazio usa o fuso do provider.
	Timezone string `gorm:"size:64" json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
