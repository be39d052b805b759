package models

import "time"

// DailyAvailability é a janela de atendimento de um profissional
// em um dia da semana. Horários no formato "15:04", fuso local do negócio.
type DailyAvailability struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ProfessionalID uint `gorm:"uniqueIndex:idx_availability_prof_weekday" json:"professional_id"`

	Weekday int `gorm:"uniqueIndex:idx_availability_prof_weekday" json:"weekday"`

	IsOpen    bool   `json:"is_open"`
	StartTime string `gorm:"size:5" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
