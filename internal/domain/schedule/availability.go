package schedule

import (
	"time"

	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
)

// ===============================
// Weekly Availability (pure)
// ===============================

// ValidateDay rejeita janelas inválidas no momento da escrita.
// Dia fechado não precisa de janela.
func ValidateDay(day models.DailyAvailability) error {
	if day.Weekday < 0 || day.Weekday > 6 {
		return httperr.ErrBusiness("invalid_availability")
	}
	if !day.IsOpen {
		return nil
	}

	start, err := ParseHM(day.StartTime)
	if err != nil {
		return httperr.ErrBusiness("invalid_availability")
	}
	end, err := ParseHM(day.EndTime)
	if err != nil {
		return httperr.ErrBusiness("invalid_availability")
	}
	if !end.After(start) {
		return httperr.ErrBusiness("invalid_availability")
	}
	return nil
}

func ValidateWeek(days []models.DailyAvailability) error {
	seen := make(map[int]bool, len(days))
	for _, day := range days {
		if seen[day.Weekday] {
			return httperr.ErrBusiness("invalid_availability")
		}
		seen[day.Weekday] = true

		if err := ValidateDay(day); err != nil {
			return err
		}
	}
	return nil
}

// ParseHM interpreta um horário "15:04".
func ParseHM(hm string) (time.Time, error) {
	return time.Parse("15:04", hm)
}

// WindowOn materializa a janela do dia na data e fuso informados.
func WindowOn(day models.DailyAvailability, date time.Time) (time.Time, time.Time, bool) {
	if !day.IsOpen {
		return time.Time{}, time.Time{}, false
	}

	start, err := ParseHM(day.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := ParseHM(day.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	at := func(t time.Time) time.Time {
		return time.Date(
			date.Year(), date.Month(), date.Day(),
			t.Hour(), t.Minute(), 0, 0,
			date.Location(),
		)
	}
	return at(start), at(end), true
}

// Contains informa se [start, end) cabe inteiro na janela do dia.
func Contains(day models.DailyAvailability, start, end time.Time) bool {
	windowStart, windowEnd, open := WindowOn(day, start)
	if !open {
		return false
	}
	return !start.Before(windowStart) && !end.After(windowEnd)
}
