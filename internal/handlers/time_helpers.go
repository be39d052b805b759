package handlers

import (
	"time"

	"github.com/agendaflow/scheduling/internal/models"
	"github.com/agendaflow/scheduling/internal/timezone"
)

func locationFromProvider(provider *models.Provider) *time.Location {
	if provider != nil {
		return timezone.Location(provider.Timezone)
	}
	return timezone.Location("")
}

func parseDateInProvider(provider *models.Provider, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromProvider(provider),
	)
}
