package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/middleware"
	"github.com/agendaflow/scheduling/internal/models"
	ucAppointment "github.com/agendaflow/scheduling/internal/usecase/appointment"
)

type AvailabilityHandler struct {
	db  *gorm.DB
	set *ucAppointment.SetWeeklyAvailability
}

func NewAvailabilityHandler(db *gorm.DB, set *ucAppointment.SetWeeklyAvailability) *AvailabilityHandler {
	return &AvailabilityHandler{db: db, set: set}
}

type AvailabilityDayConfig struct {
	Weekday   int    `json:"weekday" binding:"min=0,max=6"`
	IsOpen    bool   `json:"is_open"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AvailabilityUpdateRequest struct {
	Days []AvailabilityDayConfig `json:"days" binding:"required"`
}

func (h *AvailabilityHandler) Get(c *gin.Context) {
	professionalID := c.MustGet(middleware.ContextProfessionalID).(uint)

	var days []models.DailyAvailability
	if err := h.db.
		Where("professional_id = ?", professionalID).
		Order("weekday ASC").
		Find(&days).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_availability"})
		return
	}

	c.JSON(http.StatusOK, days)
}

func (h *AvailabilityHandler) Update(c *gin.Context) {
	providerID := c.MustGet(middleware.ContextProviderID).(uint)
	professionalID := c.MustGet(middleware.ContextProfessionalID).(uint)

	var req AvailabilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	days := make([]models.DailyAvailability, 0, len(req.Days))
	for _, d := range req.Days {
		days = append(days, models.DailyAvailability{
			Weekday:   d.Weekday,
			IsOpen:    d.IsOpen,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
		})
	}

	if err := h.set.Execute(c.Request.Context(), providerID, professionalID, days); err != nil {
		mapBusinessError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
