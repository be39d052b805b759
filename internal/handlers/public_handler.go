package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
	ucAppointment "github.com/agendaflow/scheduling/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db           *gorm.DB
	book         *ucAppointment.BookAppointment
	availability *ucAppointment.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	book *ucAppointment.BookAppointment,
	availability *ucAppointment.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		book:         book,
		availability: availability,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type PublicBookRequest struct {
	ProfessionalID uint   `json:"professional_id" binding:"required"`
	ClientName     string `json:"client_name" binding:"required"`
	ClientPhone    string `json:"client_phone" binding:"required"`
	ClientEmail    string `json:"client_email"`
	ServiceIDs     []uint `json:"service_ids" binding:"required,min=1"`
	Date           string `json:"date" binding:"required"` // YYYY-MM-DD
	Time           string `json:"time" binding:"required"` // HH:mm
	Notes          string `json:"notes"`
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	slug := c.Param("slug")

	var provider models.Provider
	if err := h.db.Where("slug = ?", slug).First(&provider).Error; err != nil {
		httperr.NotFound(c, "provider_not_found", "Estabelecimento não encontrado.")
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.
		Where("provider_id = ? AND active = true", provider.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Erro ao listar serviços.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"provider": provider,
		"services": services,
	})
}

////////////////////////////////////////////////////////
// PROFESSIONALS
////////////////////////////////////////////////////////

func (h *PublicHandler) ListProfessionals(c *gin.Context) {
	slug := c.Param("slug")

	var provider models.Provider
	if err := h.db.Where("slug = ?", slug).First(&provider).Error; err != nil {
		httperr.NotFound(c, "provider_not_found", "Estabelecimento não encontrado.")
		return
	}

	var professionals []models.Professional
	if err := h.db.
		Select("id", "name", "provider_id", "slot_interval_minutes").
		Where("provider_id = ?", provider.ID).
		Order("name ASC").
		Find(&professionals).Error; err != nil {
		httperr.Internal(c, "failed_to_list_professionals", "Erro ao listar profissionais.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"professionals": professionals})
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Availability(c *gin.Context) {
	slug := c.Param("slug")
	dateStr := c.Query("date")
	professionalIDStr := c.Query("professional_id")
	serviceIDsStr := c.Query("service_ids") // "3,4"

	if dateStr == "" || professionalIDStr == "" || serviceIDsStr == "" {
		httperr.BadRequest(c, "missing_params", "Data, profissional e serviços obrigatórios.")
		return
	}

	professionalID, err := strconv.ParseUint(professionalIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_professional_id", "Profissional inválido.")
		return
	}

	var serviceIDs []uint
	for _, raw := range strings.Split(serviceIDsStr, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_service_ids", "Serviços inválidos.")
			return
		}
		serviceIDs = append(serviceIDs, uint(id))
	}

	var provider models.Provider
	if err := h.db.Where("slug = ?", slug).First(&provider).Error; err != nil {
		httperr.NotFound(c, "provider_not_found", "Estabelecimento não encontrado.")
		return
	}

	date, err := parseDateInProvider(&provider, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.availability.Execute(
		c.Request.Context(),
		domain.AvailabilityInput{
			ProviderID:     provider.ID,
			ProfessionalID: uint(professionalID),
			ServiceIDs:     serviceIDs,
			Date:           date,
		},
	)
	if err != nil {
		mapBusinessError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  dateStr,
		"slots": slots,
	})
}

////////////////////////////////////////////////////////
// BOOKING (público → nasce pending)
////////////////////////////////////////////////////////

func (h *PublicHandler) Book(c *gin.Context) {
	slug := c.Param("slug")

	var provider models.Provider
	if err := h.db.Where("slug = ?", slug).First(&provider).Error; err != nil {
		httperr.NotFound(c, "provider_not_found", "Estabelecimento não encontrado.")
		return
	}

	var req PublicBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.book.Execute(
		c.Request.Context(),
		ucAppointment.BookAppointmentInput{
			ProviderID:     provider.ID,
			ProfessionalID: req.ProfessionalID,
			ClientName:     req.ClientName,
			ClientPhone:    req.ClientPhone,
			ClientEmail:    req.ClientEmail,
			ServiceIDs:     req.ServiceIDs,
			Date:           req.Date,
			Time:           req.Time,
			Notes:          req.Notes,
		},
	)
	if err != nil {
		mapBusinessError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}
