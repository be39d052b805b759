package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/httpresp"
	"github.com/agendaflow/scheduling/internal/middleware"
	ucAppointment "github.com/agendaflow/scheduling/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book       *ucAppointment.BookAppointment
	confirm    *ucAppointment.ConfirmAppointment
	cancel     *ucAppointment.CancelAppointment
	complete   *ucAppointment.CompleteAppointment
	noShow     *ucAppointment.MarkNoShow
	reschedule *ucAppointment.RescheduleAppointment
	block      *ucAppointment.CreateBlock
	agenda     *ucAppointment.ListAgenda
}

func NewAppointmentHandler(
	book *ucAppointment.BookAppointment,
	confirm *ucAppointment.ConfirmAppointment,
	cancel *ucAppointment.CancelAppointment,
	complete *ucAppointment.CompleteAppointment,
	noShow *ucAppointment.MarkNoShow,
	reschedule *ucAppointment.RescheduleAppointment,
	block *ucAppointment.CreateBlock,
	agenda *ucAppointment.ListAgenda,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:       book,
		confirm:    confirm,
		cancel:     cancel,
		complete:   complete,
		noShow:     noShow,
		reschedule: reschedule,
		block:      block,
		agenda:     agenda,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`

	ServiceIDs []uint `json:"service_ids" binding:"required,min=1"`

	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Time  string `json:"time" binding:"required"` // HH:mm
	Notes string `json:"notes"`

	ReminderMinutes int `json:"reminder_minutes"`
}

type CompleteAppointmentRequest struct {
	SettlementAmount float64 `json:"settlement_amount"`
	SettlementMethod string  `json:"settlement_method"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

type CreateBlockRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Notes     string `json:"notes"`
}

// ======================================================
// HELPERS
// ======================================================

func identity(c *gin.Context) (providerID uint, professionalID uint) {
	return c.MustGet(middleware.ContextProviderID).(uint),
		c.MustGet(middleware.ContextProfessionalID).(uint)
}

func appointmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.BadRequest(c, "invalid_appointment_id", "Identificador inválido.")
		return uuid.Nil, false
	}
	return id, true
}

// ======================================================
// CREATE (agendamento feito pelo profissional)
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	providerID, professionalID := identity(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), ucAppointment.BookAppointmentInput{
		ProviderID:      providerID,
		ProfessionalID:  professionalID,
		ClientName:      req.ClientName,
		ClientPhone:     req.ClientPhone,
		ClientEmail:     req.ClientEmail,
		ServiceIDs:      req.ServiceIDs,
		Date:            req.Date,
		Time:            req.Time,
		Notes:           req.Notes,
		ReminderMinutes: req.ReminderMinutes,
		PreConfirmed:    true,
	})
	if err != nil {
		mapBusinessError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	providerID, professionalID := identity(c)
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	ap, err := h.confirm.Execute(c.Request.Context(), providerID, professionalID, id)
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	providerID, professionalID := identity(c)
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), providerID, professionalID, id)
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	providerID, professionalID := identity(c)
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	var req CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), ucAppointment.CompleteAppointmentInput{
		ProviderID:       providerID,
		ProfessionalID:   professionalID,
		AppointmentID:    id,
		SettlementAmount: req.SettlementAmount,
		SettlementMethod: req.SettlementMethod,
	})
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) NoShow(c *gin.Context) {
	providerID, professionalID := identity(c)
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	ap, err := h.noShow.Execute(c.Request.Context(), providerID, professionalID, id)
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	providerID, professionalID := identity(c)
	id, ok := appointmentID(c)
	if !ok {
		return
	}

	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleAppointmentInput{
		ProviderID:     providerID,
		ProfessionalID: professionalID,
		AppointmentID:  id,
		NewDate:        req.Date,
		NewTime:        req.Time,
	})
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.OK(c, ap)
}

// ======================================================
// BLOCKS
// ======================================================

func (h *AppointmentHandler) CreateBlock(c *gin.Context) {
	providerID, professionalID := identity(c)

	var req CreateBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.block.Execute(c.Request.Context(), ucAppointment.CreateBlockInput{
		ProviderID:     providerID,
		ProfessionalID: professionalID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Notes:          req.Notes,
	})
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.Created(c, ap)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	providerID, professionalID := identity(c)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Data obrigatória.")
		return
	}

	aps, err := h.agenda.ByDate(c.Request.Context(), providerID, professionalID, dateStr)
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.List(c, aps)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	providerID, professionalID := identity(c)

	month := c.Query("month")
	if month == "" {
		httperr.BadRequest(c, "missing_month", "Mês obrigatório (YYYY-MM).")
		return
	}

	aps, err := h.agenda.ByMonth(c.Request.Context(), providerID, professionalID, month)
	if err != nil {
		mapBusinessError(c, err)
		return
	}
	httpresp.List(c, aps)
}
