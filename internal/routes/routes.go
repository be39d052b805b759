package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/audit"
	"github.com/agendaflow/scheduling/internal/calsync"
	"github.com/agendaflow/scheduling/internal/config"
	"github.com/agendaflow/scheduling/internal/handlers"
	"github.com/agendaflow/scheduling/internal/infra/cache"
	"github.com/agendaflow/scheduling/internal/infra/calendar/google"
	infraRepo "github.com/agendaflow/scheduling/internal/infra/repository"
	"github.com/agendaflow/scheduling/internal/middleware"
	ucAppointment "github.com/agendaflow/scheduling/internal/usecase/appointment"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	auditDispatcher *audit.Dispatcher,
	syncDispatcher *calsync.Dispatcher,
	slotCache *cache.SlotCache,
	accounts *infraRepo.CalendarAccountGormStore,
	googleClient *google.Client,
) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	// ======================================================
	// 🧠 USE CASES — APPOINTMENTS
	// ======================================================
	bookUC := ucAppointment.NewBookAppointment(
		appointmentRepo,
		auditDispatcher,
		syncDispatcher,
		slotCache,
	)

	confirmUC := ucAppointment.NewConfirmAppointment(appointmentRepo, auditDispatcher)

	cancelUC := ucAppointment.NewCancelAppointment(
		appointmentRepo,
		auditDispatcher,
		syncDispatcher,
		slotCache,
	)

	completeUC := ucAppointment.NewCompleteAppointment(appointmentRepo, auditDispatcher)
	noShowUC := ucAppointment.NewMarkNoShow(appointmentRepo, auditDispatcher)

	rescheduleUC := ucAppointment.NewRescheduleAppointment(
		appointmentRepo,
		auditDispatcher,
		syncDispatcher,
		slotCache,
	)

	blockUC := ucAppointment.NewCreateBlock(
		appointmentRepo,
		auditDispatcher,
		syncDispatcher,
		slotCache,
	)

	agendaUC := ucAppointment.NewListAgenda(appointmentRepo)
	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo, slotCache)
	setAvailabilityUC := ucAppointment.NewSetWeeklyAvailability(appointmentRepo, auditDispatcher)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	providerHandler := handlers.NewProviderHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	availabilityHandler := handlers.NewAvailabilityHandler(db, setAvailabilityUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		bookUC,
		confirmUC,
		cancelUC,
		completeUC,
		noShowUC,
		rescheduleUC,
		blockUC,
		agendaUC,
	)

	calendarHandler := handlers.NewCalendarHandler(accounts, googleClient)
	webhookHandler := handlers.NewWebhookHandler(accounts, syncDispatcher)

	publicHandler := handlers.NewPublicHandler(db, bookUC, availabilityUC)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/professionals", publicHandler.ListProfessionals)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.Book)
		}

		// ------------------------------
		// 📬 WEBHOOK (autenticado por channel token, não por JWT)
		// ------------------------------
		api.POST("/webhooks/calendar", webhookHandler.Notify)

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", providerHandler.Me)
			secured.PATCH("/provider", providerHandler.Update)

			secured.GET("/services", serviceHandler.List)
			secured.POST("/services", serviceHandler.Create)
			secured.PUT("/services/:id", serviceHandler.Update)

			secured.GET("/clients", clientHandler.List)

			secured.GET("/availability-hours", availabilityHandler.Get)
			secured.PUT("/availability-hours", availabilityHandler.Update)

			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.ListByDate)
			secured.GET("/appointments/month", appointmentHandler.ListByMonth)
			secured.POST("/appointments/blocks", appointmentHandler.CreateBlock)
			secured.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
			secured.PATCH("/appointments/:id/no-show", appointmentHandler.NoShow)
			secured.PATCH("/appointments/:id/reschedule", appointmentHandler.Reschedule)

			secured.GET("/calendar/status", calendarHandler.Status)
			secured.POST("/calendar/connect", calendarHandler.Connect)
			secured.POST("/calendar/callback", calendarHandler.Callback)
			secured.DELETE("/calendar", calendarHandler.Disconnect)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
