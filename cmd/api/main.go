package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/agendaflow/scheduling/internal/audit"
	"github.com/agendaflow/scheduling/internal/calsync"
	"github.com/agendaflow/scheduling/internal/config"
	dbpkg "github.com/agendaflow/scheduling/internal/db"
	"github.com/agendaflow/scheduling/internal/infra/cache"
	"github.com/agendaflow/scheduling/internal/infra/calendar/google"
	infraRepo "github.com/agendaflow/scheduling/internal/infra/repository"
	"github.com/agendaflow/scheduling/internal/logger"
	"github.com/agendaflow/scheduling/internal/routes"
)

func main() {

	_ = godotenv.Load()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	zlog := logger.New(cfg.IsProduction())
	defer zlog.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	googleClient, err := google.NewClient(cfg.GoogleCredentialsFile)
	if err != nil {
		log.Fatalf("failed to load google credentials: %v", err)
	}

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	retryStore := infraRepo.NewSyncRetryGormStore(db)
	accountStore := infraRepo.NewCalendarAccountGormStore(db)
	slotCache := cache.NewSlotCache(rdb)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, zlog)

	// ======================================================
	// 🔄 SYNC DE CALENDÁRIO (workers de background)
	// ======================================================
	coordinator := calsync.NewCoordinator(
		appointmentRepo,
		accountStore,
		retryStore,
		googleClient,
		auditDispatcher,
		zlog,
		cfg.CalendarTimeout,
	)

	reconciler := calsync.NewReconciler(
		appointmentRepo,
		accountStore,
		googleClient,
		zlog,
		cfg.CalendarTimeout,
		cfg.ReconcileInterval,
	)

	syncDispatcher := calsync.NewDispatcher(coordinator, reconciler, zlog)

	sweeper := calsync.NewSweeper(
		retryStore,
		appointmentRepo,
		coordinator,
		cache.NewRedisLease(rdb, "calsync:sweep"),
		zlog,
		cfg.SyncRetryInterval,
	)

	ctx := context.Background()
	go sweeper.Run(ctx)
	go reconciler.Run(ctx)

	// ======================================================
	// 🌐 HTTP
	// ======================================================
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(
		r,
		db,
		cfg,
		auditDispatcher,
		syncDispatcher,
		slotCache,
		accountStore,
		googleClient,
	)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
