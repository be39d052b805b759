package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/config"
	"github.com/agendaflow/scheduling/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Provider{},
		&models.Professional{},
		&models.Service{},
		&models.DailyAvailability{},
		&models.Client{},
		&models.Appointment{},
		&models.SyncRetryEntry{},
		&models.CalendarAccount{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	db.Exec(`
        UPDATE providers
        SET timezone = 'America/Sao_Paulo'
        WHERE timezone IS NULL OR timezone = ''
    `)

	// Backstop de concorrência no storage: duas reservas ativas do mesmo
	// profissional nunca se sobrepõem, mesmo que passem juntas pela
	// checagem de aplicação. Viola com SQLSTATE 23P01.
	db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`)
	if err := db.Exec(`
        DO $$
        BEGIN
            IF NOT EXISTS (
                SELECT 1 FROM pg_constraint WHERE conname = 'appointments_no_overlap'
            ) THEN
                ALTER TABLE appointments
                ADD CONSTRAINT appointments_no_overlap
                EXCLUDE USING gist (
                    professional_id WITH =,
                    tstzrange(start_time, end_time) WITH &&
                )
                WHERE (status IN ('pending', 'scheduled', 'blocked'));
            END IF;
        END $$
    `).Error; err != nil {
		log.Fatalf("failed to install overlap constraint: %v", err)
	}

	// Um evento externo importa no máximo um bloqueio interno.
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_prof_external
        ON appointments (professional_id, external_event_id)
        WHERE external_event_id IS NOT NULL
    `)

	// No máximo uma entrada de retry pendente por (appointment, operação).
	db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_sync_retry_active
        ON sync_retry_entries (appointment_id, operation)
        WHERE status = 'pending'
    `)

	return db
}
