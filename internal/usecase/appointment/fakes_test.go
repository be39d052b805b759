package appointment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agendaflow/scheduling/internal/audit"
	"github.com/agendaflow/scheduling/internal/calsync"
	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
)

// ---------- repositório em memória ----------

type fakeRepo struct {
	mu sync.Mutex

	providers     map[uint]*models.Provider
	professionals map[uint]*models.Professional
	services      map[uint]*models.Service
	clients       []*models.Client
	availability  map[uint]map[int]*models.DailyAvailability
	appointments  map[uuid.UUID]*models.Appointment

	nextClientID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		providers:     make(map[uint]*models.Provider),
		professionals: make(map[uint]*models.Professional),
		services:      make(map[uint]*models.Service),
		availability:  make(map[uint]map[int]*models.DailyAvailability),
		appointments:  make(map[uuid.UUID]*models.Appointment),
	}
}

func (r *fakeRepo) GetProviderByID(_ context.Context, id uint) (*models.Provider, error) {
	if p, ok := r.providers[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetProviderBySlug(_ context.Context, slug string) (*models.Provider, error) {
	for _, p := range r.providers {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetService(_ context.Context, providerID, serviceID uint) (*models.Service, error) {
	if s, ok := r.services[serviceID]; ok && s.ProviderID == providerID {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListActiveServices(_ context.Context, providerID uint) ([]models.Service, error) {
	var out []models.Service
	for _, s := range r.services {
		if s.ProviderID == providerID && s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetProfessional(_ context.Context, id uint) (*models.Professional, error) {
	if p, ok := r.professionals[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetOrCreateClient(_ context.Context, providerID uint, name, phone, email string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.ProviderID == providerID && c.Phone == phone {
			return c, nil
		}
	}
	r.nextClientID++
	c := &models.Client{
		ID:         r.nextClientID,
		ProviderID: providerID,
		Name:       name,
		Phone:      phone,
		Email:      email,
	}
	r.clients = append(r.clients, c)
	return c, nil
}

func (r *fakeRepo) GetDailyAvailability(_ context.Context, professionalID uint, weekday int) (*models.DailyAvailability, error) {
	if week, ok := r.availability[professionalID]; ok {
		if day, ok := week[weekday]; ok {
			return day, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListDailyAvailability(_ context.Context, professionalID uint) ([]models.DailyAvailability, error) {
	var out []models.DailyAvailability
	for _, day := range r.availability[professionalID] {
		out = append(out, *day)
	}
	return out, nil
}

func (r *fakeRepo) ReplaceDailyAvailability(_ context.Context, professionalID uint, entries []models.DailyAvailability) error {
	week := make(map[int]*models.DailyAvailability, len(entries))
	for i := range entries {
		entries[i].ProfessionalID = professionalID
		week[entries[i].Weekday] = &entries[i]
	}
	r.availability[professionalID] = week
	return nil
}

func (r *fakeRepo) overlapsLocked(professionalID uint, start, end time.Time, exclude uuid.UUID) bool {
	for id, other := range r.appointments {
		if id == exclude || other.ProfessionalID != professionalID {
			continue
		}
		if !domain.IsActive(domain.Status(other.Status)) {
			continue
		}
		if start.Before(other.EndTime) && other.StartTime.Before(end) {
			return true
		}
	}
	return false
}

func (r *fakeRepo) Reserve(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlapsLocked(ap.ProfessionalID, ap.StartTime, ap.EndTime, uuid.Nil) {
		return httperr.ErrBusiness("schedule_conflict")
	}
	if ap.ID == uuid.Nil {
		ap.ID = uuid.New()
	}
	r.appointments[ap.ID] = ap
	return nil
}

func (r *fakeRepo) ReserveReschedule(_ context.Context, ap *models.Appointment, newStart, newEnd time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlapsLocked(ap.ProfessionalID, newStart, newEnd, ap.ID) {
		return httperr.ErrBusiness("schedule_conflict")
	}
	if err := domain.ApplyReschedule(ap, newStart, newEnd); err != nil {
		return err
	}
	r.appointments[ap.ID] = ap
	return nil
}

func (r *fakeRepo) ExistsOverlapping(_ context.Context, professionalID uint, start, end time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlapsLocked(professionalID, start, end, uuid.Nil), nil
}

func (r *fakeRepo) GetAppointment(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ap, ok := r.appointments[id]; ok {
		return ap, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) GetAppointmentForProfessional(_ context.Context, id uuid.UUID, professionalID uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ap, ok := r.appointments[id]; ok && ap.ProfessionalID == professionalID {
		return ap, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appointments[ap.ID] = ap
	return nil
}

func (r *fakeRepo) ListOccupationsForDay(_ context.Context, professionalID uint, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ProfessionalID != professionalID {
			continue
		}
		if !domain.IsActive(domain.Status(ap.Status)) {
			continue
		}
		if ap.StartTime.Before(end) && start.Before(ap.EndTime) {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(_ context.Context, professionalID uint, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.ProfessionalID == professionalID &&
			!ap.StartTime.Before(start) && ap.StartTime.Before(end) {
			out = append(out, *ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindByExternalEventID(_ context.Context, professionalID uint, externalEventID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ap := range r.appointments {
		if ap.ProfessionalID == professionalID &&
			ap.ExternalEventID != nil && *ap.ExternalEventID == externalEventID {
			return ap, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ domain.Repository = (*fakeRepo)(nil)

// ---------- colaboradores ----------

type fakeAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *fakeAudit) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

type fakeSync struct {
	mu   sync.Mutex
	jobs []calsync.Job
}

func (s *fakeSync) Dispatch(job calsync.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

func (s *fakeSync) count(op calsync.Operation) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, job := range s.jobs {
		if job.Op == op && !job.Reconcile {
			n++
		}
	}
	return n
}

type fakeCache struct {
	mu          sync.Mutex
	store       map[string][]domain.TimeSlot
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]domain.TimeSlot)}
}

func cacheKey(professionalID uint, date string, durationMin int) string {
	return fmt.Sprintf("%s/%d/%d", date, professionalID, durationMin)
}

func (c *fakeCache) Get(_ context.Context, professionalID uint, date string, durationMin int) ([]domain.TimeSlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots, ok := c.store[cacheKey(professionalID, date, durationMin)]
	return slots, ok
}

func (c *fakeCache) Set(_ context.Context, professionalID uint, date string, durationMin int, slots []domain.TimeSlot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[cacheKey(professionalID, date, durationMin)] = slots
}

func (c *fakeCache) InvalidateDay(_ context.Context, professionalID uint, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.store {
		if len(key) >= len(date) && key[:len(date)] == date {
			delete(c.store, key)
		}
	}
	c.invalidated = append(c.invalidated, date)
	return nil
}

// ---------- cenário padrão ----------

// seedScenario monta um salão com um profissional atendendo seg–sáb
// 09:00–18:00, grade de 30 min, e um serviço de 60 min.
func seedScenario(repo *fakeRepo) {
	repo.providers[1] = &models.Provider{
		ID:                1,
		Name:              "Studio Norte",
		Slug:              "studio-norte",
		Timezone:          "America/Sao_Paulo",
		MinAdvanceMinutes: 120,
	}
	repo.professionals[7] = &models.Professional{
		ID:                  7,
		ProviderID:          1,
		Name:                "Ana",
		SlotIntervalMinutes: 30,
	}
	repo.services[3] = &models.Service{
		ID:          3,
		ProviderID:  1,
		Name:        "Corte",
		DurationMin: 60,
		Price:       80,
		Active:      true,
	}

	week := make(map[int]*models.DailyAvailability)
	for wd := 1; wd <= 6; wd++ {
		week[wd] = &models.DailyAvailability{
			ProfessionalID: 7,
			Weekday:        wd,
			IsOpen:         true,
			StartTime:      "09:00",
			EndTime:        "18:00",
		}
	}
	repo.availability[7] = week
}

// futureDate devolve uma data futura caindo num dia útil, formatada
// "2006-01-02". Mantém os testes estáveis independente de quando rodam.
func futureDate(daysAhead int) string {
	d := time.Now().AddDate(0, 0, daysAhead)
	for d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}
