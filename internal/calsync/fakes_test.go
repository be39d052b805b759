package calsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
)

// ---------- appointment store ----------

type fakeStore struct {
	mu            sync.Mutex
	appointments  map[uuid.UUID]*models.Appointment
	professionals map[uint]*models.Professional
	updateErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		appointments:  make(map[uuid.UUID]*models.Appointment),
		professionals: make(map[uint]*models.Professional),
	}
}

func (s *fakeStore) add(ap *models.Appointment) *models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ap.ID == uuid.Nil {
		ap.ID = uuid.New()
	}
	s.appointments[ap.ID] = ap
	return ap
}

func (s *fakeStore) GetAppointment(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ap, nil
}

func (s *fakeStore) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[ap.ID] = ap
	return nil
}

func (s *fakeStore) GetProfessional(_ context.Context, id uint) (*models.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.professionals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *fakeStore) FindByExternalEventID(_ context.Context, professionalID uint, externalEventID string) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ap := range s.appointments {
		if ap.ProfessionalID == professionalID &&
			ap.ExternalEventID != nil && *ap.ExternalEventID == externalEventID {
			return ap, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeStore) Reserve(_ context.Context, ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.appointments {
		if other.ProfessionalID != ap.ProfessionalID {
			continue
		}
		if !domain.IsActive(domain.Status(other.Status)) {
			continue
		}
		if ap.StartTime.Before(other.EndTime) && other.StartTime.Before(ap.EndTime) {
			return httperr.ErrBusiness("schedule_conflict")
		}
	}
	if ap.ID == uuid.Nil {
		ap.ID = uuid.New()
	}
	s.appointments[ap.ID] = ap
	return nil
}

// ---------- account store ----------

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[uint]*models.CalendarAccount
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: make(map[uint]*models.CalendarAccount)}
}

func (s *fakeAccounts) connect(professionalID uint) *models.CalendarAccount {
	account := &models.CalendarAccount{
		ProfessionalID:   professionalID,
		GoogleCalendarID: "primary",
		Status:           AccountConnected,
	}
	s.mu.Lock()
	s.accounts[professionalID] = account
	s.mu.Unlock()
	return account
}

func (s *fakeAccounts) GetByProfessional(_ context.Context, professionalID uint) (*models.CalendarAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[professionalID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (s *fakeAccounts) ListConnected(_ context.Context) ([]models.CalendarAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.CalendarAccount
	for _, account := range s.accounts {
		if account.Status == AccountConnected {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (s *fakeAccounts) MarkDisconnected(_ context.Context, account *models.CalendarAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account.Status = AccountDisconnected
	s.accounts[account.ProfessionalID] = account
	return nil
}

func (s *fakeAccounts) TouchSynced(_ context.Context, account *models.CalendarAccount, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account.LastSyncedAt = &at
	return nil
}

// ---------- retry store ----------

type fakeRetry struct {
	mu      sync.Mutex
	entries map[string]*models.SyncRetryEntry
}

func newFakeRetry() *fakeRetry {
	return &fakeRetry{entries: make(map[string]*models.SyncRetryEntry)}
}

func retryKey(appointmentID uuid.UUID, op Operation) string {
	return appointmentID.String() + "/" + string(op)
}

func (s *fakeRetry) RecordFailure(_ context.Context, appointmentID uuid.UUID, professionalID uint, op Operation, cause string, now time.Time) (*models.SyncRetryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := retryKey(appointmentID, op)
	entry, ok := s.entries[key]
	if !ok || entry.Status != "pending" {
		entry = &models.SyncRetryEntry{
			ID:             uuid.New(),
			AppointmentID:  appointmentID,
			ProfessionalID: professionalID,
			Operation:      string(op),
			Status:         "pending",
		}
		s.entries[key] = entry
	}

	entry.AttemptCount++
	entry.LastError = cause
	entry.NextRetryAt = now.Add(NextRetryDelay(entry.AttemptCount))
	return entry, nil
}

func (s *fakeRetry) FindDue(_ context.Context, now time.Time) ([]models.SyncRetryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []models.SyncRetryEntry
	for _, entry := range s.entries {
		if entry.Status == "pending" && !entry.NextRetryAt.After(now) {
			due = append(due, *entry)
		}
	}
	return due, nil
}

func (s *fakeRetry) byID(id uuid.UUID) *models.SyncRetryEntry {
	for _, entry := range s.entries {
		if entry.ID == id {
			return entry
		}
	}
	return nil
}

func (s *fakeRetry) MarkCompleted(_ context.Context, entryID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry := s.byID(entryID); entry != nil {
		entry.Status = "completed"
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeRetry) MarkFailed(_ context.Context, entryID uuid.UUID, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry := s.byID(entryID); entry != nil {
		entry.Status = "failed"
		entry.LastError = cause
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (s *fakeRetry) pending(appointmentID uuid.UUID, op Operation) *models.SyncRetryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[retryKey(appointmentID, op)]
	if !ok || entry.Status != "pending" {
		return nil
	}
	return entry
}

// ---------- calendar client ----------

type fakeClient struct {
	mu sync.Mutex

	createErr error
	updateErr error
	deleteErr error
	fetchErr  error

	createCalls int
	updateCalls int
	deleteCalls int
	fetchCalls  int

	events []ExternalEvent
	nextID int
}

func (c *fakeClient) CreateEvent(_ context.Context, _ *models.CalendarAccount, _ *models.Appointment) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	if c.createErr != nil {
		return "", c.createErr
	}
	c.nextID++
	return fmt.Sprintf("evt_%d", c.nextID), nil
}

func (c *fakeClient) UpdateEvent(_ context.Context, _ *models.CalendarAccount, _ *models.Appointment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateCalls++
	return c.updateErr
}

func (c *fakeClient) DeleteEvent(_ context.Context, _ *models.CalendarAccount, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteCalls++
	return c.deleteErr
}

func (c *fakeClient) FetchRecentEvents(_ context.Context, _ *models.CalendarAccount) ([]ExternalEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchCalls++
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	return c.events, nil
}
