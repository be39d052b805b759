package appointment

import (
	"testing"
	"time"

	"github.com/agendaflow/scheduling/internal/httperr"
	"github.com/agendaflow/scheduling/internal/models"
)

func newAppointment(status Status) *models.Appointment {
	return &models.Appointment{
		Status:    string(status),
		StartTime: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		Services:  models.ServiceSnapshots{{Name: "Corte", DurationMin: 60, Price: 50}},
	}
}

func settlement() *Settlement {
	return &Settlement{Amount: 50, Method: "pix"}
}

func TestConfirm(t *testing.T) {
	ap := newAppointment(StatusPending)
	if err := Confirm(ap); err != nil {
		t.Fatalf("confirm pending: %v", err)
	}
	if ap.Status != string(StatusScheduled) {
		t.Fatalf("expected scheduled, got %s", ap.Status)
	}

	// double-confirm é rejeitado, nunca silencioso
	if err := Confirm(ap); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state on double confirm, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	now := time.Now()

	for _, st := range []Status{StatusPending, StatusScheduled, StatusBlocked} {
		ap := newAppointment(st)
		if err := Cancel(ap, now); err != nil {
			t.Errorf("cancel %s: %v", st, err)
		}
		if ap.Status != string(StatusCancelled) || ap.CancelledAt == nil {
			t.Errorf("cancel %s: status=%s cancelledAt=%v", st, ap.Status, ap.CancelledAt)
		}
	}

	for _, st := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		ap := newAppointment(st)
		if err := Cancel(ap, now); !httperr.IsBusiness(err, "invalid_state") {
			t.Errorf("cancel %s: expected invalid_state, got %v", st, err)
		}
		if ap.Status != string(st) {
			t.Errorf("cancel %s mutated status to %s", st, ap.Status)
		}
	}
}

func TestComplete(t *testing.T) {
	now := time.Now()

	ap := newAppointment(StatusScheduled)
	if err := Complete(ap, settlement(), now); err != nil {
		t.Fatalf("complete scheduled: %v", err)
	}
	if ap.Status != string(StatusCompleted) || ap.CompletedAt == nil {
		t.Fatalf("status=%s completedAt=%v", ap.Status, ap.CompletedAt)
	}

	// completar de novo falha alto, não cobra duas vezes
	if err := Complete(ap, settlement(), now); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state on double complete, got %v", err)
	}
}

func TestComplete_RequiresSettlement(t *testing.T) {
	now := time.Now()

	ap := newAppointment(StatusScheduled)
	if err := Complete(ap, nil, now); !httperr.IsBusiness(err, "missing_settlement") {
		t.Fatalf("expected missing_settlement, got %v", err)
	}
	if ap.Status != string(StatusScheduled) {
		t.Fatal("failed complete must not mutate status")
	}

	if err := Complete(ap, &Settlement{Amount: 50}, now); !httperr.IsBusiness(err, "missing_settlement") {
		t.Fatalf("expected missing_settlement without method, got %v", err)
	}
}

func TestComplete_PendingFails(t *testing.T) {
	ap := newAppointment(StatusPending)
	if err := Complete(ap, settlement(), time.Now()); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestBlockedNeverCompletes(t *testing.T) {
	ap := newAppointment(StatusBlocked)
	ap.IsPersonalBlock = true

	if err := Complete(ap, settlement(), time.Now()); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
	if err := MarkNoShow(ap, time.Now()); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
	if err := Cancel(ap, time.Now()); err != nil {
		t.Fatalf("blocked can be cancelled: %v", err)
	}
}

func TestMarkNoShow(t *testing.T) {
	ap := newAppointment(StatusScheduled)
	if err := MarkNoShow(ap, time.Now()); err != nil {
		t.Fatalf("no-show scheduled: %v", err)
	}
	if ap.Status != string(StatusNoShow) {
		t.Fatalf("expected no_show, got %s", ap.Status)
	}

	pending := newAppointment(StatusPending)
	if err := MarkNoShow(pending, time.Now()); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestApplyReschedule(t *testing.T) {
	ap := newAppointment(StatusScheduled)
	newStart := ap.StartTime.Add(2 * time.Hour)
	newEnd := ap.EndTime.Add(2 * time.Hour)

	if err := ApplyReschedule(ap, newStart, newEnd); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if !ap.StartTime.Equal(newStart) || !ap.EndTime.Equal(newEnd) {
		t.Fatal("window not applied")
	}

	if err := ApplyReschedule(ap, newEnd, newStart); !httperr.IsBusiness(err, "invalid_interval") {
		t.Fatalf("expected invalid_interval, got %v", err)
	}

	pending := newAppointment(StatusPending)
	if err := ApplyReschedule(pending, newStart, newEnd); !httperr.IsBusiness(err, "invalid_state") {
		t.Fatalf("expected invalid_state, got %v", err)
	}
}

func TestValidateNew(t *testing.T) {
	ap := newAppointment(StatusPending)
	if err := ValidateNew(ap); err != nil {
		t.Fatalf("valid appointment: %v", err)
	}

	inverted := newAppointment(StatusPending)
	inverted.EndTime = inverted.StartTime
	if err := ValidateNew(inverted); !httperr.IsBusiness(err, "invalid_interval") {
		t.Fatalf("expected invalid_interval, got %v", err)
	}

	empty := newAppointment(StatusPending)
	empty.Services = nil
	if err := ValidateNew(empty); !httperr.IsBusiness(err, "missing_services") {
		t.Fatalf("expected missing_services, got %v", err)
	}

	block := newAppointment(StatusBlocked)
	block.IsPersonalBlock = true
	block.Services = nil
	if err := ValidateNew(block); err != nil {
		t.Fatalf("blocks don't need services: %v", err)
	}
}

func TestIsActive(t *testing.T) {
	active := []Status{StatusPending, StatusScheduled, StatusBlocked}
	inactive := []Status{StatusCompleted, StatusCancelled, StatusNoShow}

	for _, st := range active {
		if !IsActive(st) {
			t.Errorf("%s should occupy a slot", st)
		}
	}
	for _, st := range inactive {
		if IsActive(st) {
			t.Errorf("%s should not occupy a slot", st)
		}
	}
}

func TestNeedsMirror(t *testing.T) {
	ap := newAppointment(StatusScheduled)
	if NeedsMirror(ap) {
		t.Fatal("unsynced appointment has nothing to mirror")
	}
	id := "evt_123"
	ap.ExternalEventID = &id
	if !NeedsMirror(ap) {
		t.Fatal("synced appointment must mirror changes")
	}
}
