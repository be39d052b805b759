package calsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/models"
)

func newReconcilerHarness() (*Reconciler, *fakeStore, *fakeAccounts, *fakeClient) {
	store := newFakeStore()
	store.professionals[7] = &models.Professional{ID: 7, ProviderID: 1}
	accounts := newFakeAccounts()
	client := &fakeClient{}
	r := NewReconciler(store, accounts, client, zap.NewNop(), time.Second, time.Minute)
	return r, store, accounts, client
}

func externalEvent(id string, startHour int) ExternalEvent {
	return ExternalEvent{
		ID:       id,
		Summary:  "Compromisso pessoal",
		StartsAt: time.Date(2026, 3, 10, startHour, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 3, 10, startHour+1, 0, 0, 0, time.UTC),
	}
}

func countBlocks(store *fakeStore) int {
	n := 0
	for _, ap := range store.appointments {
		if ap.IsPersonalBlock && ap.Status == string(domain.StatusBlocked) {
			n++
		}
	}
	return n
}

func TestReconcile_ImportsEventsAsBlocks(t *testing.T) {
	r, store, accounts, client := newReconcilerHarness()
	account := accounts.connect(7)
	client.events = []ExternalEvent{externalEvent("g1", 9), externalEvent("g2", 14)}

	if err := r.Reconcile(context.Background(), 7); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if got := countBlocks(store); got != 2 {
		t.Fatalf("expected 2 blocks, got %d", got)
	}
	block, err := store.FindByExternalEventID(context.Background(), 7, "g1")
	if err != nil {
		t.Fatalf("imported block not found: %v", err)
	}
	if !block.IsPersonalBlock || block.Status != string(domain.StatusBlocked) {
		t.Fatalf("unexpected block shape: %+v", block)
	}
	if account.LastSyncedAt == nil {
		t.Fatal("last sync timestamp not recorded")
	}
}

func TestReconcile_SecondFetchIsNoop(t *testing.T) {
	r, store, accounts, client := newReconcilerHarness()
	accounts.connect(7)
	client.events = []ExternalEvent{externalEvent("g1", 9)}

	for i := 0; i < 2; i++ {
		if err := r.Reconcile(context.Background(), 7); err != nil {
			t.Fatalf("reconcile %d: %v", i, err)
		}
	}

	if got := countBlocks(store); got != 1 {
		t.Fatalf("re-seeing the same external id must not duplicate: got %d blocks", got)
	}
}

func TestReconcile_NeverTouchesClientAppointments(t *testing.T) {
	r, store, accounts, client := newReconcilerHarness()
	accounts.connect(7)

	// agendamento de cliente já ocupa 09:00–10:00
	existing := store.add(newTestAppointment(7))
	client.events = []ExternalEvent{externalEvent("g1", 9)}

	if err := r.Reconcile(context.Background(), 7); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if got := countBlocks(store); got != 0 {
		t.Fatalf("overlapping event must be skipped, got %d blocks", got)
	}
	kept, _ := store.GetAppointment(context.Background(), existing.ID)
	if kept.Status != string(domain.StatusScheduled) {
		t.Fatal("reconcile must never change a client appointment")
	}
}

func TestReconcile_DisconnectedAccountIsNoop(t *testing.T) {
	r, _, accounts, client := newReconcilerHarness()
	account := accounts.connect(7)
	account.Status = AccountDisconnected
	client.events = []ExternalEvent{externalEvent("g1", 9)}

	if err := r.Reconcile(context.Background(), 7); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if client.fetchCalls != 0 {
		t.Fatal("disconnected account must not be polled")
	}
}

func TestReconcile_RevokedOnFetchDisconnects(t *testing.T) {
	r, _, accounts, client := newReconcilerHarness()
	account := accounts.connect(7)
	client.fetchErr = Revoked(errors.New("403"))

	if err := r.Reconcile(context.Background(), 7); !IsRevoked(err) {
		t.Fatalf("expected revoked error, got %v", err)
	}
	if account.Status != AccountDisconnected {
		t.Fatal("account should be disconnected after revoked fetch")
	}
}

func TestReconcile_SkipsMalformedEvents(t *testing.T) {
	r, store, accounts, client := newReconcilerHarness()
	accounts.connect(7)
	bad := externalEvent("", 9)
	inverted := externalEvent("g3", 11)
	inverted.EndsAt = inverted.StartsAt

	client.events = []ExternalEvent{bad, inverted}

	if err := r.Reconcile(context.Background(), 7); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := countBlocks(store); got != 0 {
		t.Fatalf("malformed events must be ignored, got %d blocks", got)
	}
}
