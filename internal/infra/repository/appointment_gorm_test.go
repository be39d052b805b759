package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func overlapWindow() (time.Time, time.Time) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func TestOverlapQuery_LocksRowsNotAggregate(t *testing.T) {
	db := newDryRunDB(t)
	start, end := overlapWindow()

	var blockers []uuid.UUID
	stmt := overlapQuery(db, 7, uuid.Nil, start, end).
		Pluck("id", &blockers).Statement

	sql := stmt.SQL.String()

	if !strings.Contains(sql, "FOR UPDATE") {
		t.Fatalf("conflict check must lock the overlapping rows, got: %s", sql)
	}
	// Postgres rejeita FOR UPDATE sobre agregados (SQLSTATE 0A000)
	if strings.Contains(strings.ToLower(sql), "count(") {
		t.Fatalf("locking clause must not ride on an aggregate, got: %s", sql)
	}
}

func TestOverlapQuery_UsesHalfOpenBounds(t *testing.T) {
	db := newDryRunDB(t)
	start, end := overlapWindow()

	var blockers []uuid.UUID
	stmt := overlapQuery(db, 7, uuid.Nil, start, end).
		Pluck("id", &blockers).Statement

	sql := stmt.SQL.String()

	if !strings.Contains(sql, "start_time < ?") || !strings.Contains(sql, "end_time > ?") {
		t.Fatalf("expected half-open overlap predicate, got: %s", sql)
	}
	if strings.Contains(sql, "id <> ?") {
		t.Fatalf("plain reserve must not exclude any appointment, got: %s", sql)
	}
	if len(stmt.Vars) == 0 || stmt.Vars[0] != uint(7) {
		t.Fatalf("professional id must be the first bind var, got: %v", stmt.Vars)
	}
}

func TestOverlapQuery_RescheduleExcludesItself(t *testing.T) {
	db := newDryRunDB(t)
	start, end := overlapWindow()
	self := uuid.New()

	var blockers []uuid.UUID
	stmt := overlapQuery(db, 7, self, start, end).
		Pluck("id", &blockers).Statement

	sql := stmt.SQL.String()

	if !strings.Contains(sql, "id <> ?") {
		t.Fatalf("reschedule must ignore the appointment being moved, got: %s", sql)
	}
	if !strings.Contains(sql, "FOR UPDATE") {
		t.Fatalf("reschedule check must keep the row lock, got: %s", sql)
	}
}
