package appointment

import (
	"context"
	"testing"
	"time"

	domain "github.com/agendaflow/scheduling/internal/domain/appointment"
	"github.com/agendaflow/scheduling/internal/timezone"
)

func newAvailabilityHarness() (*GetAvailability, *fakeRepo, *fakeCache) {
	repo := newFakeRepo()
	seedScenario(repo)
	cache := newFakeCache()
	return NewGetAvailability(repo, cache), repo, cache
}

// o mesmo dia usado por baseBooking, como time.Time no fuso do cenário
func scenarioDate() time.Time {
	loc := timezone.Location("America/Sao_Paulo")
	d, _ := time.ParseInLocation("2006-01-02", futureDate(7), loc)
	return d
}

func availabilityInput() domain.AvailabilityInput {
	return domain.AvailabilityInput{
		ProviderID:     1,
		ProfessionalID: 7,
		ServiceIDs:     []uint{3},
		Date:           scenarioDate(),
	}
}

func TestGetAvailability_SkipsBookedWindow(t *testing.T) {
	uc, repo, _ := newAvailabilityHarness()

	// ocupa 10:00–11:00 do dia consultado
	book := NewBookAppointment(repo, &fakeAudit{}, &fakeSync{}, newFakeCache())
	if _, err := book.Execute(context.Background(), baseBooking()); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	slots, err := uc.Execute(context.Background(), availabilityInput())
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected free slots on an open day")
	}

	for _, slot := range slots {
		switch slot.Start {
		case "09:30", "10:00", "10:30":
			// 60 min a partir daqui invadem a janela 10:00–11:00
			t.Fatalf("slot %s overlaps the booked window", slot.Start)
		}
	}

	// o horário logo após o agendamento volta a estar livre
	found := false
	for _, slot := range slots {
		if slot.Start == "11:00" {
			found = true
		}
	}
	if !found {
		t.Fatal("11:00 should be offered right after the booked window")
	}
}

func TestGetAvailability_ClosedDayIsEmpty(t *testing.T) {
	uc, repo, _ := newAvailabilityHarness()

	in := availabilityInput()
	weekday := int(in.Date.Weekday())
	repo.availability[7][weekday].IsOpen = false

	slots, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("closed day must return no slots, got %d", len(slots))
	}
}

func TestGetAvailability_CombinedServicesUseTotalDuration(t *testing.T) {
	uc, repo, _ := newAvailabilityHarness()

	// segundo serviço de 30 min: total 90 min
	extra := *repo.services[3]
	extra.ID = 4
	extra.DurationMin = 30
	repo.services[4] = &extra

	in := availabilityInput()
	in.ServiceIDs = []uint{3, 4}

	slots, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}

	for _, slot := range slots {
		if slot.Start == "17:00" {
			t.Fatal("90 min starting 17:00 would end past 18:00")
		}
	}
}

func TestGetAvailability_CacheHitSkipsRecompute(t *testing.T) {
	uc, _, cache := newAvailabilityHarness()

	in := availabilityInput()
	canned := []domain.TimeSlot{{Start: "09:00", End: "10:00"}}
	cache.Set(context.Background(), 7, in.Date.Format("2006-01-02"), 60, canned)

	slots, err := uc.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(slots) != 1 || slots[0].Start != "09:00" {
		t.Fatalf("expected the cached grid, got %+v", slots)
	}
}

func TestGetAvailability_PopulatesCacheOnMiss(t *testing.T) {
	uc, _, cache := newAvailabilityHarness()

	in := availabilityInput()
	if _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("availability: %v", err)
	}

	if _, ok := cache.Get(context.Background(), 7, in.Date.Format("2006-01-02"), 60); !ok {
		t.Fatal("computed grid should be cached")
	}
}
