package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

var organizer = model.Author{ID: "admin1", Name: "Bhopal Municipal Corporation"}

func newTestEventService(t *testing.T) (*EventService, *clock.FakeClock) {
	t.Helper()
	c := newTestClock()
	return NewEventService(store.NewEventStore(c, nil), c, newTestLogger()), c
}

func validEvent(c *clock.FakeClock, slots int) NewEvent {
	return NewEvent{
		Title:          "Upper Lake Clean-Up Drive",
		Date:           c.Now().Add(7 * 24 * time.Hour),
		Time:           "6:00 AM - 9:00 AM",
		Category:       "Clean-up Drive",
		VolunteerSlots: slots,
	}
}

func TestEventCreate(t *testing.T) {
	svc, c := newTestEventService(t)

	e, err := svc.Create(organizer, validEvent(c, 100))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.Organizer != organizer.Name {
		t.Errorf("Organizer = %q", e.Organizer)
	}
	if e.RegisteredVolunteers != 0 || len(e.Attendees) != 0 {
		t.Errorf("new event has volunteers: %d %v", e.RegisteredVolunteers, e.Attendees)
	}
}

func TestEventCreate_RejectsPastAndPresentDates(t *testing.T) {
	svc, c := newTestEventService(t)

	for _, d := range []time.Time{c.Now(), c.Now().Add(-time.Hour), {}} {
		in := validEvent(c, 10)
		in.Date = d
		_, err := svc.Create(organizer, in)
		assertField(t, err, "date")
	}
}

func TestEventCreate_Validation(t *testing.T) {
	svc, c := newTestEventService(t)

	in := validEvent(c, 0)
	_, err := svc.Create(organizer, in)
	assertField(t, err, "volunteerSlots")

	in = validEvent(c, 5)
	in.Title = ""
	_, err = svc.Create(organizer, in)
	assertField(t, err, "title")
}

func TestEventRegister_CapacityCheck(t *testing.T) {
	svc, c := newTestEventService(t)
	e, _ := svc.Create(organizer, validEvent(c, 2))

	if _, err := svc.Register(e.ID, "u1"); err != nil {
		t.Fatalf("Register(u1) error = %v", err)
	}
	if _, err := svc.Register(e.ID, "u2"); err != nil {
		t.Fatalf("Register(u2) error = %v", err)
	}

	_, err := svc.Register(e.ID, "u3")
	assertAppError(t, err, apperror.ErrConflict)

	// An existing attendee re-registering on a full event is fine.
	got, err := svc.Register(e.ID, "u1")
	if err != nil {
		t.Fatalf("re-Register(u1) error = %v", err)
	}
	if got.RegisteredVolunteers != 2 || !got.IsRegistered {
		t.Errorf("after re-register: count=%d registered=%v", got.RegisteredVolunteers, got.IsRegistered)
	}

	// Freeing a slot lets the next volunteer in.
	if _, err := svc.Unregister(e.ID, "u2"); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if _, err := svc.Register(e.ID, "u3"); err != nil {
		t.Errorf("Register(u3) after a slot freed: %v", err)
	}
}

func TestEventRegister_ConcurrentSignUpsNeverOverbook(t *testing.T) {
	svc, c := newTestEventService(t)

	for round := range 200 {
		e, err := svc.Create(organizer, validEvent(c, 1))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		start := make(chan struct{})
		for i := range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := svc.Register(e.ID, fmt.Sprintf("u%d", i)); err == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		close(start)
		wg.Wait()

		got, _ := svc.Get("", e.ID)
		if got.RegisteredVolunteers != 1 || accepted != 1 {
			t.Fatalf("round %d: 1-slot event has %d volunteers, %d sign-ups accepted",
				round, got.RegisteredVolunteers, accepted)
		}
	}
}

func TestEventRegister_UnknownEvent(t *testing.T) {
	svc, _ := newTestEventService(t)

	_, err := svc.Register("missing", "u1")
	assertAppError(t, err, apperror.ErrNotFound)

	_, err = svc.Unregister("missing", "u1")
	assertAppError(t, err, apperror.ErrNotFound)
}

func TestEventUpdate(t *testing.T) {
	svc, c := newTestEventService(t)
	e, _ := svc.Create(organizer, validEvent(c, 10))

	got, err := svc.Update(e.ID, model.EventPatch{VolunteerSlots: ptr(25)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.VolunteerSlots != 25 {
		t.Errorf("VolunteerSlots = %d, want 25", got.VolunteerSlots)
	}

	_, err = svc.Update(e.ID, model.EventPatch{VolunteerSlots: ptr(0)})
	assertField(t, err, "volunteerSlots")

	_, err = svc.Update("missing", model.EventPatch{})
	assertAppError(t, err, apperror.ErrNotFound)
}

func TestEventList_FiltersAndSorts(t *testing.T) {
	c := newTestClock()
	seed := []model.Event{
		{ID: "past", Category: "Workshop", Date: c.Now().Add(-24 * time.Hour), VolunteerSlots: 10, Attendees: []string{"a"}},
		{ID: "soon", Category: "Clean-up Drive", Date: c.Now().Add(24 * time.Hour), VolunteerSlots: 5, Attendees: []string{"a", "b", "c"}},
		{ID: "later", Category: "Clean-up Drive", Date: c.Now().Add(72 * time.Hour), VolunteerSlots: 50, Attendees: []string{"a", "b"}},
	}
	svc := NewEventService(store.NewEventStore(c, seed), c, newTestLogger())

	ids := func(events []model.Event) []string {
		out := make([]string, len(events))
		for i, e := range events {
			out[i] = e.ID
		}
		return out
	}

	tests := []struct {
		name string
		q    EventQuery
		want []string
	}{
		{"default by date", EventQuery{}, []string{"past", "soon", "later"}},
		{"upcoming", EventQuery{When: EventsUpcoming}, []string{"soon", "later"}},
		{"past", EventQuery{When: EventsPast}, []string{"past"}},
		{"category", EventQuery{Category: "Clean-up Drive"}, []string{"soon", "later"}},
		{"popular", EventQuery{SortBy: EventSortPopular}, []string{"soon", "later", "past"}},
		{"spots", EventQuery{SortBy: EventSortSpots}, []string{"later", "past", "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(svc.List("a", tt.q))
			if len(got) != len(tt.want) {
				t.Fatalf("List() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("List() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}
