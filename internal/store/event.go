package store

import (
	"slices"
	"sync"

	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
)

// EventStore owns the community event collection. Attendees are a set:
// registering twice is a no-op and RegisteredVolunteers is always derived
// from the attendee count.
//
// Register does not enforce VolunteerSlots. Callers that care about the
// ceiling use RegisterWithin, which checks and inserts under one lock.
type EventStore struct {
	mu     sync.RWMutex
	clock  clock.Clock
	events []model.Event
}

// NewEventStore creates a store pre-populated with seed (copied and normalised).
func NewEventStore(c clock.Clock, seed []model.Event) *EventStore {
	events := make([]model.Event, 0, len(seed))
	for _, e := range seed {
		events = append(events, normaliseEvent(e.Clone()))
	}
	return &EventStore{clock: c, events: events}
}

// List returns every event in collection order with IsRegistered projected
// for viewer.
func (s *EventStore) List(viewer string) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.events))
	for i, e := range s.events {
		out[i] = project(e, viewer)
	}
	return out
}

// Get returns the event with id as seen by viewer.
func (s *EventStore) Get(id, viewer string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return model.Event{}, false
	}
	return project(s.events[i], viewer), true
}

// Add stores a new event with a fresh id and CreatedAt. Supplied attendees
// are de-duplicated and the volunteer count derived from them.
func (s *EventStore) Add(e model.Event) model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	e = normaliseEvent(e.Clone())
	e.ID = newID()
	e.CreatedAt = s.clock.Now()

	next := make([]model.Event, 0, len(s.events)+1)
	next = append(next, e)
	next = append(next, s.events...)
	s.events = next

	return e.Clone()
}

// Register adds userID to the event's attendees. Registering an existing
// attendee changes nothing.
func (s *EventStore) Register(id, userID string) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _, ok := s.register(id, userID, false)
	return e, ok
}

// RegisterWithin is Register with the VolunteerSlots ceiling applied. A new
// attendee on a full event is turned away with full=true and nothing
// changes; an existing attendee is always accepted.
func (s *EventStore) RegisterWithin(id, userID string) (e model.Event, full, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.register(id, userID, true)
}

func (s *EventStore) register(id, userID string, capped bool) (model.Event, bool, bool) {
	i := s.index(id)
	if i < 0 {
		return model.Event{}, false, false
	}

	e := s.events[i]
	if slices.Contains(e.Attendees, userID) {
		return project(e, userID), false, true
	}
	if capped && e.Full() {
		return project(e, userID), true, true
	}

	e = e.Clone()
	e.Attendees = append(e.Attendees, userID)
	e.RegisteredVolunteers = len(e.Attendees)
	s.replace(i, e)

	return project(e, userID), false, true
}

// Unregister removes userID from the event's attendees, if present.
func (s *EventStore) Unregister(id, userID string) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Event{}, false
	}

	e := s.events[i].Clone()
	e.Attendees = slices.DeleteFunc(e.Attendees, func(a string) bool { return a == userID })
	e.RegisteredVolunteers = len(e.Attendees)
	s.replace(i, e)

	return project(e, userID), true
}

// Update shallow-merges patch into the event. Events carry no UpdatedAt, so
// nothing is stamped.
func (s *EventStore) Update(id string, patch model.EventPatch) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Event{}, false
	}

	e := s.events[i].Clone()
	patch.Apply(&e)
	s.replace(i, e)

	return e.Clone(), true
}

func (s *EventStore) index(id string) int {
	return slices.IndexFunc(s.events, func(e model.Event) bool { return e.ID == id })
}

func (s *EventStore) replace(i int, e model.Event) {
	next := slices.Clone(s.events)
	next[i] = e
	s.events = next
}

// normaliseEvent enforces the attendee-set invariant on e in place.
func normaliseEvent(e model.Event) model.Event {
	attendees := make([]string, 0, len(e.Attendees))
	for _, a := range e.Attendees {
		if !slices.Contains(attendees, a) {
			attendees = append(attendees, a)
		}
	}
	e.Attendees = attendees
	e.RegisteredVolunteers = len(attendees)
	e.IsRegistered = false
	return e
}

func project(e model.Event, viewer string) model.Event {
	out := e.Clone()
	out.IsRegistered = viewer != "" && slices.Contains(e.Attendees, viewer)
	return out
}
