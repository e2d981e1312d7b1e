package service

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

// Event list selection values.
const (
	EventsUpcoming = "upcoming"
	EventsPast     = "past"

	EventSortDate    = "date"    // soonest first
	EventSortPopular = "popular" // most volunteers first
	EventSortSpots   = "spots"   // most free slots first
)

// EventQuery narrows and orders the event list. Zero values mean "all" and
// "by date".
type EventQuery struct {
	Category string
	When     string // "", "all", EventsUpcoming or EventsPast
	SortBy   string
}

// NewEvent is the input for EventService.Create.
type NewEvent struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Date           time.Time      `json:"date"`
	Time           string         `json:"time"`
	Location       model.Location `json:"location"`
	Category       string         `json:"category"`
	VolunteerSlots int            `json:"volunteerSlots"`
}

// EventService handles community events and volunteer sign-ups.
type EventService struct {
	store  *store.EventStore
	clock  clock.Clock
	logger *slog.Logger
}

// NewEventService creates an EventService.
func NewEventService(s *store.EventStore, c clock.Clock, logger *slog.Logger) *EventService {
	return &EventService{store: s, clock: c, logger: logger}
}

// List returns the events matching q as seen by viewer.
func (s *EventService) List(viewer string, q EventQuery) []model.Event {
	now := s.clock.Now()

	events := slices.DeleteFunc(s.store.List(viewer), func(e model.Event) bool {
		if q.Category != "" && q.Category != store.FilterAll && e.Category != q.Category {
			return true
		}
		switch q.When {
		case EventsUpcoming:
			return !e.Date.After(now)
		case EventsPast:
			return e.Date.After(now)
		}
		return false
	})

	switch q.SortBy {
	case "", EventSortDate:
		slices.SortStableFunc(events, func(a, b model.Event) int { return a.Date.Compare(b.Date) })
	case EventSortPopular:
		slices.SortStableFunc(events, func(a, b model.Event) int {
			return cmp.Compare(b.RegisteredVolunteers, a.RegisteredVolunteers)
		})
	case EventSortSpots:
		slices.SortStableFunc(events, func(a, b model.Event) int {
			return cmp.Compare(b.VolunteerSlots-b.RegisteredVolunteers, a.VolunteerSlots-a.RegisteredVolunteers)
		})
	}
	return events
}

// Get returns one event as seen by viewer.
func (s *EventService) Get(viewer, id string) (model.Event, error) {
	e, ok := s.store.Get(id, viewer)
	if !ok {
		return model.Event{}, apperror.NotFound("event", id)
	}
	return e, nil
}

// Create schedules an event organised by organizer. The date must be in
// the future and there must be at least one volunteer slot.
func (s *EventService) Create(organizer model.Author, in NewEvent) (model.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Event{}, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return model.Event{}, apperror.ValidationFailed("title", "title is too long")
	}
	if in.Date.IsZero() {
		return model.Event{}, apperror.ValidationFailed("date", "date is required")
	}
	if !in.Date.After(s.clock.Now()) {
		return model.Event{}, apperror.ValidationFailed("date", "event date and time must be in the future")
	}
	if in.VolunteerSlots < 1 {
		return model.Event{}, apperror.ValidationFailed("volunteerSlots", "at least one volunteer slot is required")
	}

	e := s.store.Add(model.Event{
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Date:           in.Date.UTC(),
		Time:           in.Time,
		Location:       in.Location,
		Category:       strings.TrimSpace(in.Category),
		VolunteerSlots: in.VolunteerSlots,
		Organizer:      organizer.Name,
	})

	s.logger.Info("event created",
		slog.String("id", e.ID),
		slog.String("title", e.Title),
		slog.Time("date", e.Date),
	)
	return e, nil
}

// Register signs userID up as a volunteer. Signing up again is a no-op;
// a new sign-up for a full event is a conflict.
func (s *EventService) Register(id, userID string) (model.Event, error) {
	e, full, ok := s.store.RegisterWithin(id, userID)
	if !ok {
		return model.Event{}, apperror.NotFound("event", id)
	}
	if full {
		return model.Event{}, apperror.Conflict("event", id, "all volunteer slots are taken")
	}

	s.logger.Info("volunteer registered",
		slog.String("event", id),
		slog.String("user", userID),
		slog.Int("registered", e.RegisteredVolunteers),
	)
	return e, nil
}

// Unregister withdraws userID's sign-up.
func (s *EventService) Unregister(id, userID string) (model.Event, error) {
	e, ok := s.store.Unregister(id, userID)
	if !ok {
		return model.Event{}, apperror.NotFound("event", id)
	}

	s.logger.Info("volunteer unregistered", slog.String("event", id), slog.String("user", userID))
	return e, nil
}

// Update applies an admin patch. Slots may not drop below one.
func (s *EventService) Update(id string, patch model.EventPatch) (model.Event, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Event{}, apperror.ValidationFailed("title", "title cannot be empty")
	}
	if patch.VolunteerSlots != nil && *patch.VolunteerSlots < 1 {
		return model.Event{}, apperror.ValidationFailed("volunteerSlots", "at least one volunteer slot is required")
	}

	e, ok := s.store.Update(id, patch)
	if !ok {
		return model.Event{}, apperror.NotFound("event", id)
	}

	s.logger.Info("event updated", slog.String("id", id))
	return e, nil
}
