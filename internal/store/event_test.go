package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/civic-sync/internal/model"
)

func newTestEvent(slots int) model.Event {
	return model.Event{
		Title:          "Upper Lake clean-up",
		Date:           testEpoch.Add(72 * time.Hour),
		Time:           "7:00 AM",
		Category:       "Clean-up Drive",
		VolunteerSlots: slots,
		Organizer:      "Bhopal Municipal Corporation",
	}
}

func TestEventStore_AddDerivesCountFromAttendees(t *testing.T) {
	c := newTestClock()
	s := NewEventStore(c, nil)

	e := newTestEvent(10)
	e.ID = "ignored"
	e.Attendees = []string{"u1", "u2", "u1"}
	e.RegisteredVolunteers = 99

	got := s.Add(e)

	assert.NotEqual(t, "ignored", got.ID)
	assert.Equal(t, c.Now(), got.CreatedAt)
	assert.Equal(t, []string{"u1", "u2"}, got.Attendees)
	assert.Equal(t, 2, got.RegisteredVolunteers)
}

func TestEventStore_SeedIsNormalised(t *testing.T) {
	seed := newTestEvent(5)
	seed.ID = "e1"
	seed.Attendees = []string{"a", "b", "c"}
	seed.RegisteredVolunteers = 40

	s := NewEventStore(newTestClock(), []model.Event{seed})

	got, ok := s.Get("e1", "")
	require.True(t, ok)
	assert.Equal(t, 3, got.RegisteredVolunteers)
}

func TestEventStore_RegisterThenUnregisterRestoresState(t *testing.T) {
	s := NewEventStore(newTestClock(), nil)
	e := newTestEvent(10)
	e.Attendees = []string{"u1"}
	before := s.Add(e)

	registered, ok := s.Register(before.ID, "u2")
	require.True(t, ok)
	assert.Equal(t, 2, registered.RegisteredVolunteers)
	assert.True(t, registered.IsRegistered)

	after, ok := s.Unregister(before.ID, "u2")
	require.True(t, ok)
	assert.Equal(t, before.RegisteredVolunteers, after.RegisteredVolunteers)
	assert.Equal(t, before.Attendees, after.Attendees)
	assert.False(t, after.IsRegistered)
}

func TestEventStore_RegisterTwiceCountsOnce(t *testing.T) {
	s := NewEventStore(newTestClock(), nil)
	e := s.Add(newTestEvent(10))

	s.Register(e.ID, "u1")
	got, _ := s.Register(e.ID, "u1")

	assert.Equal(t, 1, got.RegisteredVolunteers)
	assert.Equal(t, []string{"u1"}, got.Attendees)
}

func TestEventStore_UnregisterNonAttendeeNeverGoesNegative(t *testing.T) {
	s := NewEventStore(newTestClock(), nil)
	e := s.Add(newTestEvent(10))

	got, ok := s.Unregister(e.ID, "stranger")

	require.True(t, ok)
	assert.Equal(t, 0, got.RegisteredVolunteers)
	assert.Empty(t, got.Attendees)
}

func TestEventStore_RegisterDoesNotEnforceSlots(t *testing.T) {
	s := NewEventStore(newTestClock(), nil)
	e := s.Add(newTestEvent(1))

	s.Register(e.ID, "u1")
	got, _ := s.Register(e.ID, "u2")

	assert.Equal(t, 2, got.RegisteredVolunteers)
	assert.True(t, got.Full())
}

func TestEventStore_RegisterWithinStopsAtCapacity(t *testing.T) {
	s := NewEventStore(newTestClock(), nil)
	e := s.Add(newTestEvent(1))

	got, full, ok := s.RegisterWithin(e.ID, "u1")
	assert.True(t, ok)
	assert.False(t, full)
	assert.Equal(t, 1, got.RegisteredVolunteers)

	got, full, ok = s.RegisterWithin(e.ID, "u2")
	assert.True(t, ok)
	assert.True(t, full)
	assert.Equal(t, []string{"u1"}, got.Attendees)
	assert.False(t, got.IsRegistered)

	// An existing attendee is never turned away.
	got, full, _ = s.RegisterWithin(e.ID, "u1")
	assert.False(t, full)
	assert.True(t, got.IsRegistered)

	_, _, ok = s.RegisterWithin("missing", "u1")
	assert.False(t, ok)
}

func TestEventStore_UnknownID(t *testing.T) {
	s := NewEventStore(newTestClock(), nil)

	_, ok := s.Register("missing", "u1")
	assert.False(t, ok)
	_, ok = s.Unregister("missing", "u1")
	assert.False(t, ok)
	_, ok = s.Update("missing", model.EventPatch{})
	assert.False(t, ok)
	_, ok = s.Get("missing", "")
	assert.False(t, ok)
}

func TestEventStore_UpdateKeepsAttendeesAndCreatedAt(t *testing.T) {
	c := newTestClock()
	s := NewEventStore(c, nil)
	e := s.Add(newTestEvent(10))
	s.Register(e.ID, "u1")

	c.Advance(time.Hour)
	got, ok := s.Update(e.ID, model.EventPatch{Title: ptr("Lake clean-up, round two"), VolunteerSlots: ptr(20)})

	require.True(t, ok)
	assert.Equal(t, "Lake clean-up, round two", got.Title)
	assert.Equal(t, 20, got.VolunteerSlots)
	assert.Equal(t, []string{"u1"}, got.Attendees)
	assert.Equal(t, e.CreatedAt, got.CreatedAt)
}

func TestEventStore_ListProjectsViewer(t *testing.T) {
	s := NewEventStore(newTestClock(), nil)
	first := s.Add(newTestEvent(10))
	second := s.Add(newTestEvent(10))
	s.Register(first.ID, "u1")

	list := s.List("u1")
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.False(t, list[0].IsRegistered)
	assert.True(t, list[1].IsRegistered)

	for _, e := range s.List("") {
		assert.False(t, e.IsRegistered)
	}
}
