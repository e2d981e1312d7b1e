package model

import (
	"slices"
	"time"
)

// EventCategories is the suggested category list for community events.
var EventCategories = []string{
	"Clean-up Drive",
	"Tree Plantation",
	"Awareness Campaign",
	"Marathon",
	"Cultural Event",
	"Workshop",
	"Town Hall",
	"Volunteer Training",
}

// Event is a community event volunteers can sign up for.
//
// INVARIANT: RegisteredVolunteers == len(Attendees). Attendees holds each
// user id at most once. IsRegistered is a per-viewer projection filled in
// on read.
type Event struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Date                 time.Time `json:"date"`
	Time                 string    `json:"time"`
	Location             Location  `json:"location"`
	Category             string    `json:"category"`
	VolunteerSlots       int       `json:"volunteerSlots"`
	RegisteredVolunteers int       `json:"registeredVolunteers"`
	Attendees            []string  `json:"attendees"`
	Organizer            string    `json:"organizer"`
	IsRegistered         bool      `json:"isRegistered"`
	CreatedAt            time.Time `json:"createdAt"`
}

// Clone returns a deep copy of e.
func (e Event) Clone() Event {
	c := e
	c.Attendees = slices.Clone(e.Attendees)
	return c
}

// Full reports whether every volunteer slot is taken.
func (e Event) Full() bool {
	return e.RegisteredVolunteers >= e.VolunteerSlots
}

// EventPatch is a partial update. Attendees are deliberately absent: they
// only change through registration.
type EventPatch struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Date           *time.Time `json:"date,omitempty"`
	Time           *string    `json:"time,omitempty"`
	Location       *Location  `json:"location,omitempty"`
	Category       *string    `json:"category,omitempty"`
	VolunteerSlots *int       `json:"volunteerSlots,omitempty"`
	Organizer      *string    `json:"organizer,omitempty"`
}

// Apply shallow-merges p into e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.VolunteerSlots != nil {
		e.VolunteerSlots = *p.VolunteerSlots
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
}
