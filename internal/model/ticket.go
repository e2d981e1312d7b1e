package model

import (
	"slices"
	"time"
)

// TicketCategories is the suggested category list for support tickets.
var TicketCategories = []string{
	"General Inquiry",
	"Grievance",
	"Feedback",
	"Data Correction",
	"Technical Support",
	"Complaint",
	"Suggestion",
	"Other",
}

// Ticket is a support request filed by a citizen and answered by staff.
// This is the one collection that survives a restart.
type Ticket struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Status       Status           `json:"status"`
	Priority     Level            `json:"priority"`
	ReportedBy   string           `json:"reportedBy"`
	ReporterName string           `json:"reporterName"`
	AssignedTo   string           `json:"assignedTo,omitempty"`
	Responses    []TicketResponse `json:"responses"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// Clone returns a deep copy of t.
func (t Ticket) Clone() Ticket {
	c := t
	c.Responses = slices.Clone(t.Responses)
	return c
}

// TicketResponse is an append-only reply on a ticket. IsAdmin only affects
// how the reply is displayed.
type TicketResponse struct {
	ID         string    `json:"id"`
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	IsAdmin    bool      `json:"isAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TicketPatch is a partial update. Nil fields are left unchanged.
type TicketPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *Status `json:"status,omitempty"`
	Priority    *Level  `json:"priority,omitempty"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
}

// Apply shallow-merges p into t.
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
}
