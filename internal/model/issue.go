package model

import (
	"slices"
	"time"
)

// IssueCategories is the suggested category list offered when reporting.
// Category itself is free-form; nothing rejects values outside this list.
var IssueCategories = []string{
	"Potholes",
	"Garbage",
	"Powercut",
	"Water Supply",
	"Streetlight",
	"Drainage",
	"Stray Animals",
	"Waterlogging",
	"Noise Pollution",
	"Air Pollution",
	"Broken Sidewalks",
	"Graffiti",
	"Encroachment",
	"Traffic Signal",
	"Illegal Parking",
	"Public Toilets",
	"Park Maintenance",
	"Road Blockage",
	"Fallen Trees",
	"Construction Issues",
}

// VoteType is a viewer's vote on an issue. VoteNone means no vote.
type VoteType string

const (
	VoteNone VoteType = ""
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether v is an actual vote (up or down).
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Issue is a municipal problem reported by a citizen.
//
// Upvotes and Downvotes are aggregate counters. UserVote is NOT stored on the
// record: stores fill it in on read for the viewer asking, from a separate
// (issue, viewer) relation.
type Issue struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Severity     Level      `json:"severity"`
	Status       Status     `json:"status"`
	Location     Location   `json:"location"`
	Media        []string   `json:"media,omitempty"`
	Upvotes      int        `json:"upvotes"`
	Downvotes    int        `json:"downvotes"`
	UserVote     VoteType   `json:"userVote,omitempty"`
	Comments     []Comment  `json:"comments"`
	ReportedBy   string     `json:"reportedBy"`
	ReporterName string     `json:"reporterName"`
	IsAnonymous  bool       `json:"isAnonymous"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// Clone returns a deep copy of i, so the caller can't modify store state.
func (i Issue) Clone() Issue {
	c := i
	c.Media = slices.Clone(i.Media)
	c.Comments = slices.Clone(i.Comments)
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		c.ResolvedAt = &t
	}
	return c
}

// Comment is an append-only remark on an issue.
type Comment struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IssuePatch is a partial update. Nil fields are left unchanged.
type IssuePatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Severity    *Level     `json:"severity,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Location    *Location  `json:"location,omitempty"`
	Media       []string   `json:"media,omitempty"`
	IsAnonymous *bool      `json:"isAnonymous,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// Apply shallow-merges p into i.
func (p IssuePatch) Apply(i *Issue) {
	if p.Title != nil {
		i.Title = *p.Title
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Category != nil {
		i.Category = *p.Category
	}
	if p.Severity != nil {
		i.Severity = *p.Severity
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
	if p.Location != nil {
		i.Location = *p.Location
	}
	if p.Media != nil {
		i.Media = slices.Clone(p.Media)
	}
	if p.IsAnonymous != nil {
		i.IsAnonymous = *p.IsAnonymous
	}
	if p.ResolvedAt != nil {
		t := *p.ResolvedAt
		i.ResolvedAt = &t
	}
}
