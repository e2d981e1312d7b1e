package store

import (
	"cmp"
	"slices"

	"github.com/sakif/civic-sync/internal/model"
)

// FilterAll disables a filter dimension.
const FilterAll = "all"

// SortBy selects the ordering of a filtered issue list.
type SortBy string

const (
	SortNewest  SortBy = "newest"  // createdAt descending
	SortOldest  SortBy = "oldest"  // createdAt ascending
	SortUpvotes SortBy = "upvotes" // upvotes descending
)

// Filters is the issue list selection. Values are not validated: a value
// that no issue carries simply matches nothing.
type Filters struct {
	Category string `json:"category"`
	Status   string `json:"status"`
	Severity string `json:"severity"`
	SortBy   SortBy `json:"sortBy"`
}

// DefaultFilters shows everything, newest first.
func DefaultFilters() Filters {
	return Filters{
		Category: FilterAll,
		Status:   FilterAll,
		Severity: FilterAll,
		SortBy:   SortNewest,
	}
}

// FilterPatch is a partial Filters. Nil fields keep their current value.
type FilterPatch struct {
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
	Severity *string `json:"severity,omitempty"`
	SortBy   *SortBy `json:"sortBy,omitempty"`
}

// Merge returns f with every non-nil field of p applied.
func (f Filters) Merge(p FilterPatch) Filters {
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Severity != nil {
		f.Severity = *p.Severity
	}
	if p.SortBy != nil {
		f.SortBy = *p.SortBy
	}
	return f
}

// Match reports whether issue passes every active filter dimension.
func (f Filters) Match(issue model.Issue) bool {
	if f.Category != FilterAll && issue.Category != f.Category {
		return false
	}
	if f.Status != FilterAll && string(issue.Status) != f.Status {
		return false
	}
	if f.Severity != FilterAll && string(issue.Severity) != f.Severity {
		return false
	}
	return true
}

// ApplyFilters returns the issues matching f, ordered by f.SortBy.
//
// The sort is stable: issues that compare equal keep their input order. An
// unknown SortBy leaves the input order untouched. The input slice is never
// modified.
func ApplyFilters(issues []model.Issue, f Filters) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if f.Match(issue) {
			out = append(out, issue)
		}
	}

	switch f.SortBy {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b model.Issue) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortOldest:
		slices.SortStableFunc(out, func(a, b model.Issue) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortUpvotes:
		slices.SortStableFunc(out, func(a, b model.Issue) int {
			return cmp.Compare(b.Upvotes, a.Upvotes)
		})
	}

	return out
}
