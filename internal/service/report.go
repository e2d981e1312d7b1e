package service

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

// Report sizes.
const (
	ReportRecentIssues  = 10
	ReportTopCategories = 5
)

// DefaultTimeFilter is echoed in a report when none is requested.
const DefaultTimeFilter = "7d"

// TimeFilters are the accepted report windows. The window is recorded in
// the report for the reader; the figures always cover every record.
var TimeFilters = []string{"7d", "30d", "90d", "1y"}

// Summary is the headline block shared by the dashboard and the export.
type Summary struct {
	TotalIssues      int `json:"totalIssues"`
	OpenIssues       int `json:"openIssues"`
	InProgressIssues int `json:"inProgressIssues"`
	ResolvedIssues   int `json:"resolvedIssues"`
	ResolutionRate   int `json:"resolutionRate"` // percent, rounded
	TotalEvents      int `json:"totalEvents"`
	ActiveEvents     int `json:"activeEvents"` // dated after now
	TotalVolunteers  int `json:"totalVolunteers"`
}

// DashboardStats is the admin dashboard payload.
type DashboardStats struct {
	Summary
	HighPriorityIssues int             `json:"highPriorityIssues"` // high severity, not resolved
	OpenTickets        int             `json:"openTickets"`
	TotalTickets       int             `json:"totalTickets"`
	TopCategories      []CategoryCount `json:"topCategories"`
}

// ReportIssue is the flattened issue row in an export.
type ReportIssue struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Category     string       `json:"category"`
	Status       model.Status `json:"status"`
	Severity     model.Level  `json:"severity"`
	Location     string       `json:"location"`
	Upvotes      int          `json:"upvotes"`
	CreatedAt    time.Time    `json:"createdAt"`
	ReporterName string       `json:"reporterName"`
}

// CategoryCount is one entry of the top categories list. It is encoded as
// a [category, count] pair.
type CategoryCount struct {
	Category string
	Count    int
}

func (c CategoryCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Category, c.Count})
}

func (c *CategoryCount) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("category count: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Category); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &c.Count)
}

// Report is the admin JSON export.
type Report struct {
	GeneratedAt   time.Time       `json:"generatedAt"`
	TimeFilter    string          `json:"timeFilter"`
	Summary       Summary         `json:"summary"`
	Issues        []ReportIssue   `json:"issues"`
	CategoryStats map[string]int  `json:"categoryStats"`
	TopCategories []CategoryCount `json:"topCategories"`
}

// ReportService derives the admin dashboard figures and the JSON export
// from the current contents of the stores.
type ReportService struct {
	issues  *store.IssueStore
	events  *store.EventStore
	tickets *store.TicketStore
	clock   clock.Clock
}

// NewReportService creates a ReportService.
func NewReportService(issues *store.IssueStore, events *store.EventStore, tickets *store.TicketStore, c clock.Clock) *ReportService {
	return &ReportService{issues: issues, events: events, tickets: tickets, clock: c}
}

// Stats returns the dashboard figures.
func (s *ReportService) Stats() DashboardStats {
	issues := s.issues.List("")
	stats := DashboardStats{
		Summary:       s.summary(issues, s.events.List(""), s.clock.Now()),
		TopCategories: topCategories(categoryStats(issues), ReportTopCategories),
	}

	for _, i := range issues {
		if i.Severity == model.LevelHigh && i.Status != model.StatusResolved {
			stats.HighPriorityIssues++
		}
	}
	for _, t := range s.tickets.All() {
		stats.TotalTickets++
		if t.Status != model.StatusResolved {
			stats.OpenTickets++
		}
	}
	return stats
}

// Report builds the export for timeFilter ("" selects DefaultTimeFilter).
func (s *ReportService) Report(timeFilter string) (Report, error) {
	if timeFilter == "" {
		timeFilter = DefaultTimeFilter
	}
	if !slices.Contains(TimeFilters, timeFilter) {
		return Report{}, apperror.ValidationFailed("timeFilter", "time filter must be one of 7d, 30d, 90d, 1y")
	}

	now := s.clock.Now()
	issues := s.issues.List("")
	counts := categoryStats(issues)

	return Report{
		GeneratedAt:   now,
		TimeFilter:    timeFilter,
		Summary:       s.summary(issues, s.events.List(""), now),
		Issues:        recentIssues(issues, ReportRecentIssues),
		CategoryStats: counts,
		TopCategories: topCategories(counts, ReportTopCategories),
	}, nil
}

// ReportFilename is the download name for a report generated at t.
func ReportFilename(t time.Time) string {
	return "civic-sync-report-" + t.UTC().Format(time.DateOnly) + ".json"
}

func (s *ReportService) summary(issues []model.Issue, events []model.Event, now time.Time) Summary {
	var sum Summary
	sum.TotalIssues = len(issues)
	for _, i := range issues {
		switch i.Status {
		case model.StatusOpen:
			sum.OpenIssues++
		case model.StatusInProgress:
			sum.InProgressIssues++
		case model.StatusResolved:
			sum.ResolvedIssues++
		}
	}
	if sum.TotalIssues > 0 {
		sum.ResolutionRate = int(math.Round(float64(sum.ResolvedIssues) / float64(sum.TotalIssues) * 100))
	}

	sum.TotalEvents = len(events)
	for _, e := range events {
		if e.Date.After(now) {
			sum.ActiveEvents++
		}
		sum.TotalVolunteers += e.RegisteredVolunteers
	}
	return sum
}

func recentIssues(issues []model.Issue, n int) []ReportIssue {
	sorted := slices.Clone(issues)
	slices.SortStableFunc(sorted, func(a, b model.Issue) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]ReportIssue, len(sorted))
	for i, issue := range sorted {
		out[i] = ReportIssue{
			ID:           issue.ID,
			Title:        issue.Title,
			Category:     issue.Category,
			Status:       issue.Status,
			Severity:     issue.Severity,
			Location:     issue.Location.Address,
			Upvotes:      issue.Upvotes,
			CreatedAt:    issue.CreatedAt,
			ReporterName: issue.ReporterName,
		}
	}
	return out
}

func categoryStats(issues []model.Issue) map[string]int {
	counts := make(map[string]int)
	for _, i := range issues {
		counts[i.Category]++
	}
	return counts
}

// topCategories ranks by count, breaking ties by name so output is stable.
func topCategories(counts map[string]int, n int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, CategoryCount{Category: c, Count: k})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
