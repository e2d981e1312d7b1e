package service

import (
	"strings"
	"testing"
	"time"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

var rahul = model.Author{ID: "1", Name: "Rahul Sharma"}

func newTestIssueService(t *testing.T) (*IssueService, *clock.FakeClock) {
	t.Helper()
	c := newTestClock()
	return NewIssueService(store.NewIssueStore(c, nil), c, newTestLogger()), c
}

func validIssue() NewIssue {
	return NewIssue{
		Title:       "Pothole on Link Road",
		Description: "Deep pothole near the bus stop",
		Category:    "Potholes",
		Location:    model.Location{Lat: 23.2394, Lng: 77.4149, Address: "Link Road, Bhopal"},
	}
}

// =========================================================================
// Create
// =========================================================================

func TestIssueCreate_Defaults(t *testing.T) {
	svc, c := newTestIssueService(t)

	issue, err := svc.Create(rahul, validIssue())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if issue.Status != model.StatusOpen {
		t.Errorf("Status = %q, want open", issue.Status)
	}
	if issue.Severity != model.LevelMedium {
		t.Errorf("Severity = %q, want medium", issue.Severity)
	}
	if issue.ReportedBy != "1" || issue.ReporterName != "Rahul Sharma" {
		t.Errorf("reporter = %q/%q", issue.ReportedBy, issue.ReporterName)
	}
	if !issue.CreatedAt.Equal(c.Now()) {
		t.Errorf("CreatedAt = %v, want %v", issue.CreatedAt, c.Now())
	}
}

func TestIssueCreate_Anonymous(t *testing.T) {
	svc, _ := newTestIssueService(t)
	in := validIssue()
	in.IsAnonymous = true

	issue, err := svc.Create(rahul, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if issue.ReporterName != AnonymousReporter {
		t.Errorf("ReporterName = %q, want %q", issue.ReporterName, AnonymousReporter)
	}
	if issue.ReportedBy != "1" {
		t.Error("ReportedBy should still record the reporter")
	}
}

func TestIssueCreate_Validation(t *testing.T) {
	svc, _ := newTestIssueService(t)

	tests := []struct {
		name   string
		modify func(*NewIssue)
		field  string
	}{
		{"blank title", func(in *NewIssue) { in.Title = "   " }, "title"},
		{"long title", func(in *NewIssue) { in.Title = strings.Repeat("a", MaxTitleLength+1) }, "title"},
		{"no description", func(in *NewIssue) { in.Description = "" }, "description"},
		{"no category", func(in *NewIssue) { in.Category = "" }, "category"},
		{"bad severity", func(in *NewIssue) { in.Severity = "critical" }, "severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIssue()
			tt.modify(&in)
			_, err := svc.Create(rahul, in)
			assertField(t, err, tt.field)
		})
	}

	if got := svc.List("", store.FilterPatch{}); len(got) != 0 {
		t.Errorf("rejected issues were stored: %d", len(got))
	}
}

// =========================================================================
// Update
// =========================================================================

func TestIssueUpdate_ResolvingStampsResolvedAt(t *testing.T) {
	svc, c := newTestIssueService(t)
	issue, _ := svc.Create(rahul, validIssue())

	c.Advance(48 * time.Hour)
	got, err := svc.Update(issue.ID, model.IssuePatch{Status: ptr(model.StatusResolved)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got.ResolvedAt == nil || !got.ResolvedAt.Equal(c.Now()) {
		t.Errorf("ResolvedAt = %v, want %v", got.ResolvedAt, c.Now())
	}
	if !got.UpdatedAt.Equal(c.Now()) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, c.Now())
	}

	// Resolving again keeps the first timestamp.
	c.Advance(time.Hour)
	again, _ := svc.Update(issue.ID, model.IssuePatch{Status: ptr(model.StatusResolved)})
	if !again.ResolvedAt.Equal(*got.ResolvedAt) {
		t.Errorf("ResolvedAt moved to %v", again.ResolvedAt)
	}
}

func TestIssueUpdate_InProgressLeavesResolvedAtUnset(t *testing.T) {
	svc, _ := newTestIssueService(t)
	issue, _ := svc.Create(rahul, validIssue())

	got, err := svc.Update(issue.ID, model.IssuePatch{Status: ptr(model.StatusInProgress)})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.ResolvedAt != nil {
		t.Errorf("ResolvedAt = %v, want nil", got.ResolvedAt)
	}
}

func TestIssueUpdate_Errors(t *testing.T) {
	svc, _ := newTestIssueService(t)
	issue, _ := svc.Create(rahul, validIssue())

	_, err := svc.Update("missing", model.IssuePatch{Status: ptr(model.StatusResolved)})
	assertAppError(t, err, apperror.ErrNotFound)

	_, err = svc.Update(issue.ID, model.IssuePatch{Status: ptr(model.Status("closed"))})
	assertField(t, err, "status")

	_, err = svc.Update(issue.ID, model.IssuePatch{Title: ptr("")})
	assertField(t, err, "title")
}

// =========================================================================
// Vote / Comment / List
// =========================================================================

func TestIssueVote(t *testing.T) {
	svc, _ := newTestIssueService(t)
	issue, _ := svc.Create(rahul, validIssue())

	got, err := svc.Vote(issue.ID, "u1", model.VoteUp)
	if err != nil {
		t.Fatalf("Vote() error = %v", err)
	}
	if got.Upvotes != 1 || got.UserVote != model.VoteUp {
		t.Errorf("after vote: upvotes=%d userVote=%q", got.Upvotes, got.UserVote)
	}

	_, err = svc.Vote(issue.ID, "u1", "")
	assertField(t, err, "voteType")

	_, err = svc.Vote("missing", "u1", model.VoteDown)
	assertAppError(t, err, apperror.ErrNotFound)
}

func TestIssueComment(t *testing.T) {
	svc, _ := newTestIssueService(t)
	issue, _ := svc.Create(rahul, validIssue())
	priya := model.Author{ID: "2", Name: "Priya Singh"}

	comment, err := svc.Comment(issue.ID, priya, "  Same issue in our sector too!  ")
	if err != nil {
		t.Fatalf("Comment() error = %v", err)
	}
	if comment.Text != "Same issue in our sector too!" {
		t.Errorf("Text = %q, want trimmed", comment.Text)
	}
	if comment.AuthorName != "Priya Singh" {
		t.Errorf("AuthorName = %q", comment.AuthorName)
	}

	_, err = svc.Comment(issue.ID, priya, " ")
	assertField(t, err, "text")

	_, err = svc.Comment("missing", priya, "hello")
	assertAppError(t, err, apperror.ErrNotFound)
}

func TestIssueList_UsesSavedFiltersAndOverride(t *testing.T) {
	svc, c := newTestIssueService(t)

	a, _ := svc.Create(rahul, validIssue())
	c.Advance(time.Minute)
	b, _ := svc.Create(rahul, validIssue())
	svc.Update(a.ID, model.IssuePatch{Status: ptr(model.StatusResolved)})

	if got := svc.List("u1", store.FilterPatch{}); len(got) != 2 || got[0].ID != b.ID {
		t.Fatalf("default list = %v", got)
	}

	svc.SetFilters("u1", store.FilterPatch{Status: ptr("resolved")})
	got := svc.List("u1", store.FilterPatch{})
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("saved filter list = %v", got)
	}

	got = svc.List("u1", store.FilterPatch{Status: ptr(store.FilterAll)})
	if len(got) != 2 {
		t.Errorf("override should widen the list, got %d", len(got))
	}
	if svc.Filters("u1").Status != "resolved" {
		t.Error("override must not be saved")
	}

	if got := svc.List("u2", store.FilterPatch{}); len(got) != 2 {
		t.Errorf("other viewers keep defaults, got %d", len(got))
	}
}
