// Package service holds the business rules that sit between the HTTP
// handlers and the stores.
//
// LAYERS:
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → checks guard clauses, fills defaults, logs business events
//	Store           → owns the collections and applies mutations
//	Repository      → durable storage (ticket snapshots, strict-mode users)
//
// Services never see an *http.Request. They return apperror values and the
// handler maps those to status codes: a store's ok=false becomes
// apperror.NotFound, a failed guard becomes apperror.ValidationFailed or
// apperror.Conflict.
package service

import (
	"log/slog"
	"strings"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

// Text limits shared by the issue, ticket and chat services.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxCommentLength     = 2000
)

// AnonymousReporter is shown instead of the reporter's name on anonymous issues.
const AnonymousReporter = "Anonymous"

// NewIssue is the input for IssueService.Create.
type NewIssue struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Severity    model.Level    `json:"severity"`
	Location    model.Location `json:"location"`
	Media       []string       `json:"media"`
	IsAnonymous bool           `json:"isAnonymous"`
}

// IssueService handles reporting, moderating, voting on and discussing issues.
type IssueService struct {
	store  *store.IssueStore
	clock  clock.Clock
	logger *slog.Logger
}

// NewIssueService creates an IssueService.
func NewIssueService(s *store.IssueStore, c clock.Clock, logger *slog.Logger) *IssueService {
	return &IssueService{store: s, clock: c, logger: logger}
}

// List returns the issues viewer sees: their saved filters, overridden by
// any field set in override, applied to the whole collection.
func (s *IssueService) List(viewer string, override store.FilterPatch) []model.Issue {
	f := s.store.Filters(viewer).Merge(override)
	return store.ApplyFilters(s.store.List(viewer), f)
}

// Get returns one issue as seen by viewer.
func (s *IssueService) Get(viewer, id string) (model.Issue, error) {
	issue, ok := s.store.Get(id, viewer)
	if !ok {
		return model.Issue{}, apperror.NotFound("issue", id)
	}
	return issue, nil
}

// Filters returns viewer's saved list selection.
func (s *IssueService) Filters(viewer string) store.Filters {
	return s.store.Filters(viewer)
}

// SetFilters merges patch into viewer's saved selection. Values are not
// checked against the known categories or statuses; an unknown value just
// filters everything out.
func (s *IssueService) SetFilters(viewer string, patch store.FilterPatch) store.Filters {
	return s.store.SetFilters(viewer, patch)
}

// Create reports a new issue on behalf of reporter. New issues always start
// open; severity defaults to medium.
func (s *IssueService) Create(reporter model.Author, in NewIssue) (model.Issue, error) {
	// === GUARDS ===
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Issue{}, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return model.Issue{}, apperror.ValidationFailed("title", "title is too long")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return model.Issue{}, apperror.ValidationFailed("description", "description is required")
	}
	if len(description) > MaxDescriptionLength {
		return model.Issue{}, apperror.ValidationFailed("description", "description is too long")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return model.Issue{}, apperror.ValidationFailed("category", "please select a category")
	}

	severity := in.Severity
	if severity == "" {
		severity = model.LevelMedium
	}
	if !severity.Valid() {
		return model.Issue{}, apperror.ValidationFailed("severity", "severity must be low, medium or high")
	}

	reporterName := reporter.Name
	if in.IsAnonymous {
		reporterName = AnonymousReporter
	}

	issue := s.store.Add(model.Issue{
		Title:        title,
		Description:  description,
		Category:     category,
		Severity:     severity,
		Status:       model.StatusOpen,
		Location:     in.Location,
		Media:        in.Media,
		ReportedBy:   reporter.ID,
		ReporterName: reporterName,
		IsAnonymous:  in.IsAnonymous,
	})

	s.logger.Info("issue reported",
		slog.String("id", issue.ID),
		slog.String("category", issue.Category),
		slog.String("severity", string(issue.Severity)),
	)
	return issue, nil
}

// Update applies an admin patch. The store stamps ResolvedAt when the
// patch resolves the issue.
func (s *IssueService) Update(id string, patch model.IssuePatch) (model.Issue, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return model.Issue{}, apperror.ValidationFailed("status", "status must be open, in_progress or resolved")
	}
	if patch.Severity != nil && !patch.Severity.Valid() {
		return model.Issue{}, apperror.ValidationFailed("severity", "severity must be low, medium or high")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Issue{}, apperror.ValidationFailed("title", "title cannot be empty")
	}

	issue, ok := s.store.Update(id, patch)
	if !ok {
		return model.Issue{}, apperror.NotFound("issue", id)
	}

	s.logger.Info("issue updated",
		slog.String("id", id),
		slog.String("status", string(issue.Status)),
	)
	return issue, nil
}

// Vote toggles viewer's vote. See store.IssueStore.Vote for the rules.
func (s *IssueService) Vote(id, viewer string, vote model.VoteType) (model.Issue, error) {
	if !vote.Valid() {
		return model.Issue{}, apperror.ValidationFailed("voteType", "vote must be up or down")
	}
	issue, ok := s.store.Vote(id, viewer, vote)
	if !ok {
		return model.Issue{}, apperror.NotFound("issue", id)
	}
	return issue, nil
}

// Comment adds a comment by author. Blank comments are rejected.
func (s *IssueService) Comment(id string, author model.Author, text string) (model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Comment{}, apperror.ValidationFailed("text", "comment cannot be empty")
	}
	if len(text) > MaxCommentLength {
		return model.Comment{}, apperror.ValidationFailed("text", "comment is too long")
	}

	comment, ok := s.store.AddComment(id, author, text)
	if !ok {
		return model.Comment{}, apperror.NotFound("issue", id)
	}

	s.logger.Debug("comment added", slog.String("issue", id), slog.String("author", author.ID))
	return comment, nil
}
