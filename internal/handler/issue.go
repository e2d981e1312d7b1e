package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/service"
	"github.com/sakif/civic-sync/internal/store"
)

// IssueHandler serves the issue list, the report form, votes and comments.
type IssueHandler struct {
	issues *service.IssueService
	logger *slog.Logger
}

// NewIssueHandler creates an IssueHandler.
func NewIssueHandler(issues *service.IssueService, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{issues: issues, logger: logger}
}

// HandleList returns the filtered, sorted issue list.
//
// HTTP: GET /api/issues?category=Potholes&status=open&severity=high&sortBy=upvotes
//
// Query parameters override the caller's saved filters for this request
// only. Anonymous callers start from the defaults.
func (h *IssueHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.issues.List(viewer(r), filterQuery(r)))
}

// HandleGet returns one issue.
//
// HTTP: GET /api/issues/{id}
func (h *IssueHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	issue, err := h.issues.Get(viewer(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// HandleCreate reports a new issue as the caller.
//
// HTTP: POST /api/issues
// REQUEST BODY: {"title": "...", "description": "...", "category": "Potholes",
// "severity": "high", "location": {"lat": 23.2, "lng": 77.4, "address": "..."}}
func (h *IssueHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var in service.NewIssue
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	issue, err := h.issues.Create(id.Author(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// HandleUpdate applies an admin patch (status, severity, ...).
//
// HTTP: PATCH /api/issues/{id}
// Auth: Admin
func (h *IssueHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.IssuePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	issue, err := h.issues.Update(r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// HandleGetFilters returns the caller's saved list filters.
//
// HTTP: GET /api/issues/filters
func (h *IssueHandler) HandleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.issues.Filters(viewer(r)))
}

// HandleSetFilters merges the body into the caller's saved filters.
//
// HTTP: PATCH /api/issues/filters
// REQUEST BODY: {"status": "open"}
func (h *IssueHandler) HandleSetFilters(w http.ResponseWriter, r *http.Request) {
	var patch store.FilterPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.issues.SetFilters(viewer(r), patch))
}

// VoteRequest is the body of HandleVote.
type VoteRequest struct {
	VoteType model.VoteType `json:"voteType"`
}

// HandleVote toggles the caller's vote. Sending the same vote twice takes
// it back.
//
// HTTP: POST /api/issues/{id}/vote
// REQUEST BODY: {"voteType": "up"}
func (h *IssueHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req VoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	issue, err := h.issues.Vote(r.PathValue("id"), id.UserID, req.VoteType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// CommentRequest is the body of HandleComment.
type CommentRequest struct {
	Text string `json:"text"`
}

// HandleComment appends a comment written by the caller.
//
// HTTP: POST /api/issues/{id}/comments
func (h *IssueHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.issues.Comment(r.PathValue("id"), id.Author(), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// filterQuery turns the list query string into a one-off filter override.
func filterQuery(r *http.Request) store.FilterPatch {
	q := r.URL.Query()
	var p store.FilterPatch
	if q.Has("category") {
		v := q.Get("category")
		p.Category = &v
	}
	if q.Has("status") {
		v := q.Get("status")
		p.Status = &v
	}
	if q.Has("severity") {
		v := q.Get("severity")
		p.Severity = &v
	}
	if q.Has("sortBy") {
		v := store.SortBy(q.Get("sortBy"))
		p.SortBy = &v
	}
	return p
}
