package store

import (
	"slices"
	"sync"

	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
)

// IssueStore owns the issue collection, each viewer's filter selection and
// the (issue, viewer) vote relation.
type IssueStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	issues  []model.Issue
	votes   map[string]map[string]model.VoteType // issue id -> viewer id -> vote
	filters map[string]Filters                   // viewer id -> selection
}

// NewIssueStore creates a store pre-populated with seed (copied).
func NewIssueStore(c clock.Clock, seed []model.Issue) *IssueStore {
	issues := make([]model.Issue, 0, len(seed))
	for _, issue := range seed {
		issue = issue.Clone()
		issue.UserVote = model.VoteNone
		if issue.Comments == nil {
			issue.Comments = []model.Comment{}
		}
		issues = append(issues, issue)
	}
	return &IssueStore{
		clock:   c,
		issues:  issues,
		votes:   make(map[string]map[string]model.VoteType),
		filters: make(map[string]Filters),
	}
}

// List returns every issue in collection order (newest insertions first),
// with UserVote projected for viewer.
func (s *IssueStore) List(viewer string) []model.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Issue, len(s.issues))
	for i, issue := range s.issues {
		out[i] = s.project(issue, viewer)
	}
	return out
}

// Get returns the issue with id as seen by viewer.
func (s *IssueStore) Get(id, viewer string) (model.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return model.Issue{}, false
	}
	return s.project(s.issues[i], viewer), true
}

// Filters returns viewer's current selection.
func (s *IssueStore) Filters(viewer string) Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if f, ok := s.filters[viewer]; ok {
		return f
	}
	return DefaultFilters()
}

// SetFilters shallow-merges patch into viewer's selection and returns the result.
func (s *IssueStore) SetFilters(viewer string, patch FilterPatch) Filters {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.filters[viewer]
	if !ok {
		f = DefaultFilters()
	}
	f = f.Merge(patch)
	s.filters[viewer] = f
	return f
}

// Add stores a new issue. The id, counters, comments and timestamps supplied
// by the caller are overwritten. The issue is prepended to the collection.
func (s *IssueStore) Add(issue model.Issue) model.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	issue = issue.Clone()
	issue.ID = newID()
	issue.Upvotes = 0
	issue.Downvotes = 0
	issue.UserVote = model.VoteNone
	issue.Comments = []model.Comment{}
	issue.CreatedAt = now
	issue.UpdatedAt = now

	next := make([]model.Issue, 0, len(s.issues)+1)
	next = append(next, issue)
	next = append(next, s.issues...)
	s.issues = next

	return issue.Clone()
}

// Update shallow-merges patch into the issue and stamps UpdatedAt. A patch
// that moves the issue into resolved also stamps ResolvedAt, unless it
// carries its own; reopening keeps the earlier ResolvedAt.
func (s *IssueStore) Update(id string, patch model.IssuePatch) (model.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Issue{}, false
	}

	now := s.clock.Now()
	issue := s.issues[i].Clone()
	resolving := patch.Status != nil && *patch.Status == model.StatusResolved &&
		issue.Status != model.StatusResolved && patch.ResolvedAt == nil
	patch.Apply(&issue)
	if resolving {
		issue.ResolvedAt = &now
	}
	issue.UpdatedAt = now
	s.replace(i, issue)

	return issue.Clone(), true
}

// Vote applies viewer's vote as a tri-state toggle:
//
//   - same vote as before → the vote is withdrawn and its counter decremented
//   - otherwise          → the previous vote (if any) is withdrawn and the new
//     one counted
//
// Counters never drop below zero. A vote other than up/down changes nothing.
func (s *IssueStore) Vote(id, viewer string, vote model.VoteType) (model.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Issue{}, false
	}
	if !vote.Valid() {
		return s.project(s.issues[i], viewer), true
	}

	issue := s.issues[i].Clone()
	current := s.votes[id][viewer]

	switch current {
	case model.VoteUp:
		issue.Upvotes = max(0, issue.Upvotes-1)
	case model.VoteDown:
		issue.Downvotes = max(0, issue.Downvotes-1)
	}

	next := vote
	if current == vote {
		next = model.VoteNone
	} else if vote == model.VoteUp {
		issue.Upvotes++
	} else {
		issue.Downvotes++
	}

	s.setVote(id, viewer, next)
	s.replace(i, issue)

	return s.project(issue, viewer), true
}

// AddComment appends a comment written by author. Comments are never edited
// or removed. The issue's UpdatedAt is left alone.
func (s *IssueStore) AddComment(id string, author model.Author, text string) (model.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Comment{}, false
	}

	comment := model.Comment{
		ID:         newID(),
		Text:       text,
		Author:     author.ID,
		AuthorName: author.Name,
		CreatedAt:  s.clock.Now(),
	}

	issue := s.issues[i].Clone()
	issue.Comments = append(issue.Comments, comment)
	s.replace(i, issue)

	return comment, true
}

// index returns the position of id, or -1. Caller holds the lock.
func (s *IssueStore) index(id string) int {
	return slices.IndexFunc(s.issues, func(issue model.Issue) bool { return issue.ID == id })
}

// replace swaps in a new collection with position i set to issue.
func (s *IssueStore) replace(i int, issue model.Issue) {
	next := slices.Clone(s.issues)
	next[i] = issue
	s.issues = next
}

func (s *IssueStore) setVote(id, viewer string, vote model.VoteType) {
	byViewer := s.votes[id]
	if vote == model.VoteNone {
		delete(byViewer, viewer)
		if len(byViewer) == 0 {
			delete(s.votes, id)
		}
		return
	}
	if byViewer == nil {
		byViewer = make(map[string]model.VoteType)
		s.votes[id] = byViewer
	}
	byViewer[viewer] = vote
}

// project returns a copy of issue with the viewer's vote filled in.
func (s *IssueStore) project(issue model.Issue, viewer string) model.Issue {
	out := issue.Clone()
	out.UserVote = s.votes[issue.ID][viewer]
	return out
}
