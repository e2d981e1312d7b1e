package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/clock"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/repository"
)

// TicketStorageKey is the snapshot key the ticket collection is saved under.
const TicketStorageKey = "ticket-storage"

// ticketSnapshotVersion is bumped whenever the snapshot layout changes.
const ticketSnapshotVersion = 1

// ticketSnapshot is the on-disk envelope. Only the tickets are persisted.
type ticketSnapshot struct {
	Version int            `json:"version"`
	Tickets []model.Ticket `json:"tickets"`
}

// TicketStore owns the support ticket collection and writes it through to a
// SnapshotRepository after every mutation.
//
// WRITE-THROUGH:
// A mutation builds the next collection, saves it, and only then swaps it in.
// If the save fails the error is returned and memory is left as it was, so
// the in-memory state never runs ahead of what is on disk.
type TicketStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	repo    repository.SnapshotRepository
	tickets []model.Ticket
}

// NewTicketStore creates an empty store. repo may be nil, in which case
// nothing is persisted. Call Load to rehydrate.
func NewTicketStore(c clock.Clock, repo repository.SnapshotRepository) *TicketStore {
	return &TicketStore{clock: c, repo: repo, tickets: []model.Ticket{}}
}

// Load replaces the collection with the saved snapshot. When no snapshot
// exists yet the collection is set to seed instead.
func (s *TicketStore) Load(ctx context.Context, seed []model.Ticket) error {
	tickets, err := s.readSnapshot(ctx)
	if errors.Is(err, apperror.ErrNotFound) {
		tickets = make([]model.Ticket, 0, len(seed))
		for _, t := range seed {
			tickets = append(tickets, normaliseTicket(t.Clone()))
		}
	} else if err != nil {
		return err
	}

	s.mu.Lock()
	s.tickets = tickets
	s.mu.Unlock()
	return nil
}

// All returns every ticket in collection order.
func (s *TicketStore) All() []model.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Ticket, len(s.tickets))
	for i, t := range s.tickets {
		out[i] = t.Clone()
	}
	return out
}

// ForUser returns the tickets reported by userID, in collection order.
func (s *TicketStore) ForUser(userID string) []model.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Ticket{}
	for _, t := range s.tickets {
		if t.ReportedBy == userID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Get returns the ticket with id.
func (s *TicketStore) Get(id string) (model.Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return model.Ticket{}, false
	}
	return s.tickets[i].Clone(), true
}

// Add stores a new ticket with a fresh id, CreatedAt == UpdatedAt == now and
// no responses. It is prepended to the collection.
func (s *TicketStore) Add(ctx context.Context, t model.Ticket) (model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	t = t.Clone()
	t.ID = newID()
	t.Responses = []model.TicketResponse{}
	t.CreatedAt = now
	t.UpdatedAt = now

	next := make([]model.Ticket, 0, len(s.tickets)+1)
	next = append(next, t)
	next = append(next, s.tickets...)

	if err := s.commit(ctx, next); err != nil {
		return model.Ticket{}, err
	}
	return t.Clone(), nil
}

// Update shallow-merges patch into the ticket and stamps UpdatedAt.
func (s *TicketStore) Update(ctx context.Context, id string, patch model.TicketPatch) (model.Ticket, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.Ticket{}, false, nil
	}

	t := s.tickets[i].Clone()
	patch.Apply(&t)
	t.UpdatedAt = s.clock.Now()

	if err := s.commit(ctx, s.replaced(i, t)); err != nil {
		return model.Ticket{}, true, err
	}
	return t.Clone(), true, nil
}

// AddResponse appends r (with a fresh id and CreatedAt) and bumps the
// ticket's UpdatedAt to the same instant.
func (s *TicketStore) AddResponse(ctx context.Context, id string, r model.TicketResponse) (model.TicketResponse, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return model.TicketResponse{}, false, nil
	}

	now := s.clock.Now()
	r.ID = newID()
	r.CreatedAt = now

	t := s.tickets[i].Clone()
	t.Responses = append(t.Responses, r)
	t.UpdatedAt = now

	if err := s.commit(ctx, s.replaced(i, t)); err != nil {
		return model.TicketResponse{}, true, err
	}
	return r, true, nil
}

// Close marks the ticket resolved. It is Update with only the status set.
func (s *TicketStore) Close(ctx context.Context, id string) (model.Ticket, bool, error) {
	resolved := model.StatusResolved
	return s.Update(ctx, id, model.TicketPatch{Status: &resolved})
}

// commit persists next and, on success, makes it the live collection.
// Caller holds the write lock.
func (s *TicketStore) commit(ctx context.Context, next []model.Ticket) error {
	if s.repo != nil {
		data, err := json.Marshal(ticketSnapshot{Version: ticketSnapshotVersion, Tickets: next})
		if err != nil {
			return fmt.Errorf("encoding ticket snapshot: %w", err)
		}
		if err := s.repo.SaveSnapshot(ctx, TicketStorageKey, data); err != nil {
			return fmt.Errorf("saving ticket snapshot: %w", err)
		}
	}
	s.tickets = next
	return nil
}

func (s *TicketStore) readSnapshot(ctx context.Context) ([]model.Ticket, error) {
	if s.repo == nil {
		return nil, apperror.ErrNotFound
	}

	data, err := s.repo.LoadSnapshot(ctx, TicketStorageKey)
	if err != nil {
		return nil, err
	}

	var snap ticketSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding ticket snapshot: %w", err)
	}
	if snap.Version > ticketSnapshotVersion {
		return nil, fmt.Errorf("ticket snapshot version %d is newer than supported %d", snap.Version, ticketSnapshotVersion)
	}

	tickets := make([]model.Ticket, 0, len(snap.Tickets))
	for _, t := range snap.Tickets {
		tickets = append(tickets, normaliseTicket(t))
	}
	return tickets, nil
}

func (s *TicketStore) index(id string) int {
	return slices.IndexFunc(s.tickets, func(t model.Ticket) bool { return t.ID == id })
}

func (s *TicketStore) replaced(i int, t model.Ticket) []model.Ticket {
	next := slices.Clone(s.tickets)
	next[i] = t
	return next
}

func normaliseTicket(t model.Ticket) model.Ticket {
	if t.Responses == nil {
		t.Responses = []model.TicketResponse{}
	}
	return t
}
