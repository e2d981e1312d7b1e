package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/civic-sync/internal/apperror"
	"github.com/sakif/civic-sync/internal/auth"
	"github.com/sakif/civic-sync/internal/model"
	"github.com/sakif/civic-sync/internal/store"
)

// MaxResponseLength bounds a single ticket reply.
const MaxResponseLength = 5000

// NewTicket is the input for TicketService.Create.
type NewTicket struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Priority    model.Level `json:"priority"`
}

// TicketService handles the support desk. Citizens see and answer only
// their own tickets; admins see and answer all of them.
type TicketService struct {
	store  *store.TicketStore
	logger *slog.Logger
}

// NewTicketService creates a TicketService.
func NewTicketService(s *store.TicketStore, logger *slog.Logger) *TicketService {
	return &TicketService{store: s, logger: logger}
}

// List returns every ticket for admins and the caller's own otherwise.
func (s *TicketService) List(who auth.Identity) []model.Ticket {
	if who.IsAdmin() {
		return s.store.All()
	}
	return s.store.ForUser(who.UserID)
}

// Get returns a ticket the caller is allowed to see. Other people's tickets
// are reported as not found.
func (s *TicketService) Get(who auth.Identity, id string) (model.Ticket, error) {
	t, ok := s.store.Get(id)
	if !ok || (!who.IsAdmin() && t.ReportedBy != who.UserID) {
		return model.Ticket{}, apperror.NotFound("ticket", id)
	}
	return t, nil
}

// Create files a ticket for reporter. Tickets start open with medium
// priority unless another priority is given.
func (s *TicketService) Create(ctx context.Context, reporter auth.Identity, in NewTicket) (model.Ticket, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return model.Ticket{}, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return model.Ticket{}, apperror.ValidationFailed("title", "title is too long")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return model.Ticket{}, apperror.ValidationFailed("description", "description is required")
	}
	if len(description) > MaxDescriptionLength {
		return model.Ticket{}, apperror.ValidationFailed("description", "description is too long")
	}

	priority := in.Priority
	if priority == "" {
		priority = model.LevelMedium
	}
	if !priority.Valid() {
		return model.Ticket{}, apperror.ValidationFailed("priority", "priority must be low, medium or high")
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "General Inquiry"
	}

	t, err := s.store.Add(ctx, model.Ticket{
		Title:        title,
		Description:  description,
		Category:     category,
		Status:       model.StatusOpen,
		Priority:     priority,
		ReportedBy:   reporter.UserID,
		ReporterName: reporter.Name,
	})
	if err != nil {
		s.logger.Error("failed to create ticket",
			slog.String("reporter", reporter.UserID),
			slog.String("error", err.Error()),
		)
		return model.Ticket{}, fmt.Errorf("creating ticket: %w", err)
	}

	s.logger.Info("ticket created",
		slog.String("id", t.ID),
		slog.String("priority", string(t.Priority)),
	)
	return t, nil
}

// Respond appends a reply from who. IsAdmin on the reply reflects the
// caller's role and is never taken from input.
func (s *TicketService) Respond(ctx context.Context, who auth.Identity, id, message string) (model.TicketResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.TicketResponse{}, apperror.ValidationFailed("message", "response cannot be empty")
	}
	if len(message) > MaxResponseLength {
		return model.TicketResponse{}, apperror.ValidationFailed("message", "response is too long")
	}
	if _, err := s.Get(who, id); err != nil {
		return model.TicketResponse{}, err
	}

	r, ok, err := s.store.AddResponse(ctx, id, model.TicketResponse{
		Message:    message,
		Author:     who.UserID,
		AuthorName: who.Name,
		IsAdmin:    who.IsAdmin(),
	})
	if !ok {
		return model.TicketResponse{}, apperror.NotFound("ticket", id)
	}
	if err != nil {
		s.logger.Error("failed to save ticket response",
			slog.String("ticket", id),
			slog.String("error", err.Error()),
		)
		return model.TicketResponse{}, fmt.Errorf("adding response: %w", err)
	}

	s.logger.Info("ticket response added", slog.String("ticket", id), slog.Bool("admin", r.IsAdmin))
	return r, nil
}

// Update applies an admin patch (status, priority, assignment, text).
func (s *TicketService) Update(ctx context.Context, id string, patch model.TicketPatch) (model.Ticket, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return model.Ticket{}, apperror.ValidationFailed("status", "status must be open, in_progress or resolved")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return model.Ticket{}, apperror.ValidationFailed("priority", "priority must be low, medium or high")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return model.Ticket{}, apperror.ValidationFailed("title", "title cannot be empty")
	}

	t, ok, err := s.store.Update(ctx, id, patch)
	if !ok {
		return model.Ticket{}, apperror.NotFound("ticket", id)
	}
	if err != nil {
		return model.Ticket{}, fmt.Errorf("updating ticket: %w", err)
	}

	s.logger.Info("ticket updated", slog.String("id", id), slog.String("status", string(t.Status)))
	return t, nil
}

// Close resolves a ticket.
func (s *TicketService) Close(ctx context.Context, id string) (model.Ticket, error) {
	t, ok, err := s.store.Close(ctx, id)
	if !ok {
		return model.Ticket{}, apperror.NotFound("ticket", id)
	}
	if err != nil {
		return model.Ticket{}, fmt.Errorf("closing ticket: %w", err)
	}

	s.logger.Info("ticket closed", slog.String("id", id))
	return t, nil
}
