package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/events"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util"
)

// TriageEnqueuer submits a ticket for background triage. The caller
// receives no handle: the only contract is "ticket persisted, triage
// enqueued".
type TriageEnqueuer interface {
	Enqueue(ticketID string)
}

// Caller identifies who is invoking a service operation.
type Caller struct {
	ID   string
	Role domain.Role
}

// IsStaff reports whether the caller may act on any ticket.
func (c Caller) IsStaff() bool {
	return c.Role == domain.RoleAgent || c.Role == domain.RoleAdmin
}

// TicketService coordinates ticket workflows around the triage pipeline.
type TicketService struct {
	tickets     repository.TicketRepository
	suggestions repository.SuggestionRepository
	audits      repository.AuditLogRepository
	dispatcher  events.Dispatcher
	triage      TriageEnqueuer
	quota       TicketQuota
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	SuggestionRepo repository.SuggestionRepository
	AuditRepo      repository.AuditLogRepository
	Dispatcher     events.Dispatcher
	Triage         TriageEnqueuer
	Quota          TicketQuota
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Tags        []string
}

// TicketFilter describes listing filters.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Categories []domain.TicketCategory
	OnlyMine   bool
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		suggestions: deps.SuggestionRepo,
		audits:      deps.AuditRepo,
		dispatcher:  deps.Dispatcher,
		triage:      deps.Triage,
		quota:       deps.Quota,
	}
}

// CreateTicket persists a ticket, records TICKET_CREATED and enqueues
// triage. It returns as soon as the ticket and its audit entry are
// stored; triage runs detached.
func (s *TicketService) CreateTicket(ctx context.Context, caller Caller, input TicketCreateInput) (*domain.Ticket, error) {
	if s.quota != nil {
		allowed, err := s.quota.Allow(ctx, caller.ID)
		if err == nil && !allowed {
			return nil, apperrors.NewTooManyRequests("ticket quota exceeded")
		}
		// quota errors fail open: a broken cache never blocks filing
	}

	ticket, err := domain.NewTicket(input.Title, input.Description, input.Category, caller.ID, uuid.NewString())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if len(input.Tags) > 0 {
		ticket.Tags = input.Tags
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.writeAudit(ctx, ticket, caller, domain.ActionTicketCreated, map[string]any{
		"user_id":  caller.ID,
		"category": ticket.Category,
		"title":    preview(ticket.Title, 100),
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    domain.AuditActorForRole(caller.Role),
		Payload: events.TicketCreatedPayload{
			Category: ticket.Category,
			Title:    ticket.Title,
			TraceID:  ticket.TraceID,
		},
	})

	if s.triage != nil {
		s.triage.Enqueue(ticket.ID)
	}
	return ticket, nil
}

// ListTickets returns tickets visible to the caller. End users only
// ever see their own.
func (s *TicketService) ListTickets(ctx context.Context, caller Caller, filter TicketFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:   filter.Statuses,
		Categories: filter.Categories,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	if !caller.IsStaff() || filter.OnlyMine {
		creator := caller.ID
		repoFilter.CreatedBy = &creator
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicket fetches a ticket ensuring access.
func (s *TicketService) GetTicket(ctx context.Context, caller Caller, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff() && ticket.CreatedBy != caller.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// GetSuggestion returns the triage suggestion for a ticket.
func (s *TicketService) GetSuggestion(ctx context.Context, caller Caller, ticketID string) (*domain.Suggestion, error) {
	if _, err := s.GetTicket(ctx, caller, ticketID); err != nil {
		return nil, err
	}
	suggestion, err := s.suggestions.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("suggestion", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return suggestion, nil
}

// SubmitFeedback attaches human feedback to a ticket's suggestion.
// Resubmission overwrites the previous feedback in place; the
// suggestion row is never duplicated.
func (s *TicketService) SubmitFeedback(ctx context.Context, caller Caller, ticketID string, helpful *bool, comment string) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !caller.IsStaff() && ticket.CreatedBy != caller.ID {
		return apperrors.NewForbidden("access denied")
	}
	suggestion, err := s.suggestions.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("suggestion", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}

	feedback, err := domain.NewSuggestionFeedback(helpful, comment, caller.ID, time.Now())
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.suggestions.SaveFeedback(ctx, suggestion.ID, feedback); err != nil {
		return apperrors.MapError(err)
	}

	if err := s.writeAudit(ctx, ticket, caller, domain.ActionFeedbackSubmitted, map[string]any{
		"helpful":  helpful,
		"feedback": preview(feedback.Comment, 200),
		"user_id":  caller.ID,
	}); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventSuggestionFeedback,
		TicketID: ticket.ID,
		Actor:    domain.AuditActorForRole(caller.Role),
		Payload: events.SuggestionFeedbackPayload{
			SuggestionID: suggestion.ID,
			Helpful:      helpful,
			SubmittedBy:  caller.ID,
		},
	})
	return nil
}

// Reply records an agent reply, assigns the agent and moves the ticket
// forward (resolved unless told otherwise).
func (s *TicketService) Reply(ctx context.Context, caller Caller, ticketID, reply string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !caller.IsStaff() {
		return nil, apperrors.NewForbidden("staff required")
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, apperrors.NewValidationError("reply body required", nil)
	}
	if status == "" {
		status = domain.TicketStatusResolved
	}
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, status) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   status,
		})
	}

	now := time.Now()
	ticket.Status = status
	ticket.AgentReply = &reply
	ticket.RepliedAt = &now
	agentID := caller.ID
	ticket.AssigneeID = &agentID
	if status == domain.TicketStatusResolved || status == domain.TicketStatusClosed {
		ticket.ResolvedAt = &now
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.writeAudit(ctx, ticket, caller, domain.ActionReplySent, map[string]any{
		"agent_id":     caller.ID,
		"status":       status,
		"reply_length": len(reply),
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketReplySent,
		TicketID: ticket.ID,
		Actor:    domain.AuditActorForRole(caller.Role),
		Payload: events.TicketReplySentPayload{
			AgentID:     caller.ID,
			Status:      status,
			ReplyLength: len(reply),
		},
	})
	return ticket, nil
}

// Assign hands a ticket to a specific agent.
func (s *TicketService) Assign(ctx context.Context, caller Caller, ticketID, assigneeID string) (*domain.Ticket, error) {
	if !caller.IsStaff() {
		return nil, apperrors.NewForbidden("staff required")
	}
	if assigneeID == "" {
		return nil, apperrors.NewValidationError("assignee required", nil)
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusAssigned) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   domain.TicketStatusAssigned,
		})
	}
	ticket.AssigneeID = &assigneeID
	ticket.Status = domain.TicketStatusAssigned
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.writeAudit(ctx, ticket, caller, domain.ActionTicketAssigned, map[string]any{
		"assigned_by": caller.ID,
		"assigned_to": assigneeID,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    domain.AuditActorForRole(caller.Role),
		Payload: events.TicketAssignedPayload{
			AssigneeID: assigneeID,
			AssignedBy: caller.ID,
		},
	})
	return ticket, nil
}

// UpdateStatus moves a ticket forward in its lifecycle.
func (s *TicketService) UpdateStatus(ctx context.Context, caller Caller, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !caller.IsStaff() {
		return nil, apperrors.NewForbidden("staff required")
	}
	if !domain.ValidStatus(status) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, status) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   status,
		})
	}
	oldStatus := ticket.Status
	ticket.Status = status
	if status == domain.TicketStatusResolved || status == domain.TicketStatusClosed {
		now := time.Now()
		ticket.ResolvedAt = &now
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.writeAudit(ctx, ticket, caller, domain.ActionStatusChanged, map[string]any{
		"old_status": oldStatus,
		"new_status": status,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    domain.AuditActorForRole(caller.Role),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: status,
		},
	})
	return ticket, nil
}

// ListAudit returns a ticket's audit timeline in write order.
func (s *TicketService) ListAudit(ctx context.Context, caller Caller, ticketID string) ([]domain.AuditEntry, error) {
	if _, err := s.GetTicket(ctx, caller, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.audits.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) writeAudit(ctx context.Context, ticket *domain.Ticket, caller Caller, action domain.AuditAction, meta map[string]any) error {
	entry, err := domain.NewAuditEntry(ticket.ID, ticket.TraceID, domain.AuditActorForRole(caller.Role), action, meta)
	if err != nil {
		return err
	}
	return s.audits.Create(ctx, entry)
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
