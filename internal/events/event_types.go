package events

import (
	"time"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketTriaged       EventType = "ticket_triaged"
	EventTicketAutoClosed    EventType = "ticket_auto_closed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketReplySent     EventType = "ticket_reply_sent"
	EventSuggestionFeedback  EventType = "suggestion_feedback"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	TicketID  string            `json:"ticket_id"`
	Actor     domain.AuditActor `json:"actor"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   interface{}       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Category domain.TicketCategory `json:"category"`
	Title    string                `json:"title"`
	TraceID  string                `json:"trace_id"`
}

// TicketTriagedPayload payload.
type TicketTriagedPayload struct {
	SuggestionID      string                `json:"suggestion_id"`
	PredictedCategory domain.TicketCategory `json:"predicted_category"`
	Confidence        float64               `json:"confidence"`
}

// TicketAutoClosedPayload payload.
type TicketAutoClosedPayload struct {
	SuggestionID string  `json:"suggestion_id"`
	Confidence   float64 `json:"confidence"`
	Threshold    float64 `json:"threshold"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
	AssignedBy string `json:"assigned_by"`
}

// TicketReplySentPayload payload.
type TicketReplySentPayload struct {
	AgentID     string              `json:"agent_id"`
	Status      domain.TicketStatus `json:"status"`
	ReplyLength int                 `json:"reply_length"`
}

// SuggestionFeedbackPayload payload.
type SuggestionFeedbackPayload struct {
	SuggestionID string `json:"suggestion_id"`
	Helpful      *bool  `json:"helpful,omitempty"`
	SubmittedBy  string `json:"submitted_by"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}
