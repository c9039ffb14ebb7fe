package domain

import (
	"fmt"
	"time"
)

// AuditActor identifies who performed an audited action.
type AuditActor string

const (
	ActorSystem AuditActor = "system"
	ActorAgent  AuditActor = "agent"
	ActorUser   AuditActor = "user"
	ActorAdmin  AuditActor = "admin"
)

// ValidAuditActor reports whether the value is a known actor.
func ValidAuditActor(a AuditActor) bool {
	switch a {
	case ActorSystem, ActorAgent, ActorUser, ActorAdmin:
		return true
	}
	return false
}

// AuditAction enumerates the closed audit vocabulary.
type AuditAction string

const (
	ActionTicketCreated      AuditAction = "TICKET_CREATED"
	ActionAgentTriageStarted AuditAction = "AGENT_TRIAGE_STARTED"
	ActionAgentClassified    AuditAction = "AGENT_CLASSIFIED"
	ActionKBRetrieved        AuditAction = "KB_RETRIEVED"
	ActionDraftGenerated     AuditAction = "DRAFT_GENERATED"
	ActionAutoClosed         AuditAction = "AUTO_CLOSED"
	ActionAssignedToHuman    AuditAction = "ASSIGNED_TO_HUMAN"
	ActionTicketAssigned     AuditAction = "TICKET_ASSIGNED"
	ActionReplySent          AuditAction = "REPLY_SENT"
	ActionStatusChanged      AuditAction = "STATUS_CHANGED"
	ActionFeedbackSubmitted  AuditAction = "FEEDBACK_SUBMITTED"
	ActionTriageError        AuditAction = "TRIAGE_ERROR"
)

var knownActions = map[AuditAction]struct{}{
	ActionTicketCreated:      {},
	ActionAgentTriageStarted: {},
	ActionAgentClassified:    {},
	ActionKBRetrieved:        {},
	ActionDraftGenerated:     {},
	ActionAutoClosed:         {},
	ActionAssignedToHuman:    {},
	ActionTicketAssigned:     {},
	ActionReplySent:          {},
	ActionStatusChanged:      {},
	ActionFeedbackSubmitted:  {},
	ActionTriageError:        {},
}

// ValidAuditAction reports whether the value is in the closed vocabulary.
func ValidAuditAction(a AuditAction) bool {
	_, ok := knownActions[a]
	return ok
}

// AuditEntry is an append-only record of one audited action. Entries
// are never mutated or deleted; per-ticket ordering is by timestamp.
type AuditEntry struct {
	ID        string
	TicketID  string
	TraceID   string
	Actor     AuditActor
	Action    AuditAction
	Meta      map[string]any
	Timestamp time.Time
}

// NewAuditEntry validates and builds an audit entry.
func NewAuditEntry(ticketID, traceID string, actor AuditActor, action AuditAction, meta map[string]any) (*AuditEntry, error) {
	if ticketID == "" {
		return nil, fmt.Errorf("audit ticket id is required")
	}
	if traceID == "" {
		return nil, fmt.Errorf("audit trace id is required")
	}
	if !ValidAuditActor(actor) {
		return nil, fmt.Errorf("unknown audit actor %q", actor)
	}
	if !ValidAuditAction(action) {
		return nil, fmt.Errorf("unknown audit action %q", action)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	return &AuditEntry{
		TicketID:  ticketID,
		TraceID:   traceID,
		Actor:     actor,
		Action:    action,
		Meta:      meta,
		Timestamp: time.Now(),
	}, nil
}
