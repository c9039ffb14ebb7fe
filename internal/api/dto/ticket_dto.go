package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// CreateTicketRequest payload for POST /tickets.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Tags        []string              `json:"tags"`
}

// ReplyRequest payload for POST /tickets/:id/reply.
type ReplyRequest struct {
	Reply  string              `json:"reply"`
	Status domain.TicketStatus `json:"status"`
}

// AssignRequest payload for POST /tickets/:id/assign.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// StatusRequest payload for POST /tickets/:id/status.
type StatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// FeedbackRequest payload for POST /tickets/:id/suggestion/feedback.
type FeedbackRequest struct {
	Helpful *bool  `json:"helpful"`
	Comment string `json:"comment"`
}

// TicketSummary is the listing representation of a ticket.
type TicketSummary struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	Category   domain.TicketCategory `json:"category"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	CreatedBy  string                `json:"created_by"`
	AssigneeID *string               `json:"assignee_id,omitempty"`
	Tags       []string              `json:"tags,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TicketDetailResponse is the full ticket representation.
type TicketDetailResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     domain.TicketCategory `json:"category"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedBy    string                `json:"created_by"`
	AssigneeID   *string               `json:"assignee_id,omitempty"`
	SuggestionID *string               `json:"suggestion_id,omitempty"`
	AgentReply   *string               `json:"agent_reply,omitempty"`
	TraceID      string                `json:"trace_id"`
	Tags         []string              `json:"tags,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	RepliedAt    *time.Time            `json:"replied_at,omitempty"`
	ResolvedAt   *time.Time            `json:"resolved_at,omitempty"`
}

// SuggestionResponse is the triage suggestion representation.
type SuggestionResponse struct {
	ID                string                `json:"id"`
	TicketID          string                `json:"ticket_id"`
	PredictedCategory domain.TicketCategory `json:"predicted_category"`
	ArticleIDs        []string              `json:"article_ids"`
	DraftReply        string                `json:"draft_reply"`
	Citations         []string              `json:"citations"`
	Confidence        float64               `json:"confidence"`
	AutoClosed        bool                  `json:"auto_closed"`
	ModelInfo         ModelInfoResponse     `json:"model_info"`
	MatchReasons      []string              `json:"match_reasons"`
	Feedback          *FeedbackResponse     `json:"feedback,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// ModelInfoResponse carries suggestion provenance metadata.
type ModelInfoResponse struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	PromptVersion string `json:"prompt_version"`
	LatencyMs     int64  `json:"latency_ms"`
}

// FeedbackResponse is the feedback sub-record representation.
type FeedbackResponse struct {
	Helpful     *bool     `json:"helpful"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedBy string    `json:"submitted_by"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AuditEntryResponse is one audit timeline item.
type AuditEntryResponse struct {
	ID        string            `json:"id"`
	TicketID  string            `json:"ticket_id"`
	TraceID   string            `json:"trace_id"`
	Actor     domain.AuditActor `json:"actor"`
	Action    domain.AuditAction `json:"action"`
	Meta      map[string]any    `json:"meta"`
	Timestamp time.Time         `json:"timestamp"`
}
