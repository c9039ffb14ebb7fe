package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxDraftReplyLen      = 2000
	maxFeedbackCommentLen = 500
)

// MaxDraftReplyLen is the upper bound on a drafted reply.
const MaxDraftReplyLen = maxDraftReplyLen

// ModelInfo carries provenance metadata for a suggestion. It is
// informational only and never feeds decisioning.
type ModelInfo struct {
	Provider      string
	Model         string
	PromptVersion string
	LatencyMs     int64
}

// SuggestionFeedback is the optional human review attached to a suggestion.
type SuggestionFeedback struct {
	Helpful     *bool
	Comment     string
	SubmittedBy string
	SubmittedAt time.Time
}

// NewSuggestionFeedback validates feedback input.
func NewSuggestionFeedback(helpful *bool, comment, submittedBy string, at time.Time) (*SuggestionFeedback, error) {
	comment = strings.TrimSpace(comment)
	if len(comment) > maxFeedbackCommentLen {
		return nil, fmt.Errorf("feedback comment exceeds %d characters", maxFeedbackCommentLen)
	}
	if submittedBy == "" {
		return nil, fmt.Errorf("feedback submitter is required")
	}
	return &SuggestionFeedback{
		Helpful:     helpful,
		Comment:     comment,
		SubmittedBy: submittedBy,
		SubmittedAt: at,
	}, nil
}

// Suggestion is the outcome of one triage run for a ticket. Feedback is
// the only field mutated after creation.
type Suggestion struct {
	ID                string
	TicketID          string
	PredictedCategory TicketCategory
	ArticleIDs        []string
	DraftReply        string
	Citations         []string
	Confidence        float64
	AutoClosed        bool
	ModelInfo         ModelInfo
	MatchReasons      []string
	Feedback          *SuggestionFeedback
	CreatedAt         time.Time
}

// NewSuggestion validates and builds a suggestion record.
func NewSuggestion(ticketID string, category TicketCategory, articleIDs []string, draft string, citations []string, confidence float64, info ModelInfo, reasons []string) (*Suggestion, error) {
	if ticketID == "" {
		return nil, fmt.Errorf("suggestion ticket id is required")
	}
	if !ValidCategory(category) {
		return nil, fmt.Errorf("unknown predicted category %q", category)
	}
	if draft == "" {
		return nil, fmt.Errorf("draft reply is required")
	}
	if len(draft) > maxDraftReplyLen {
		return nil, fmt.Errorf("draft reply exceeds %d characters", maxDraftReplyLen)
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("confidence %.2f outside [0,1]", confidence)
	}
	// The array fields bind to NOT NULL columns; an empty-corpus or
	// no-match run must persist as empty arrays, not NULL.
	if articleIDs == nil {
		articleIDs = []string{}
	}
	if citations == nil {
		citations = []string{}
	}
	if reasons == nil {
		reasons = []string{}
	}
	return &Suggestion{
		TicketID:          ticketID,
		PredictedCategory: category,
		ArticleIDs:        articleIDs,
		DraftReply:        draft,
		Citations:         citations,
		Confidence:        confidence,
		ModelInfo:         info,
		MatchReasons:      reasons,
	}, nil
}
