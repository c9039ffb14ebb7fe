package domain

import (
	"fmt"
	"strings"
	"time"
)

// TicketCategory enumerates supported support categories.
type TicketCategory string

const (
	CategoryBilling  TicketCategory = "billing"
	CategoryTech     TicketCategory = "tech"
	CategoryShipping TicketCategory = "shipping"
	CategoryOther    TicketCategory = "other"
)

// ValidCategory reports whether the value is a known category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case CategoryBilling, CategoryTech, CategoryShipping, CategoryOther:
		return true
	}
	return false
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen         TicketStatus = "open"
	TicketStatusTriaged      TicketStatus = "triaged"
	TicketStatusWaitingHuman TicketStatus = "waiting_human"
	TicketStatusAssigned     TicketStatus = "assigned"
	TicketStatusResolved     TicketStatus = "resolved"
	TicketStatusClosed       TicketStatus = "closed"
)

// statusRank orders lifecycle states; transitions only move forward.
var statusRank = map[TicketStatus]int{
	TicketStatusOpen:         0,
	TicketStatusTriaged:      1,
	TicketStatusWaitingHuman: 2,
	TicketStatusAssigned:     3,
	TicketStatusResolved:     4,
	TicketStatusClosed:       5,
}

// ValidStatus reports whether the value is a known status.
func ValidStatus(s TicketStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether a status change is a forward move.
func CanTransition(current, next TicketStatus) bool {
	cur, okCur := statusRank[current]
	nxt, okNext := statusRank[next]
	return okCur && okNext && nxt > cur
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

const (
	maxTicketTitleLen       = 200
	maxTicketDescriptionLen = 2000
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Category     TicketCategory
	Status       TicketStatus
	Priority     TicketPriority
	CreatedBy    string
	AssigneeID   *string
	SuggestionID *string
	AgentReply   *string
	TraceID      string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	RepliedAt    *time.Time
	ResolvedAt   *time.Time
}

// NewTicket validates input and builds a ticket in its initial state.
func NewTicket(title, description string, category TicketCategory, createdBy, traceID string) (*Ticket, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, fmt.Errorf("ticket title is required")
	}
	if len(title) > maxTicketTitleLen {
		return nil, fmt.Errorf("ticket title exceeds %d characters", maxTicketTitleLen)
	}
	if description == "" {
		return nil, fmt.Errorf("ticket description is required")
	}
	if len(description) > maxTicketDescriptionLen {
		return nil, fmt.Errorf("ticket description exceeds %d characters", maxTicketDescriptionLen)
	}
	if category == "" {
		category = CategoryOther
	}
	if !ValidCategory(category) {
		return nil, fmt.Errorf("unknown ticket category %q", category)
	}
	if createdBy == "" {
		return nil, fmt.Errorf("ticket creator is required")
	}
	if traceID == "" {
		return nil, fmt.Errorf("ticket trace id is required")
	}
	return &Ticket{
		Title:       title,
		Description: description,
		Category:    category,
		Status:      TicketStatusOpen,
		Priority:    TicketPriorityMedium,
		CreatedBy:   createdBy,
		TraceID:     traceID,
		// Tags binds to a NOT NULL array column; never leave it nil.
		Tags: []string{},
	}, nil
}
