package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketDefaults(t *testing.T) {
	ticket, err := NewTicket("  Printer on fire  ", "It is smoking.", "", "user-1", "trace-1")
	require.NoError(t, err)

	assert.Equal(t, "Printer on fire", ticket.Title)
	assert.Equal(t, CategoryOther, ticket.Category)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Equal(t, TicketPriorityMedium, ticket.Priority)
	assert.NotNil(t, ticket.Tags)
}

func TestNewTicketValidation(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		description string
		category    TicketCategory
		createdBy   string
		traceID     string
	}{
		{"empty title", "", "desc", CategoryTech, "u", "t"},
		{"blank title", "   ", "desc", CategoryTech, "u", "t"},
		{"title too long", strings.Repeat("x", 201), "desc", CategoryTech, "u", "t"},
		{"empty description", "title", "", CategoryTech, "u", "t"},
		{"description too long", "title", strings.Repeat("x", 2001), CategoryTech, "u", "t"},
		{"unknown category", "title", "desc", "gardening", "u", "t"},
		{"missing creator", "title", "desc", CategoryTech, "", "t"},
		{"missing trace", "title", "desc", CategoryTech, "u", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTicket(tc.title, tc.description, tc.category, tc.createdBy, tc.traceID)
			assert.Error(t, err)
		})
	}
}

func TestCanTransitionForwardOnly(t *testing.T) {
	assert.True(t, CanTransition(TicketStatusOpen, TicketStatusTriaged))
	assert.True(t, CanTransition(TicketStatusTriaged, TicketStatusResolved))
	assert.True(t, CanTransition(TicketStatusWaitingHuman, TicketStatusAssigned))
	assert.True(t, CanTransition(TicketStatusResolved, TicketStatusClosed))

	assert.False(t, CanTransition(TicketStatusResolved, TicketStatusOpen))
	assert.False(t, CanTransition(TicketStatusClosed, TicketStatusResolved))
	assert.False(t, CanTransition(TicketStatusOpen, TicketStatusOpen))
	assert.False(t, CanTransition("bogus", TicketStatusOpen))
	assert.False(t, CanTransition(TicketStatusOpen, "bogus"))
}
