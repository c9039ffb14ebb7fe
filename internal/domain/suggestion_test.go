package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuggestionValidation(t *testing.T) {
	_, err := NewSuggestion("", CategoryBilling, nil, "draft", nil, 0.5, ModelInfo{}, nil)
	assert.Error(t, err)

	_, err = NewSuggestion("ticket-1", "gardening", nil, "draft", nil, 0.5, ModelInfo{}, nil)
	assert.Error(t, err)

	_, err = NewSuggestion("ticket-1", CategoryBilling, nil, "", nil, 0.5, ModelInfo{}, nil)
	assert.Error(t, err)

	_, err = NewSuggestion("ticket-1", CategoryBilling, nil, strings.Repeat("x", 2001), nil, 0.5, ModelInfo{}, nil)
	assert.Error(t, err)

	_, err = NewSuggestion("ticket-1", CategoryBilling, nil, "draft", nil, 1.1, ModelInfo{}, nil)
	assert.Error(t, err)

	suggestion, err := NewSuggestion("ticket-1", CategoryBilling, []string{"a"}, "draft", []string{"a"}, 0.5, ModelInfo{Provider: "p"}, []string{"reason"})
	require.NoError(t, err)
	assert.False(t, suggestion.AutoClosed)
	assert.Nil(t, suggestion.Feedback)
}

func TestNewSuggestionNormalizesNilSlices(t *testing.T) {
	suggestion, err := NewSuggestion("ticket-1", CategoryOther, nil, "draft", nil, 0.1, ModelInfo{}, nil)
	require.NoError(t, err)

	assert.NotNil(t, suggestion.ArticleIDs)
	assert.NotNil(t, suggestion.Citations)
	assert.NotNil(t, suggestion.MatchReasons)
	assert.Empty(t, suggestion.ArticleIDs)
}

func TestNewSuggestionFeedbackValidation(t *testing.T) {
	helpful := true
	now := time.Now()

	_, err := NewSuggestionFeedback(&helpful, strings.Repeat("x", 501), "user-1", now)
	assert.Error(t, err)

	_, err = NewSuggestionFeedback(&helpful, "fine", "", now)
	assert.Error(t, err)

	feedback, err := NewSuggestionFeedback(nil, "  trimmed  ", "user-1", now)
	require.NoError(t, err)
	assert.Nil(t, feedback.Helpful)
	assert.Equal(t, "trimmed", feedback.Comment)
}

func TestTriageConfigThresholdFor(t *testing.T) {
	cfg := DefaultTriageConfig()

	assert.Equal(t, 0.75, cfg.ThresholdFor(CategoryTech))
	assert.Equal(t, 0.9, cfg.ThresholdFor(CategoryOther))

	cfg.CategoryThresholds = nil
	assert.Equal(t, 0.8, cfg.ThresholdFor(CategoryTech))
}

func TestAuditEntryValidation(t *testing.T) {
	_, err := NewAuditEntry("", "trace", ActorSystem, ActionTicketCreated, nil)
	assert.Error(t, err)

	_, err = NewAuditEntry("ticket", "trace", "robot", ActionTicketCreated, nil)
	assert.Error(t, err)

	_, err = NewAuditEntry("ticket", "trace", ActorSystem, "SOMETHING_ELSE", nil)
	assert.Error(t, err)

	entry, err := NewAuditEntry("ticket", "trace", ActorSystem, ActionTriageError, nil)
	require.NoError(t, err)
	assert.NotNil(t, entry.Meta)
	assert.False(t, entry.Timestamp.IsZero())
}
