package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

func TestClassifyBillingScenario(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	result := classifier.Classify(
		"Refund for double charge",
		"I was charged twice for my subscription, please refund",
		domain.CategoryBilling,
	)

	assert.Equal(t, domain.CategoryBilling, result.Category)
	assert.InDelta(t, 0.88, result.Confidence, 0.001)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, "Contains billing keywords: charge, refund, subscription", result.Reasons[0])
	assert.Greater(t, result.Scores[domain.CategoryBilling], 0)
	assert.Zero(t, result.Scores[domain.CategoryTech])
	assert.Zero(t, result.Scores[domain.CategoryShipping])
}

func TestClassifyNoMatchFallsBackToDeclared(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	result := classifier.Classify("Hello", "Just checking in", domain.CategoryTech)

	assert.Equal(t, domain.CategoryTech, result.Category)
	assert.Equal(t, 0.1, result.Confidence)
	assert.Empty(t, result.Reasons)
}

func TestClassifyNoMatchUnknownDeclaredFallsBackToOther(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	result := classifier.Classify("Hello", "Just checking in", "")

	assert.Equal(t, domain.CategoryOther, result.Category)
	assert.Equal(t, 0.1, result.Confidence)
}

func TestClassifyTieResolvesToFirstDeclaredCategory(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	// "refund" and "error" score identically; billing is declared first
	// in the lexicon so the tie goes to it.
	result := classifier.Classify("Help", "refund error", domain.CategoryOther)

	assert.Equal(t, domain.CategoryBilling, result.Category)
	assert.Equal(t, result.Scores[domain.CategoryBilling], result.Scores[domain.CategoryTech])
}

func TestClassifyConfidenceNeverExceedsCeiling(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	result := classifier.Classify(
		"Refund payment charge invoice",
		"I need a refund for a payment charge, the invoice and bill show a duplicate transaction fee on my card subscription",
		domain.CategoryBilling,
	)

	assert.Equal(t, domain.CategoryBilling, result.Category)
	assert.Equal(t, 0.95, result.Confidence)
}

func TestClassifyDeclaredMismatchSkipsAgreementBoost(t *testing.T) {
	classifier := NewClassifier(DefaultLexicon())

	agreeing := classifier.Classify(
		"Refund for double charge",
		"I was charged twice for my subscription, please refund",
		domain.CategoryBilling,
	)
	disagreeing := classifier.Classify(
		"Refund for double charge",
		"I was charged twice for my subscription, please refund",
		domain.CategoryTech,
	)

	assert.Equal(t, domain.CategoryBilling, disagreeing.Category)
	assert.Less(t, disagreeing.Confidence, agreeing.Confidence)
}

func TestWeighKeywordScoresOccurrences(t *testing.T) {
	// Whole word: substring + prefix + exact.
	assert.Equal(t, 6, weighKeyword("please refund me", "refund"))
	// Word prefix only: substring + prefix.
	assert.Equal(t, 3, weighKeyword("i was charged", "charge"))
	// Mid-word: substring only.
	assert.Equal(t, 1, weighKeyword("prepayment", "payment"))
	// Occurrences accumulate.
	assert.Equal(t, 12, weighKeyword("refund this refund", "refund"))
	assert.Zero(t, weighKeyword("nothing here", "refund"))
}
