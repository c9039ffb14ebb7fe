package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

func rankedFixture(n int) []RankedArticle {
	ranked := make([]RankedArticle, 0, n)
	for i := 0; i < n; i++ {
		ranked = append(ranked, RankedArticle{
			Article: domain.Article{
				ID:    string(rune('a'+i)) + "-id",
				Title: "Article " + string(rune('A'+i)),
			},
			Score:   50 - i,
			Snippet: "Snippet " + string(rune('A'+i)),
		})
	}
	return ranked
}

func TestComposeDraftWithArticles(t *testing.T) {
	draft := ComposeDraft("Broken login page", rankedFixture(2), domain.CategoryTech)

	assert.Contains(t, draft.Text, `"Broken login page"`)
	assert.Contains(t, draft.Text, "I can assist you with your technical issue.")
	assert.Contains(t, draft.Text, "**1. Article A**")
	assert.Contains(t, draft.Text, "Snippet A")
	assert.Contains(t, draft.Text, "**2. Article B**")
	assert.NotContains(t, draft.Text, "additional resources")
	assert.Contains(t, draft.Text, "Best regards,\nAI Support Assistant")
	assert.Equal(t, []string{"a-id", "b-id"}, draft.CitationIDs)
}

func TestComposeDraftCitesAtMostThree(t *testing.T) {
	draft := ComposeDraft("Where is my order", rankedFixture(5), domain.CategoryShipping)

	require.Len(t, draft.CitationIDs, 3)
	assert.Equal(t, []string{"a-id", "b-id", "c-id"}, draft.CitationIDs)
	assert.Contains(t, draft.Text, "I also found 2 additional resources")
	assert.NotContains(t, draft.Text, "**4.")
}

func TestComposeDraftEmptyCorpus(t *testing.T) {
	draft := ComposeDraft("Anything", nil, domain.CategoryBilling)

	assert.Empty(t, draft.CitationIDs)
	assert.Contains(t, draft.Text, "I can help you with your billing inquiry.")
	assert.Contains(t, draft.Text, "Our support team will review your request and provide personalized assistance shortly.")
	assert.NotContains(t, draft.Text, "relevant information")
}

func TestComposeDraftGeneralOpeningForOther(t *testing.T) {
	draft := ComposeDraft("Anything", nil, domain.CategoryOther)

	assert.Contains(t, draft.Text, "I'm here to help with your request.")
}

func TestComposeDraftClampsLength(t *testing.T) {
	ranked := rankedFixture(3)
	for i := range ranked {
		ranked[i].Snippet = strings.Repeat("lorem ipsum ", 200)
	}

	draft := ComposeDraft("Long one", ranked, domain.CategoryTech)

	assert.LessOrEqual(t, len(draft.Text), domain.MaxDraftReplyLen)
	assert.True(t, strings.HasSuffix(draft.Text, "..."))
}
