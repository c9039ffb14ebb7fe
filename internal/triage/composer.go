package triage

import (
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

const maxCitedArticles = 3

var categoryOpenings = map[domain.TicketCategory]string{
	domain.CategoryBilling:  "I can help you with your billing inquiry.",
	domain.CategoryTech:     "I can assist you with your technical issue.",
	domain.CategoryShipping: "I can help you with your shipping question.",
}

const generalOpening = "I'm here to help with your request."

// Draft is a composed reply plus the ids of the articles it cites.
type Draft struct {
	Text        string
	CitationIDs []string
}

// ComposeDraft renders a templated reply from the ranked articles and
// predicted category. Deterministic given its inputs.
func ComposeDraft(ticketTitle string, ranked []RankedArticle, category domain.TicketCategory) Draft {
	var b strings.Builder

	fmt.Fprintf(&b, "Thank you for contacting support regarding %q. ", ticketTitle)

	opening, ok := categoryOpenings[category]
	if !ok {
		opening = generalOpening
	}
	b.WriteString(opening)
	b.WriteString("\n\n")

	var citations []string
	if len(ranked) > 0 {
		b.WriteString("Based on your description, I found some relevant information that should help:\n\n")

		cited := ranked
		if len(cited) > maxCitedArticles {
			cited = cited[:maxCitedArticles]
		}
		for i, entry := range cited {
			fmt.Fprintf(&b, "**%d. %s**\n%s\n\n", i+1, entry.Article.Title, entry.Snippet)
			citations = append(citations, entry.Article.ID)
		}

		if extra := len(ranked) - maxCitedArticles; extra > 0 {
			fmt.Fprintf(&b, "I also found %d additional resources that might be helpful.\n\n", extra)
		}

		b.WriteString("Please review these solutions. If they resolve your issue, you can close this ticket. Otherwise, our support team will provide additional assistance.\n\n")
	} else {
		b.WriteString("I understand you're experiencing an issue. Our support team will review your request and provide personalized assistance shortly.\n\n")
	}

	b.WriteString("If you need immediate assistance, please don't hesitate to reply with more details.\n\n")
	b.WriteString("Best regards,\nAI Support Assistant")

	return Draft{
		Text:        clampDraft(b.String(), domain.MaxDraftReplyLen),
		CitationIDs: citations,
	}
}

// clampDraft keeps the reply within the suggestion bound without
// cutting mid-word.
func clampDraft(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	truncated := text[:maxLen-3]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > -1 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
