package triage

import (
	"fmt"
	"math"
	"strings"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// Keyword match weights: whole-word, word-prefix, substring.
const (
	weightExact     = 3
	weightPrefix    = 2
	weightSubstring = 1

	titleKeywordBonus = 3
	maxReasonKeywords = 5

	// noMatchConfidence applies when no keyword matches any category.
	noMatchConfidence = 0.1
	// confidenceCeiling caps every fused or boosted confidence value.
	confidenceCeiling = 0.95
)

// Classification is the classifier verdict for one ticket.
type Classification struct {
	Category   domain.TicketCategory
	Confidence float64
	Reasons    []string
	Scores     map[domain.TicketCategory]int
}

// Classifier scores ticket text against a lexicon. It is a pure
// function of its inputs and safe for concurrent use.
type Classifier struct {
	lexicon *Lexicon
}

// NewClassifier builds a classifier over the given lexicon.
func NewClassifier(lexicon *Lexicon) *Classifier {
	return &Classifier{lexicon: lexicon}
}

type categoryMatch struct {
	score      int
	matchCount int
	keywords   []string
}

// Classify predicts a category for the ticket text and fuses a
// confidence score in [0, 0.95]. declared is the user-supplied category,
// used as fallback when nothing matches and as a confidence signal when
// it agrees with the prediction.
func (c *Classifier) Classify(title, description string, declared domain.TicketCategory) Classification {
	titleLower := strings.ToLower(title)
	text := titleLower + " " + strings.ToLower(description)

	scores := make(map[domain.TicketCategory]int, len(c.lexicon.Entries()))
	matches := make(map[domain.TicketCategory]categoryMatch, len(c.lexicon.Entries()))
	var reasons []string

	for _, entry := range c.lexicon.Entries() {
		match := categoryMatch{}
		for _, keyword := range entry.Keywords {
			keywordScore := weighKeyword(text, keyword)
			if keywordScore == 0 {
				continue
			}
			match.matchCount++
			match.score += keywordScore
			if strings.Contains(titleLower, keyword) {
				match.score += titleKeywordBonus
			}
			match.keywords = append(match.keywords, keyword)
		}
		scores[entry.Category] = match.score
		matches[entry.Category] = match
		if len(match.keywords) > 0 {
			listed := match.keywords
			if len(listed) > maxReasonKeywords {
				listed = listed[:maxReasonKeywords]
			}
			reasons = append(reasons, fmt.Sprintf("Contains %s keywords: %s", entry.Category, strings.Join(listed, ", ")))
		}
	}

	// First category reaching the max wins; entry order breaks ties.
	maxScore := 0
	predicted := domain.TicketCategory("")
	for _, entry := range c.lexicon.Entries() {
		if scores[entry.Category] > maxScore {
			maxScore = scores[entry.Category]
			predicted = entry.Category
		}
	}

	if maxScore == 0 {
		fallback := declared
		if !domain.ValidCategory(fallback) {
			fallback = domain.CategoryOther
		}
		return Classification{
			Category:   fallback,
			Confidence: noMatchConfidence,
			Reasons:    reasons,
			Scores:     scores,
		}
	}

	best := matches[predicted]
	total := len(c.lexicon.Keywords(predicted))
	diversity := 0.0
	if total > 0 {
		diversity = float64(best.matchCount) / float64(total)
	}
	intensity := math.Min(float64(maxScore)/10, 1)

	confidence := 0.2 + intensity*0.4 + diversity*0.3
	if best.matchCount > 3 {
		confidence += 0.1
	}
	confidence = math.Min(confidenceCeiling, confidence)

	if declared == predicted {
		confidence = math.Min(confidenceCeiling, confidence*1.2)
	}
	if titleOverlapsKeywords(titleLower, c.lexicon.Keywords(predicted)) {
		confidence = math.Min(confidenceCeiling, confidence*1.15)
	}

	return Classification{
		Category:   predicted,
		Confidence: math.Round(confidence*100) / 100,
		Reasons:    reasons,
		Scores:     scores,
	}
}

// weighKeyword scores every occurrence of keyword in text. Each
// occurrence counts as a substring match; occurrences starting at a word
// boundary additionally count as prefix matches, and occurrences bounded
// on both sides additionally count as whole-word matches.
func weighKeyword(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	score := 0
	for start := 0; ; {
		idx := strings.Index(text[start:], keyword)
		if idx < 0 {
			break
		}
		pos := start + idx
		end := pos + len(keyword)

		score += weightSubstring
		startsWord := pos == 0 || !isWordChar(text[pos-1])
		if startsWord {
			score += weightPrefix
			if end == len(text) || !isWordChar(text[end]) {
				score += weightExact
			}
		}
		start = pos + 1
	}
	return score
}

// titleOverlapsKeywords reports whether any title word partially
// overlaps a category keyword, in either direction.
func titleOverlapsKeywords(titleLower string, keywords []string) bool {
	for _, word := range strings.Fields(titleLower) {
		for _, keyword := range keywords {
			if strings.Contains(word, keyword) || strings.Contains(keyword, word) {
				return true
			}
		}
	}
	return false
}

func isWordChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
