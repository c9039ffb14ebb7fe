package triage

import (
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// Article relevance weights.
const (
	weightCategoryTag    = 10
	weightTitleWord      = 5
	weightBodyWord       = 2
	weightTagInText      = 4
	weightLexiconKeyword = 3

	maxRankedArticles = 5
	snippetMaxLen     = 250
	// minSearchWordLen drops short tokens from the ticket text.
	minSearchWordLen = 3

	emptyBodySnippet = "No content available."
)

// RankedArticle is a retrieval result carrying its relevance score and
// a display snippet.
type RankedArticle struct {
	Article domain.Article
	Score   int
	Snippet string
}

// Retriever ranks knowledge-base articles against ticket text and a
// predicted category. It reads only published articles and has no side
// effects.
type Retriever struct {
	lexicon *Lexicon
}

// NewRetriever builds a retriever over the given lexicon.
func NewRetriever(lexicon *Lexicon) *Retriever {
	return &Retriever{lexicon: lexicon}
}

// Rank scores the corpus and returns up to five articles with positive
// relevance, ordered by descending score. The sort is stable: ties keep
// the corpus enumeration order.
func (r *Retriever) Rank(title, description string, category domain.TicketCategory, corpus []domain.Article) []RankedArticle {
	searchText := strings.ToLower(title + " " + description)
	searchWords := searchTokens(searchText)
	categoryKeywords := r.lexicon.Keywords(category)

	ranked := make([]RankedArticle, 0, len(corpus))
	for _, article := range corpus {
		if article.Status != domain.ArticleStatusPublished {
			continue
		}
		score := relevanceScore(searchText, searchWords, categoryKeywords, category, article)
		if score <= 0 {
			continue
		}
		ranked = append(ranked, RankedArticle{
			Article: article,
			Score:   score,
			Snippet: Snippet(article.Body, snippetMaxLen),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > maxRankedArticles {
		ranked = ranked[:maxRankedArticles]
	}
	return ranked
}

func relevanceScore(searchText string, searchWords, categoryKeywords []string, category domain.TicketCategory, article domain.Article) int {
	titleLower := strings.ToLower(article.Title)
	bodyLower := strings.ToLower(article.Body)

	score := 0

	for _, tag := range article.Tags {
		if strings.EqualFold(tag, string(category)) {
			score += weightCategoryTag
			break
		}
	}

	for _, word := range searchWords {
		if strings.Contains(titleLower, word) {
			score += weightTitleWord
		}
	}

	for _, word := range searchWords {
		score += countWordPrefixOccurrences(bodyLower, word) * weightBodyWord
	}

	for _, tag := range article.Tags {
		if strings.Contains(searchText, strings.ToLower(tag)) {
			score += weightTagInText
		}
	}

	for _, keyword := range categoryKeywords {
		if strings.Contains(bodyLower, keyword) {
			score += weightLexiconKeyword
		}
	}

	return score
}

// countWordPrefixOccurrences counts occurrences of word in text that
// start at a word boundary.
func countWordPrefixOccurrences(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for start := 0; ; {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			break
		}
		pos := start + idx
		if pos == 0 || !isWordChar(text[pos-1]) {
			count++
		}
		start = pos + 1
	}
	return count
}

// searchTokens splits the lowercased ticket text into search words,
// dropping short tokens.
func searchTokens(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) >= minSearchWordLen {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

// Snippet truncates a body to maxLen characters, backing off to the last
// space so it never cuts mid-word, and appends an ellipsis marker. Empty
// bodies produce a fixed placeholder.
func Snippet(body string, maxLen int) string {
	if body == "" {
		return emptyBodySnippet
	}
	if len(body) <= maxLen {
		return body
	}
	truncated := body[:maxLen]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > -1 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
