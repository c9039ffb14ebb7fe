package domain

import (
	"fmt"
	"strings"
	"time"
)

// ArticleStatus enumerates publication states for KB articles.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

// ValidArticleStatus reports whether the value is a known status.
func ValidArticleStatus(s ArticleStatus) bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished
}

// Article is a knowledge-base entry. Only published articles are
// eligible for retrieval; articles are read-only during triage.
type Article struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	Status    ArticleStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewArticle validates and builds an article.
func NewArticle(title, body string, tags []string, status ArticleStatus) (*Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("article title is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("article body is required")
	}
	if status == "" {
		status = ArticleStatusDraft
	}
	if !ValidArticleStatus(status) {
		return nil, fmt.Errorf("unknown article status %q", status)
	}
	return &Article{
		Title:  title,
		Body:   body,
		Tags:   tags,
		Status: status,
	}, nil
}
