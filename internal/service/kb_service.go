package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util"
)

// KBService manages knowledge-base articles.
type KBService struct {
	articles repository.ArticleRepository
}

// NewKBService constructs the service.
func NewKBService(articles repository.ArticleRepository) *KBService {
	return &KBService{articles: articles}
}

// ArticleInput describes article create/update payload.
type ArticleInput struct {
	Title  string
	Body   string
	Tags   []string
	Status domain.ArticleStatus
}

// CreateArticle validates and stores a new article.
func (s *KBService) CreateArticle(ctx context.Context, input ArticleInput) (*domain.Article, error) {
	article, err := domain.NewArticle(input.Title, input.Body, input.Tags, input.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, apperrors.MapError(err)
	}
	return article, nil
}

// UpdateArticle replaces an article's content.
func (s *KBService) UpdateArticle(ctx context.Context, id string, input ArticleInput) (*domain.Article, error) {
	existing, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := domain.NewArticle(input.Title, input.Body, input.Tags, input.Status)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.articles.Update(ctx, updated); err != nil {
		return nil, apperrors.MapError(err)
	}
	return updated, nil
}

// DeleteArticle removes an article.
func (s *KBService) DeleteArticle(ctx context.Context, id string) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// GetArticle fetches one article.
func (s *KBService) GetArticle(ctx context.Context, id string) (*domain.Article, error) {
	return s.getArticle(ctx, id)
}

// ListArticles returns all articles regardless of status.
func (s *KBService) ListArticles(ctx context.Context) ([]domain.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return articles, nil
}

func (s *KBService) getArticle(ctx context.Context, id string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return article, nil
}
