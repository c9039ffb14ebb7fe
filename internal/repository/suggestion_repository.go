package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// SuggestionRepository stores triage suggestions. A suggestion is
// written once per triage run; feedback and the auto-closed flag are the
// only post-creation mutations.
type SuggestionRepository interface {
	Create(ctx context.Context, suggestion *domain.Suggestion) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.Suggestion, error)
	SetAutoClosed(ctx context.Context, id string) error
	SaveFeedback(ctx context.Context, id string, feedback *domain.SuggestionFeedback) error
}

type suggestionRepository struct {
	pool *pgxpool.Pool
}

// NewSuggestionRepository builds repository.
func NewSuggestionRepository(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepository{pool: pool}
}

type modelInfoRecord struct {
	Provider      string `json:"provider"`
	Model         string `json:"model"`
	PromptVersion string `json:"prompt_version"`
	LatencyMs     int64  `json:"latency_ms"`
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.Suggestion) error {
	info, err := json.Marshal(modelInfoRecord{
		Provider:      suggestion.ModelInfo.Provider,
		Model:         suggestion.ModelInfo.Model,
		PromptVersion: suggestion.ModelInfo.PromptVersion,
		LatencyMs:     suggestion.ModelInfo.LatencyMs,
	})
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO agent_suggestions (ticket_id, predicted_category, article_ids, draft_reply, citations, confidence, auto_closed, model_info, match_reasons)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		suggestion.TicketID,
		suggestion.PredictedCategory,
		suggestion.ArticleIDs,
		suggestion.DraftReply,
		suggestion.Citations,
		suggestion.Confidence,
		suggestion.AutoClosed,
		info,
		suggestion.MatchReasons,
	).Scan(&suggestion.ID, &suggestion.CreatedAt)
}

func (r *suggestionRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.Suggestion, error) {
	const query = `
        SELECT id, ticket_id, predicted_category, article_ids, draft_reply, citations, confidence, auto_closed, model_info, feedback, match_reasons, created_at
        FROM agent_suggestions WHERE ticket_id=$1`
	var (
		suggestion   domain.Suggestion
		infoRaw      []byte
		feedbackRaw  []byte
		articleIDs   []string
		citations    []string
		matchReasons []string
	)
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&suggestion.ID,
		&suggestion.TicketID,
		&suggestion.PredictedCategory,
		&articleIDs,
		&suggestion.DraftReply,
		&citations,
		&suggestion.Confidence,
		&suggestion.AutoClosed,
		&infoRaw,
		&feedbackRaw,
		&matchReasons,
		&suggestion.CreatedAt,
	); err != nil {
		return nil, err
	}
	suggestion.ArticleIDs = articleIDs
	suggestion.Citations = citations
	suggestion.MatchReasons = matchReasons

	var info modelInfoRecord
	if len(infoRaw) > 0 {
		if err := json.Unmarshal(infoRaw, &info); err != nil {
			return nil, err
		}
	}
	suggestion.ModelInfo = domain.ModelInfo{
		Provider:      info.Provider,
		Model:         info.Model,
		PromptVersion: info.PromptVersion,
		LatencyMs:     info.LatencyMs,
	}

	if len(feedbackRaw) > 0 {
		var record domain.SuggestionFeedback
		if err := json.Unmarshal(feedbackRaw, &record); err != nil {
			return nil, err
		}
		suggestion.Feedback = &record
	}
	return &suggestion, nil
}

func (r *suggestionRepository) SetAutoClosed(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE agent_suggestions SET auto_closed=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *suggestionRepository) SaveFeedback(ctx context.Context, id string, feedback *domain.SuggestionFeedback) error {
	raw, err := json.Marshal(feedback)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE agent_suggestions SET feedback=$1 WHERE id=$2`, raw, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
