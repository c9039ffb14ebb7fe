package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// ConfigRepository reads the singleton triage configuration row.
// Administrators maintain the row out-of-band; callers fall back to
// defaults when the row is absent.
type ConfigRepository interface {
	Get(ctx context.Context) (*domain.TriageConfig, error)
}

type configRepository struct {
	pool *pgxpool.Pool
}

// NewConfigRepository builds repository.
func NewConfigRepository(pool *pgxpool.Pool) ConfigRepository {
	return &configRepository{pool: pool}
}

func (r *configRepository) Get(ctx context.Context) (*domain.TriageConfig, error) {
	const query = `
        SELECT auto_close_enabled, confidence_threshold, sla_hours, max_tickets_per_user, category_thresholds
        FROM triage_config LIMIT 1`
	var (
		cfg           domain.TriageConfig
		thresholdsRaw []byte
	)
	if err := r.pool.QueryRow(ctx, query).Scan(
		&cfg.AutoCloseEnabled,
		&cfg.ConfidenceThreshold,
		&cfg.SLAHours,
		&cfg.MaxTicketsPerUser,
		&thresholdsRaw,
	); err != nil {
		return nil, err
	}
	if len(thresholdsRaw) > 0 {
		if err := json.Unmarshal(thresholdsRaw, &cfg.CategoryThresholds); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
