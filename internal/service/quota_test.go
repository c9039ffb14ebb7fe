package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

type stubConfigRepo struct {
	cfg *domain.TriageConfig
}

func (r *stubConfigRepo) Get(context.Context) (*domain.TriageConfig, error) {
	if r.cfg == nil {
		return nil, pgx.ErrNoRows
	}
	return r.cfg, nil
}

func TestResolveQuotaLimitFromStoredConfig(t *testing.T) {
	cfg := domain.DefaultTriageConfig()
	cfg.MaxTicketsPerUser = 25

	limit := ResolveQuotaLimit(context.Background(), &stubConfigRepo{cfg: &cfg}, 10)

	assert.Equal(t, 25, limit)
}

func TestResolveQuotaLimitFallsBack(t *testing.T) {
	// Row absent.
	assert.Equal(t, 10, ResolveQuotaLimit(context.Background(), &stubConfigRepo{}, 10))

	// Row present but limit unset.
	cfg := domain.DefaultTriageConfig()
	cfg.MaxTicketsPerUser = 0
	assert.Equal(t, 10, ResolveQuotaLimit(context.Background(), &stubConfigRepo{cfg: &cfg}, 10))
}
