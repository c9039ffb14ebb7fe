package triage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/events"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	updates int
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.updates++
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

func (r *fakeTicketRepo) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

type fakeSuggestionRepo struct {
	created    *domain.Suggestion
	autoClosed bool
}

func (r *fakeSuggestionRepo) Create(_ context.Context, suggestion *domain.Suggestion) error {
	// The real table declares these columns NOT NULL; a nil slice would
	// bind as SQL NULL and violate the constraint.
	if suggestion.ArticleIDs == nil || suggestion.Citations == nil || suggestion.MatchReasons == nil {
		return errors.New("null value in array column")
	}
	suggestion.ID = "sugg-1"
	r.created = suggestion
	return nil
}

func (r *fakeSuggestionRepo) GetByTicket(context.Context, string) (*domain.Suggestion, error) {
	if r.created == nil {
		return nil, pgx.ErrNoRows
	}
	return r.created, nil
}

func (r *fakeSuggestionRepo) SetAutoClosed(context.Context, string) error {
	r.autoClosed = true
	return nil
}

func (r *fakeSuggestionRepo) SaveFeedback(context.Context, string, *domain.SuggestionFeedback) error {
	return nil
}

type fakeArticleRepo struct {
	published []domain.Article
	fail      bool
}

func (r *fakeArticleRepo) Create(context.Context, *domain.Article) error  { return nil }
func (r *fakeArticleRepo) Update(context.Context, *domain.Article) error  { return nil }
func (r *fakeArticleRepo) Delete(context.Context, string) error           { return nil }
func (r *fakeArticleRepo) GetByID(context.Context, string) (*domain.Article, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeArticleRepo) List(context.Context) ([]domain.Article, error) { return nil, nil }

func (r *fakeArticleRepo) ListPublished(context.Context) ([]domain.Article, error) {
	if r.fail {
		return nil, errors.New("corpus unavailable")
	}
	return r.published, nil
}

type fakeAuditRepo struct {
	entries []domain.AuditEntry
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	entry.ID = fmt.Sprintf("audit-%d", len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(context.Context, string) ([]domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *fakeAuditRepo) ListByTrace(context.Context, string) ([]domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *fakeAuditRepo) actions() []domain.AuditAction {
	actions := make([]domain.AuditAction, 0, len(r.entries))
	for _, entry := range r.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

type fakeConfigRepo struct {
	cfg *domain.TriageConfig
}

func (r *fakeConfigRepo) Get(context.Context) (*domain.TriageConfig, error) {
	if r.cfg == nil {
		return nil, pgx.ErrNoRows
	}
	return r.cfg, nil
}

type orchestratorFixture struct {
	tickets     *fakeTicketRepo
	suggestions *fakeSuggestionRepo
	articles    *fakeArticleRepo
	audits      *fakeAuditRepo
	configs     *fakeConfigRepo
	orch        *Orchestrator
}

func newOrchestratorFixture(t *testing.T, ticket *domain.Ticket, cfg *domain.TriageConfig) *orchestratorFixture {
	t.Helper()
	f := &orchestratorFixture{
		tickets:     &fakeTicketRepo{tickets: map[string]*domain.Ticket{ticket.ID: ticket}},
		suggestions: &fakeSuggestionRepo{},
		articles:    &fakeArticleRepo{},
		audits:      &fakeAuditRepo{},
		configs:     &fakeConfigRepo{cfg: cfg},
	}
	f.orch = NewOrchestrator(DefaultLexicon(), Dependencies{
		TicketRepo:     f.tickets,
		SuggestionRepo: f.suggestions,
		ArticleRepo:    f.articles,
		AuditRepo:      f.audits,
		ConfigRepo:     f.configs,
		Dispatcher:     events.NewInMemoryDispatcher(),
		Logger:         zap.NewNop(),
		FallbackConfig: domain.DefaultTriageConfig(),
	})
	return f
}

func billingTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:          "ticket-1",
		Title:       "Refund for double charge",
		Description: "I was charged twice for my subscription, please refund",
		Category:    domain.CategoryBilling,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   "user-1",
		TraceID:     "trace-1",
	}
}

func TestRunHandsOffWhenAutoCloseDisabled(t *testing.T) {
	ticket := billingTicket()
	cfg := domain.DefaultTriageConfig()
	f := newOrchestratorFixture(t, ticket, &cfg)

	f.orch.Run(context.Background(), ticket.ID)

	assert.Equal(t, []domain.AuditAction{
		domain.ActionAgentTriageStarted,
		domain.ActionAgentClassified,
		domain.ActionKBRetrieved,
		domain.ActionDraftGenerated,
		domain.ActionAssignedToHuman,
	}, f.audits.actions())

	require.NotNil(t, f.suggestions.created)
	assert.Equal(t, domain.CategoryBilling, f.suggestions.created.PredictedCategory)
	assert.InDelta(t, 0.88, f.suggestions.created.Confidence, 0.001)
	assert.False(t, f.suggestions.autoClosed)
	// Empty corpus still persists empty arrays, not nil.
	assert.NotNil(t, f.suggestions.created.ArticleIDs)
	assert.NotNil(t, f.suggestions.created.Citations)
	assert.NotNil(t, f.suggestions.created.MatchReasons)

	assert.Equal(t, domain.TicketStatusWaitingHuman, ticket.Status)
	assert.Equal(t, domain.CategoryBilling, ticket.Category)
	require.NotNil(t, ticket.SuggestionID)
	assert.Equal(t, "sugg-1", *ticket.SuggestionID)
	assert.Nil(t, ticket.ResolvedAt)

	last := f.audits.entries[len(f.audits.entries)-1]
	assert.Equal(t, "auto_close_disabled", last.Meta["reason"])
	assert.Equal(t, 24, last.Meta["sla_hours"])
	assert.Equal(t, domain.ActorSystem, last.Actor)
}

func TestRunNoKeywordMatchesStillPersists(t *testing.T) {
	ticket := billingTicket()
	ticket.Title = "Hello"
	ticket.Description = "Just checking in"
	ticket.Category = domain.CategoryOther
	cfg := domain.DefaultTriageConfig()
	f := newOrchestratorFixture(t, ticket, &cfg)

	f.orch.Run(context.Background(), ticket.ID)

	require.NotNil(t, f.suggestions.created)
	assert.Equal(t, domain.CategoryOther, f.suggestions.created.PredictedCategory)
	assert.Equal(t, 0.1, f.suggestions.created.Confidence)
	assert.NotNil(t, f.suggestions.created.MatchReasons)
	assert.Empty(t, f.suggestions.created.MatchReasons)
	assert.Equal(t, domain.TicketStatusWaitingHuman, ticket.Status)
}

func TestRunAutoClosesAboveThreshold(t *testing.T) {
	ticket := billingTicket()
	cfg := domain.DefaultTriageConfig()
	cfg.AutoCloseEnabled = true
	f := newOrchestratorFixture(t, ticket, &cfg)

	f.orch.Run(context.Background(), ticket.ID)

	assert.Equal(t, []domain.AuditAction{
		domain.ActionAgentTriageStarted,
		domain.ActionAgentClassified,
		domain.ActionKBRetrieved,
		domain.ActionDraftGenerated,
		domain.ActionAutoClosed,
	}, f.audits.actions())

	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	assert.NotNil(t, ticket.ResolvedAt)
	assert.True(t, f.suggestions.autoClosed)
	assert.True(t, f.suggestions.created.AutoClosed)
}

func TestRunHandsOffOnLowConfidence(t *testing.T) {
	ticket := billingTicket()
	cfg := domain.DefaultTriageConfig()
	cfg.AutoCloseEnabled = true
	cfg.CategoryThresholds[domain.CategoryBilling] = 0.99
	f := newOrchestratorFixture(t, ticket, &cfg)

	f.orch.Run(context.Background(), ticket.ID)

	last := f.audits.entries[len(f.audits.entries)-1]
	assert.Equal(t, domain.ActionAssignedToHuman, last.Action)
	assert.Equal(t, "low_confidence", last.Meta["reason"])
	assert.Equal(t, domain.TicketStatusWaitingHuman, ticket.Status)
	assert.False(t, f.suggestions.autoClosed)
}

func TestRunUsesFallbackConfigWhenRowAbsent(t *testing.T) {
	ticket := billingTicket()
	f := newOrchestratorFixture(t, ticket, nil)

	f.orch.Run(context.Background(), ticket.ID)

	// Fallback config keeps auto-close disabled.
	last := f.audits.entries[len(f.audits.entries)-1]
	assert.Equal(t, domain.ActionAssignedToHuman, last.Action)
	assert.Equal(t, "auto_close_disabled", last.Meta["reason"])
}

func TestRunRecordsTriageErrorOnFailure(t *testing.T) {
	ticket := billingTicket()
	cfg := domain.DefaultTriageConfig()
	f := newOrchestratorFixture(t, ticket, &cfg)
	f.articles.fail = true

	f.orch.Run(context.Background(), ticket.ID)

	assert.Equal(t, []domain.AuditAction{
		domain.ActionAgentTriageStarted,
		domain.ActionAgentClassified,
		domain.ActionTriageError,
	}, f.audits.actions())

	last := f.audits.entries[len(f.audits.entries)-1]
	errDetail, ok := last.Meta["error"].(string)
	require.True(t, ok)
	assert.Contains(t, errDetail, "corpus unavailable")
	assert.LessOrEqual(t, len(errDetail), 500)

	assert.Nil(t, f.suggestions.created)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestRunMissingTicketIsNoOp(t *testing.T) {
	ticket := billingTicket()
	cfg := domain.DefaultTriageConfig()
	f := newOrchestratorFixture(t, ticket, &cfg)

	f.orch.Run(context.Background(), "no-such-ticket")

	assert.Empty(t, f.audits.entries)
	assert.Nil(t, f.suggestions.created)
}

func TestFuseConfidenceBoostsAndCaps(t *testing.T) {
	assert.Equal(t, 0.5, fuseConfidence(0.5, nil))

	boosted := fuseConfidence(0.5, []RankedArticle{{Score: 20}})
	assert.InDelta(t, 0.6, boosted, 0.001)

	partial := fuseConfidence(0.5, []RankedArticle{{Score: 10}})
	assert.InDelta(t, 0.55, partial, 0.001)

	capped := fuseConfidence(0.94, []RankedArticle{{Score: 40}})
	assert.Equal(t, 0.95, capped)
}
