package triage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/events"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
)

const (
	// relevanceScale normalizes raw retrieval scores into [0,1] for the
	// confidence boost. 20 is roughly an article with a category tag
	// plus two title-word hits.
	relevanceScale = 20.0

	maxErrorDetailLen   = 500
	maxDraftExcerptLen  = 200
	reasonLowConfidence = "low_confidence"
	reasonAutoCloseOff  = "auto_close_disabled"
)

// Provenance metadata recorded on every suggestion. Informational only.
const (
	providerName  = "enhanced-stub"
	modelName     = "keyword-matcher-v2"
	promptVersion = "2.0"
)

// Dependencies bundles collaborators for the orchestrator.
type Dependencies struct {
	TicketRepo     repository.TicketRepository
	SuggestionRepo repository.SuggestionRepository
	ArticleRepo    repository.ArticleRepository
	AuditRepo      repository.AuditLogRepository
	ConfigRepo     repository.ConfigRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	// FallbackConfig applies when no configuration row exists.
	FallbackConfig domain.TriageConfig
}

// Orchestrator sequences one triage run: classification, retrieval,
// drafting, confidence fusion and the auto-close decision, with an
// audit entry around every step. One run touches only its own ticket,
// suggestion and audit rows; runs for different tickets may execute
// concurrently.
type Orchestrator struct {
	tickets     repository.TicketRepository
	suggestions repository.SuggestionRepository
	articles    repository.ArticleRepository
	audits      repository.AuditLogRepository
	configs     repository.ConfigRepository
	dispatcher  events.Dispatcher
	classifier  *Classifier
	retriever   *Retriever
	fallback    domain.TriageConfig
	logger      *zap.Logger
}

// NewOrchestrator wires the pipeline over a shared lexicon.
func NewOrchestrator(lexicon *Lexicon, deps Dependencies) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		tickets:     deps.TicketRepo,
		suggestions: deps.SuggestionRepo,
		articles:    deps.ArticleRepo,
		audits:      deps.AuditRepo,
		configs:     deps.ConfigRepo,
		dispatcher:  deps.Dispatcher,
		classifier:  NewClassifier(lexicon),
		retriever:   NewRetriever(lexicon),
		fallback:    deps.FallbackConfig,
		logger:      logger,
	}
}

// Run executes triage for a ticket. Errors never propagate to the
// caller: any failure is recorded as a single TRIAGE_ERROR audit entry
// and the ticket is left in whatever status it reached. Runs are not
// retried.
func (o *Orchestrator) Run(ctx context.Context, ticketID string) {
	ticket, err := o.tickets.GetByID(ctx, ticketID)
	if err != nil {
		o.logger.Error("triage: load ticket", zap.String("ticket_id", ticketID), zap.Error(err))
		return
	}

	if err := o.run(ctx, ticket); err != nil {
		o.logger.Error("triage failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("trace_id", ticket.TraceID),
			zap.Error(err))
		o.writeAudit(ctx, ticket, domain.ActionTriageError, map[string]any{
			"error": truncate(err.Error(), maxErrorDetailLen),
		})
	}
}

func (o *Orchestrator) run(ctx context.Context, ticket *domain.Ticket) error {
	started := time.Now()

	if err := o.audit(ctx, ticket, domain.ActionAgentTriageStarted, map[string]any{
		"ticket_id": ticket.ID,
	}); err != nil {
		return err
	}

	classification := o.classifier.Classify(ticket.Title, ticket.Description, ticket.Category)
	if err := o.audit(ctx, ticket, domain.ActionAgentClassified, map[string]any{
		"predicted_category": classification.Category,
		"confidence":         classification.Confidence,
		"original_category":  ticket.Category,
	}); err != nil {
		return err
	}

	corpus, err := o.articles.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published articles: %w", err)
	}
	ranked := o.retriever.Rank(ticket.Title, ticket.Description, classification.Category, corpus)
	articleIDs := make([]string, 0, len(ranked))
	for _, entry := range ranked {
		articleIDs = append(articleIDs, entry.Article.ID)
	}
	if err := o.audit(ctx, ticket, domain.ActionKBRetrieved, map[string]any{
		"articles_found": len(ranked),
		"article_ids":    articleIDs,
	}); err != nil {
		return err
	}

	draft := ComposeDraft(ticket.Title, ranked, classification.Category)
	if err := o.audit(ctx, ticket, domain.ActionDraftGenerated, map[string]any{
		"draft_length": len(draft.Text),
		"citations":    len(draft.CitationIDs),
	}); err != nil {
		return err
	}

	confidence := fuseConfidence(classification.Confidence, ranked)

	suggestion, err := domain.NewSuggestion(
		ticket.ID,
		classification.Category,
		articleIDs,
		draft.Text,
		draft.CitationIDs,
		confidence,
		domain.ModelInfo{
			Provider:      providerName,
			Model:         modelName,
			PromptVersion: promptVersion,
			LatencyMs:     time.Since(started).Milliseconds(),
		},
		classification.Reasons,
	)
	if err != nil {
		return fmt.Errorf("build suggestion: %w", err)
	}
	if err := o.suggestions.Create(ctx, suggestion); err != nil {
		return fmt.Errorf("persist suggestion: %w", err)
	}

	ticket.SuggestionID = &suggestion.ID
	ticket.Category = classification.Category
	ticket.Status = domain.TicketStatusTriaged
	if err := o.tickets.Update(ctx, ticket); err != nil {
		return fmt.Errorf("mark ticket triaged: %w", err)
	}
	o.publish(ctx, events.Event{
		Type:     events.EventTicketTriaged,
		TicketID: ticket.ID,
		Actor:    domain.ActorSystem,
		Payload: events.TicketTriagedPayload{
			SuggestionID:      suggestion.ID,
			PredictedCategory: suggestion.PredictedCategory,
			Confidence:        suggestion.Confidence,
		},
	})

	cfg := o.loadConfig(ctx)
	threshold := cfg.ThresholdFor(classification.Category)

	if cfg.AutoCloseEnabled && confidence >= threshold {
		now := time.Now()
		ticket.Status = domain.TicketStatusResolved
		ticket.ResolvedAt = &now
		if err := o.tickets.Update(ctx, ticket); err != nil {
			return fmt.Errorf("auto-close ticket: %w", err)
		}
		if err := o.suggestions.SetAutoClosed(ctx, suggestion.ID); err != nil {
			return fmt.Errorf("flag suggestion auto-closed: %w", err)
		}
		suggestion.AutoClosed = true
		if err := o.audit(ctx, ticket, domain.ActionAutoClosed, map[string]any{
			"confidence":  confidence,
			"threshold":   threshold,
			"draft_reply": truncate(draft.Text, maxDraftExcerptLen),
		}); err != nil {
			return err
		}
		o.publish(ctx, events.Event{
			Type:     events.EventTicketAutoClosed,
			TicketID: ticket.ID,
			Actor:    domain.ActorSystem,
			Payload: events.TicketAutoClosedPayload{
				SuggestionID: suggestion.ID,
				Confidence:   confidence,
				Threshold:    threshold,
			},
		})
		o.logger.Info("ticket auto-closed",
			zap.String("ticket_id", ticket.ID),
			zap.Float64("confidence", confidence))
		return nil
	}

	reason := reasonLowConfidence
	if !cfg.AutoCloseEnabled {
		reason = reasonAutoCloseOff
	}
	ticket.Status = domain.TicketStatusWaitingHuman
	if err := o.tickets.Update(ctx, ticket); err != nil {
		return fmt.Errorf("hand ticket to human: %w", err)
	}
	if err := o.audit(ctx, ticket, domain.ActionAssignedToHuman, map[string]any{
		"reason":     reason,
		"confidence": confidence,
		"threshold":  threshold,
		"sla_hours":  cfg.SLAHours,
	}); err != nil {
		return err
	}
	o.logger.Info("ticket handed to human",
		zap.String("ticket_id", ticket.ID),
		zap.String("reason", reason),
		zap.Float64("confidence", confidence))
	return nil
}

// fuseConfidence boosts classifier confidence with the mean normalized
// relevance of the retrieved articles, capped at the confidence ceiling.
func fuseConfidence(confidence float64, ranked []RankedArticle) float64 {
	if len(ranked) == 0 {
		return confidence
	}
	sum := 0.0
	for _, entry := range ranked {
		sum += math.Min(float64(entry.Score)/relevanceScale, 1)
	}
	avg := sum / float64(len(ranked))
	return math.Min(confidenceCeiling, confidence+avg*0.1)
}

func (o *Orchestrator) loadConfig(ctx context.Context) domain.TriageConfig {
	cfg, err := o.configs.Get(ctx)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			o.logger.Warn("triage: load config, using fallback", zap.Error(err))
		}
		return o.fallback
	}
	return *cfg
}

func (o *Orchestrator) audit(ctx context.Context, ticket *domain.Ticket, action domain.AuditAction, meta map[string]any) error {
	if err := o.writeAudit(ctx, ticket, action, meta); err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return nil
}

func (o *Orchestrator) writeAudit(ctx context.Context, ticket *domain.Ticket, action domain.AuditAction, meta map[string]any) error {
	entry, err := domain.NewAuditEntry(ticket.ID, ticket.TraceID, domain.ActorSystem, action, meta)
	if err != nil {
		return err
	}
	if err := o.audits.Create(ctx, entry); err != nil {
		o.logger.Error("audit write failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("action", string(action)),
			zap.Error(err))
		return err
	}
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = o.dispatcher.Publish(ctx, event)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
