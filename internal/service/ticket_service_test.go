package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
	"github.com/spec-kit/helpdesk-triage/internal/events"
	"github.com/spec-kit/helpdesk-triage/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-triage/pkg/util"
)

type memTicketRepo struct {
	tickets    map[string]*domain.Ticket
	lastFilter repository.TicketFilter
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	// tags binds to a NOT NULL array column; nil would violate it.
	if ticket.Tags == nil {
		return errors.New("null value in array column")
	}
	ticket.ID = fmt.Sprintf("ticket-%d", len(r.tickets)+1)
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.lastFilter = filter
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

type memSuggestionRepo struct {
	suggestion    *domain.Suggestion
	feedbackSaves int
}

func (r *memSuggestionRepo) Create(_ context.Context, suggestion *domain.Suggestion) error {
	r.suggestion = suggestion
	return nil
}

func (r *memSuggestionRepo) GetByTicket(context.Context, string) (*domain.Suggestion, error) {
	if r.suggestion == nil {
		return nil, pgx.ErrNoRows
	}
	return r.suggestion, nil
}

func (r *memSuggestionRepo) SetAutoClosed(context.Context, string) error { return nil }

func (r *memSuggestionRepo) SaveFeedback(_ context.Context, _ string, feedback *domain.SuggestionFeedback) error {
	r.suggestion.Feedback = feedback
	r.feedbackSaves++
	return nil
}

type memAuditRepo struct {
	entries []domain.AuditEntry
}

func (r *memAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) ListByTicket(context.Context, string) ([]domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *memAuditRepo) ListByTrace(context.Context, string) ([]domain.AuditEntry, error) {
	return r.entries, nil
}

func (r *memAuditRepo) byAction(action domain.AuditAction) []domain.AuditEntry {
	var result []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.Action == action {
			result = append(result, entry)
		}
	}
	return result
}

type recordingEnqueuer struct {
	ids []string
}

func (e *recordingEnqueuer) Enqueue(ticketID string) {
	e.ids = append(e.ids, ticketID)
}

type stubQuota struct {
	allowed bool
	err     error
}

func (q *stubQuota) Allow(context.Context, string) (bool, error) {
	return q.allowed, q.err
}

type serviceFixture struct {
	tickets     *memTicketRepo
	suggestions *memSuggestionRepo
	audits      *memAuditRepo
	enqueuer    *recordingEnqueuer
	quota       *stubQuota
	svc         *TicketService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		tickets:     newMemTicketRepo(),
		suggestions: &memSuggestionRepo{},
		audits:      &memAuditRepo{},
		enqueuer:    &recordingEnqueuer{},
		quota:       &stubQuota{allowed: true},
	}
	f.svc = NewTicketService(TicketDependencies{
		TicketRepo:     f.tickets,
		SuggestionRepo: f.suggestions,
		AuditRepo:      f.audits,
		Dispatcher:     events.NewInMemoryDispatcher(),
		Triage:         f.enqueuer,
		Quota:          f.quota,
	})
	return f
}

var (
	endUser = Caller{ID: "user-1", Role: domain.RoleUser}
	agent   = Caller{ID: "agent-1", Role: domain.RoleAgent}
)

func createTicket(t *testing.T, f *serviceFixture, caller Caller) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), caller, TicketCreateInput{
		Title:       "Refund for double charge",
		Description: "I was charged twice",
		Category:    domain.CategoryBilling,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketPersistsAuditsAndEnqueues(t *testing.T) {
	f := newServiceFixture()

	ticket := createTicket(t, f, endUser)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "user-1", ticket.CreatedBy)
	assert.NotEmpty(t, ticket.TraceID)
	// Request carried no tags; the persisted ticket still gets an
	// empty slice, never nil.
	assert.NotNil(t, ticket.Tags)
	assert.Empty(t, ticket.Tags)
	assert.Equal(t, []string{ticket.ID}, f.enqueuer.ids)

	created := f.audits.byAction(domain.ActionTicketCreated)
	require.Len(t, created, 1)
	assert.Equal(t, domain.ActorUser, created[0].Actor)
	assert.Equal(t, ticket.TraceID, created[0].TraceID)
}

func TestCreateTicketDefaultsCategory(t *testing.T) {
	f := newServiceFixture()

	ticket, err := f.svc.CreateTicket(context.Background(), endUser, TicketCreateInput{
		Title:       "Something odd",
		Description: "No idea what category this is",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOther, ticket.Category)
}

func TestCreateTicketQuotaExceeded(t *testing.T) {
	f := newServiceFixture()
	f.quota.allowed = false

	_, err := f.svc.CreateTicket(context.Background(), endUser, TicketCreateInput{
		Title:       "One too many",
		Description: "quota test",
	})

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RATE_LIMITED", domainErr.Code)
	assert.Empty(t, f.enqueuer.ids)
}

func TestCreateTicketQuotaFailsOpen(t *testing.T) {
	f := newServiceFixture()
	f.quota.allowed = false
	f.quota.err = errors.New("redis down")

	_, err := f.svc.CreateTicket(context.Background(), endUser, TicketCreateInput{
		Title:       "Still works",
		Description: "cache outage must not block filing",
	})

	assert.NoError(t, err)
}

func TestListTicketsScopesEndUsersToOwn(t *testing.T) {
	f := newServiceFixture()
	createTicket(t, f, endUser)

	_, err := f.svc.ListTickets(context.Background(), endUser, TicketFilter{})
	require.NoError(t, err)
	require.NotNil(t, f.tickets.lastFilter.CreatedBy)
	assert.Equal(t, "user-1", *f.tickets.lastFilter.CreatedBy)

	_, err = f.svc.ListTickets(context.Background(), agent, TicketFilter{})
	require.NoError(t, err)
	assert.Nil(t, f.tickets.lastFilter.CreatedBy)
}

func TestGetTicketAccessControl(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	_, err := f.svc.GetTicket(context.Background(), endUser, ticket.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetTicket(context.Background(), agent, ticket.ID)
	assert.NoError(t, err)

	stranger := Caller{ID: "user-2", Role: domain.RoleUser}
	_, err = f.svc.GetTicket(context.Background(), stranger, ticket.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func seedSuggestion(f *serviceFixture, ticketID string) {
	f.suggestions.suggestion = &domain.Suggestion{
		ID:                "sugg-1",
		TicketID:          ticketID,
		PredictedCategory: domain.CategoryBilling,
		DraftReply:        "draft",
		Confidence:        0.8,
	}
}

func TestSubmitFeedbackOverwritesInPlace(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)
	seedSuggestion(f, ticket.ID)

	helpful := true
	err := f.svc.SubmitFeedback(context.Background(), endUser, ticket.ID, &helpful, "spot on")
	require.NoError(t, err)
	require.NotNil(t, f.suggestions.suggestion.Feedback)
	assert.Equal(t, "spot on", f.suggestions.suggestion.Feedback.Comment)

	notHelpful := false
	err = f.svc.SubmitFeedback(context.Background(), endUser, ticket.ID, &notHelpful, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, "changed my mind", f.suggestions.suggestion.Feedback.Comment)
	assert.Equal(t, 2, f.suggestions.feedbackSaves)

	// Every submission leaves its own audit entry.
	assert.Len(t, f.audits.byAction(domain.ActionFeedbackSubmitted), 2)
}

func TestSubmitFeedbackWithoutSuggestion(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	helpful := true
	err := f.svc.SubmitFeedback(context.Background(), endUser, ticket.ID, &helpful, "")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestReplyResolvesAndRecords(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	updated, err := f.svc.Reply(context.Background(), agent, ticket.ID, "Here is the fix.", "")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.AgentReply)
	assert.Equal(t, "Here is the fix.", *updated.AgentReply)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, "agent-1", *updated.AssigneeID)
	assert.NotNil(t, updated.RepliedAt)
	assert.NotNil(t, updated.ResolvedAt)
	assert.Len(t, f.audits.byAction(domain.ActionReplySent), 1)
}

func TestReplyRequiresStaff(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	_, err := f.svc.Reply(context.Background(), endUser, ticket.ID, "nope", "")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestReplyRejectsBackwardTransition(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	_, err := f.svc.Reply(context.Background(), agent, ticket.ID, "first", "")
	require.NoError(t, err)

	_, err = f.svc.Reply(context.Background(), agent, ticket.ID, "again", domain.TicketStatusResolved)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestAssignMovesTicketForward(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	updated, err := f.svc.Assign(context.Background(), agent, ticket.ID, "agent-2")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusAssigned, updated.Status)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, "agent-2", *updated.AssigneeID)
	assert.Len(t, f.audits.byAction(domain.ActionTicketAssigned), 1)
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	updated, err := f.svc.UpdateStatus(context.Background(), agent, ticket.ID, domain.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, updated.Status)
	assert.NotNil(t, updated.ResolvedAt)

	_, err = f.svc.UpdateStatus(context.Background(), agent, ticket.ID, domain.TicketStatusOpen)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestListAuditRequiresAccess(t *testing.T) {
	f := newServiceFixture()
	ticket := createTicket(t, f, endUser)

	entries, err := f.svc.ListAudit(context.Background(), endUser, ticket.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	stranger := Caller{ID: "user-2", Role: domain.RoleUser}
	_, err = f.svc.ListAudit(context.Background(), stranger, ticket.ID)
	assert.Error(t, err)
}
