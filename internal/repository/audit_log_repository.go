package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-triage/internal/domain"
)

// AuditLogRepository stores append-only audit entries. Entries are
// never updated or deleted; listing orders by timestamp ascending so a
// ticket's timeline reads in the order the orchestrator wrote it.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditEntry, error)
	ListByTrace(ctx context.Context, traceID string) ([]domain.AuditEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository builds repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (ticket_id, trace_id, actor, action, meta, ts)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.TraceID,
		entry.Actor,
		entry.Action,
		entry.Meta,
		entry.Timestamp,
	).Scan(&entry.ID)
}

func (r *auditLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditEntry, error) {
	// seq breaks timestamp ties in true insertion order.
	const query = `
        SELECT id, ticket_id, trace_id, actor, action, meta, ts
        FROM audit_log WHERE ticket_id=$1 ORDER BY ts ASC, seq ASC`
	return r.list(ctx, query, ticketID)
}

func (r *auditLogRepository) ListByTrace(ctx context.Context, traceID string) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, ticket_id, trace_id, actor, action, meta, ts
        FROM audit_log WHERE trace_id=$1 ORDER BY ts ASC, seq ASC`
	return r.list(ctx, query, traceID)
}

func (r *auditLogRepository) list(ctx context.Context, query, arg string) ([]domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.TraceID,
			&entry.Actor,
			&entry.Action,
			&entry.Meta,
			&entry.Timestamp,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
