package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-triage/internal/triage"
)

// TriageWorker runs triage as a detached background task. Callers
// enqueue a ticket id and get no handle back; the creation request never
// waits on a triage result. Runs for different tickets may execute
// concurrently, one goroutine per worker slot.
type TriageWorker struct {
	orchestrator *triage.Orchestrator
	logger       *zap.Logger
	queue        chan string
	workers      int

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// NewTriageWorker builds a worker pool over the orchestrator.
func NewTriageWorker(orchestrator *triage.Orchestrator, logger *zap.Logger, workers, queueSize int) *TriageWorker {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &TriageWorker{
		orchestrator: orchestrator,
		logger:       logger,
		queue:        make(chan string, queueSize),
		workers:      workers,
	}
}

// Start launches the worker goroutines. The provided context bounds the
// lifetime of all runs.
func (w *TriageWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ticketID, ok := <-w.queue:
					if !ok {
						return
					}
					w.orchestrator.Run(ctx, ticketID)
				}
			}
		}()
	}
}

// Enqueue submits a ticket for triage without blocking the caller. A
// full queue drops the run; the ticket simply stays open with no
// suggestion, which mirrors a failed run.
func (w *TriageWorker) Enqueue(ticketID string) {
	select {
	case w.queue <- ticketID:
	default:
		w.logger.Warn("triage queue full, dropping run", zap.String("ticket_id", ticketID))
	}
}

// Stop closes the queue and waits for in-flight runs to finish.
func (w *TriageWorker) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.mu.Unlock()

	close(w.queue)
	w.wg.Wait()
}
