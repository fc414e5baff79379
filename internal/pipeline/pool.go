package pipeline

import (
	"context"
	"sync"

	"github.com/stardeck/logbook/internal/infrastructure/logging"
)

// Scheduler accepts pipeline work. Implementations must not block the
// caller: entry upserts happen on request paths.
type Scheduler interface {
	Schedule(entryID string)
}

// Pool is the in-process Scheduler: a fixed set of workers draining a
// bounded queue. When the queue is full the trigger is dropped with a
// warning; the entry stays UPLOADED and a later upsert re-triggers it.
type Pool struct {
	orchestrator *Orchestrator
	logger       logging.Logger

	queue chan string
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewPool(orchestrator *Orchestrator, logger logging.Logger, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	p := &Pool{
		orchestrator: orchestrator,
		logger:       logger,
		queue:        make(chan string, queueSize),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) Schedule(entryID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Warn(logging.Pipeline, logging.StatusChange, "pool closed, dropping trigger", map[logging.ExtraKey]any{
			logging.EntryID: entryID,
		})
		return
	}

	select {
	case p.queue <- entryID:
	default:
		p.logger.Warn(logging.Pipeline, logging.StatusChange, "queue full, dropping trigger", map[logging.ExtraKey]any{
			logging.EntryID: entryID,
		})
	}
}

// Close stops accepting work and waits for in-flight runs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for entryID := range p.queue {
		p.orchestrator.Run(context.Background(), entryID)
	}
}
