package smpp

import (
	"context"
	"net"
	"time"
)

// SessionGroup shares a single processor pool across many Sessions, so a
// fleet of binds to the same SMSC is bounded by one worker budget instead of
// one per connection.
type SessionGroup struct {
	pool *processorPool
	cfg  Config
}

// NewSessionGroup creates a group whose shared pool runs at
// cfg.PduProcessorDegree workers and cfg.QueueCapacity queue depth from the
// start (there is no pre-bind degree-1 phase for a group: multiple sessions
// may already be bound while new ones are still binding).
func NewSessionGroup(cfg Config) *SessionGroup {
	cfg.setDefaults()
	pool := newProcessorPool(cfg.QueueCapacity, cfg.Metrics)
	pool.Resize(cfg.PduProcessorDegree)
	return &SessionGroup{pool: pool, cfg: cfg}
}

// NewSession wraps conn in a new Session that uses the group's shared pool.
// Per-session fields of cfg (EnquireLinkTimer, TransactionTimer, Handler,
// SendLimiter, ID, Logger) are honored; PduProcessorDegree and QueueCapacity
// are ignored since the pool is already sized.
func (g *SessionGroup) NewSession(conn net.Conn, cfg Config) *Session {
	cfg.setDefaults()
	cfg.PduProcessorDegree = g.cfg.PduProcessorDegree
	cfg.QueueCapacity = g.cfg.QueueCapacity
	return newSession(conn, cfg, g.pool, false)
}

// Shutdown stops the shared pool, bounding the wait by
// 1000ms + singleTaskTimeout*(queued/degree), after which it cancels the
// remaining workers outright rather than wait indefinitely.
func (g *SessionGroup) Shutdown(ctx context.Context, singleTaskTimeout time.Duration) {
	queued := len(g.pool.queue)
	degree := g.cfg.PduProcessorDegree
	if degree <= 0 {
		degree = 1
	}
	budget := time.Second + singleTaskTimeout*time.Duration(queued/degree)
	wctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	// Let the workers drain the queue until it is empty or the budget is spent.
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for len(g.pool.queue) > 0 && wctx.Err() == nil {
		select {
		case <-tick.C:
		case <-wctx.Done():
		}
	}

	g.pool.cancel()

	done := make(chan struct{})
	go func() {
		_ = g.pool.group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-wctx.Done():
	}
}
