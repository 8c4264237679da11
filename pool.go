package smpp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/halftone-labs/smppclient/pdu"
	"golang.org/x/sync/errgroup"
)

// errQueueFull signals the reader that a request PDU was dropped because the
// processor queue was saturated; the reader answers with ESME_RTHROTTLED
// itself rather than enqueueing the rejection.
var errQueueFull = errors.New("smpp: processor queue full")

// task is one decoded PDU awaiting processing. It carries its own session so
// a single processorPool can be shared by a SessionGroup.
type task struct {
	sess       *Session
	header     pdu.Header
	body       pdu.PDU
	isResponse bool
}

// processorPool is a bounded worker pool with asymmetric backpressure: a
// response PDU is always eventually accepted (blocking the reader up to
// maxResponseEnqueueWait), while a request PDU is rejected immediately, with
// no blocking, once the queue is full. A Session's own pool runs with a
// single worker before bind and grows to its configured degree once the
// Session completes bind; a SessionGroup's shared pool is sized when the
// group is created.
type processorPool struct {
	queue   chan task
	metrics *Metrics

	mu      sync.Mutex
	degree  int
	group   *errgroup.Group
	groupCh context.Context
	cancel  context.CancelFunc
}

func newProcessorPool(capacity int, metrics *Metrics) *processorPool {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p := &processorPool{
		queue:   make(chan task, capacity),
		metrics: metrics,
		group:   g,
		groupCh: gctx,
		cancel:  cancel,
	}
	p.Resize(1)
	return p
}

func (p *processorPool) worker() error {
	for {
		select {
		case <-p.groupCh.Done():
			return nil
		case t, ok := <-p.queue:
			if !ok {
				return nil
			}
			p.process(t)
			p.metrics.setQueueDepth(len(p.queue))
		}
	}
}

// Resize grows the pool to n workers. It never shrinks: the engine only ever
// grows from the pre-bind degree of 1 up to the configured degree, so
// shrinking (which would require cooperative worker exit) is unneeded.
func (p *processorPool) Resize(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n <= p.degree {
		return
	}
	add := n - p.degree
	p.degree = n
	for i := 0; i < add; i++ {
		p.group.Go(p.worker)
	}
}

// submit enqueues t. Response PDUs block (up to maxResponseEnqueueWait, or
// ctx's deadline if sooner) rather than be dropped. Request PDUs never
// block: a full queue yields errQueueFull immediately.
func (p *processorPool) submit(ctx context.Context, t task) error {
	if t.isResponse {
		select {
		case p.queue <- t:
			p.metrics.setQueueDepth(len(p.queue))
			return nil
		default:
		}
		timer := time.NewTimer(maxResponseEnqueueWait)
		defer timer.Stop()
		select {
		case p.queue <- t:
			p.metrics.setQueueDepth(len(p.queue))
			return nil
		case <-timer.C:
			return &Error{Kind: KindQueueMax, Msg: "processor queue full for response pdu", Temp: true}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case p.queue <- t:
		p.metrics.setQueueDepth(len(p.queue))
		return nil
	default:
		p.metrics.incThrottled()
		return errQueueFull
	}
}

func (p *processorPool) process(t task) {
	s := t.sess
	if t.isResponse {
		found := s.pending.complete(t.header.Sequence(), t.body, t.header.Status())
		s.metrics.setPendingSize(s.pending.size())
		if !found {
			s.log.Debug().Uint32("seq", t.header.Sequence()).Msg("stray response, no matching pending request")
		}
		return
	}

	switch classifyInbound(s.ctx.State(), t.header.CommandID()) {
	case actionEnquireLink:
		s.writeResponse(&pdu.EnquireLinkResp{}, t.header.Sequence(), pdu.StatusOK)
	case actionUnbindRequest:
		s.writeResponse(&pdu.UnbindResp{}, t.header.Sequence(), pdu.StatusOK)
		if err := s.ctx.Unbound(); err != nil {
			s.log.Warn().Err(err).Msg("transitioning to unbound on peer-initiated unbind")
		}
		s.close()
	case actionInvalidBindStatus:
		resp, err := pdu.SafeNewResponsePDU(t.header.CommandID())
		if err != nil {
			s.log.Error().Err(err).Msg("building invalid-bind-status response")
			return
		}
		s.writeResponse(resp, t.header.Sequence(), pdu.StatusInvBnd)
	case actionUnknownCommand:
		s.writeResponse(&pdu.GenericNack{}, t.header.Sequence(), pdu.StatusInvCmdID)
	case actionIgnore:
		s.log.Debug().Uint32("command_id", uint32(t.header.CommandID())).Msg("ignoring pdu for current state")
	case actionHandle:
		s.handleInbound(t.header, t.body)
	}
}

// Shutdown cancels all workers and waits for each to finish its in-flight
// task. Tasks still in the queue are not processed.
func (p *processorPool) Shutdown() {
	p.cancel()
	_ = p.group.Wait()
}
