package smpp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// SessionState is a node in the session lifecycle DAG: CLOSED -> OPEN ->
// (OUTBOUND ->) BOUND_* -> UNBOUND -> CLOSED. OUTBOUND exists for protocol
// completeness; this engine, being ESME-only, never assigns it.
type SessionState int32

const (
	StateClosed SessionState = iota
	StateOpen
	StateOutbound
	StateBoundTx
	StateBoundRx
	StateBoundTRx
	StateUnbound
)

func (s SessionState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateOutbound:
		return "OUTBOUND"
	case StateBoundTx:
		return "BOUND_TX"
	case StateBoundRx:
		return "BOUND_RX"
	case StateBoundTRx:
		return "BOUND_TRX"
	case StateUnbound:
		return "UNBOUND"
	default:
		return "UNKNOWN"
	}
}

// IsBound reports whether s is one of the three bound states.
func (s SessionState) IsBound() bool {
	switch s {
	case StateBoundTx, StateBoundRx, StateBoundTRx:
		return true
	default:
		return false
	}
}

// IsTransmittable reports whether requests may be submitted in state s.
func (s SessionState) IsTransmittable() bool {
	return s == StateBoundTx || s == StateBoundTRx
}

// IsReceivable reports whether deliver_sm is expected to arrive in state s.
func (s SessionState) IsReceivable() bool {
	return s == StateBoundRx || s == StateBoundTRx
}

// legalTransitions enumerates the DAG's edges, excluding the "any state may
// transition to CLOSED" rule which transition() checks separately.
var legalTransitions = map[SessionState]map[SessionState]bool{
	StateClosed:   {StateOpen: true},
	StateOpen:     {StateOutbound: true, StateBoundTx: true, StateBoundRx: true, StateBoundTRx: true},
	StateOutbound: {StateBoundTx: true, StateBoundRx: true, StateBoundTRx: true},
	StateBoundTx:  {StateUnbound: true},
	StateBoundRx:  {StateUnbound: true},
	StateBoundTRx: {StateUnbound: true},
	StateUnbound:  {},
}

func legalTransition(old, newState SessionState) bool {
	if old == newState {
		return true
	}
	if newState == StateClosed {
		return old != StateClosed
	}
	return legalTransitions[old][newState]
}

// StateListener is notified after a successful state transition. Panics
// raised from a listener are recovered and logged; they never propagate to
// the goroutine driving the transition.
type StateListener func(newState, oldState SessionState)

// sessionContext owns the authoritative SessionState for a Session plus the
// activity clock the keepalive loop watches. State changes are serialized by
// a channel-based lock rather than sync.Mutex so bounded-wait callers can
// give up after a deadline instead of blocking indefinitely.
type sessionContext struct {
	lock chan struct{}

	state atomic.Int32

	lastActivity atomic.Int64

	listenersMu sync.Mutex
	listeners   []StateListener

	log zerolog.Logger
}

func newSessionContext(log zerolog.Logger) *sessionContext {
	c := &sessionContext{
		lock: make(chan struct{}, 1),
		log:  log,
	}
	c.lock <- struct{}{}
	c.state.Store(int32(StateClosed))
	c.lastActivity.Store(time.Now().UnixNano())
	return c
}

// State returns the current state without blocking.
func (c *sessionContext) State() SessionState {
	return SessionState(c.state.Load())
}

// NotifyActivity records that a PDU was just read off the wire; the reader
// calls it for every successfully decoded inbound PDU. Idle detection for
// the keepalive is driven by the reader's read deadline, not by this value.
func (c *sessionContext) NotifyActivity() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// LastActivity returns the time of the most recent NotifyActivity call.
func (c *sessionContext) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// AddListener registers l to be called after every future transition. The
// listener list is copy-on-write so AddListener never blocks a transition in
// progress and a transition never blocks a concurrent AddListener.
func (c *sessionContext) AddListener(l StateListener) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	next := make([]StateListener, len(c.listeners)+1)
	copy(next, c.listeners)
	next[len(next)-1] = l
	c.listeners = next
}

func (c *sessionContext) acquire(ctx context.Context) bool {
	select {
	case <-c.lock:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *sessionContext) release() {
	c.lock <- struct{}{}
}

// transition performs the state change under the context-bounded lock.
// acquired reports whether the lock was obtained within ctx's deadline; err
// is only meaningful when acquired is true, and reports an illegal edge.
func (c *sessionContext) transition(ctx context.Context, newState SessionState) (acquired bool, err error) {
	if !c.acquire(ctx) {
		return false, nil
	}
	defer c.release()
	old := c.State()
	if old == newState {
		return true, nil
	}
	if !legalTransition(old, newState) {
		return true, &Error{Kind: KindIllegalState, Msg: fmt.Sprintf("illegal transition %s -> %s", old, newState)}
	}
	c.state.Store(int32(newState))
	c.notifyListeners(newState, old)
	return true, nil
}

func (c *sessionContext) notifyListeners(newState, old SessionState) {
	c.listenersMu.Lock()
	snapshot := c.listeners
	c.listenersMu.Unlock()
	for _, l := range snapshot {
		c.invokeListener(l, newState, old)
	}
}

func (c *sessionContext) invokeListener(l StateListener, newState, old SessionState) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("new_state", newState.String()).Msg("state listener panicked")
		}
	}()
	l(newState, old)
}

// Open transitions CLOSED -> OPEN, blocking until the lock is free.
func (c *sessionContext) Open() error {
	_, err := c.transition(context.Background(), StateOpen)
	return err
}

// OpenCtx is the bounded-wait form of Open.
func (c *sessionContext) OpenCtx(ctx context.Context) (bool, error) {
	return c.transition(ctx, StateOpen)
}

// Bound transitions OPEN (or OUTBOUND) into the bound state named by target.
func (c *sessionContext) Bound(target SessionState) error {
	_, err := c.transition(context.Background(), target)
	return err
}

// BoundCtx is the bounded-wait form of Bound.
func (c *sessionContext) BoundCtx(ctx context.Context, target SessionState) (bool, error) {
	return c.transition(ctx, target)
}

// Unbound transitions a bound state to UNBOUND.
func (c *sessionContext) Unbound() error {
	_, err := c.transition(context.Background(), StateUnbound)
	return err
}

// UnboundCtx is the bounded-wait form of Unbound.
func (c *sessionContext) UnboundCtx(ctx context.Context) (bool, error) {
	return c.transition(ctx, StateUnbound)
}

// Close transitions any state to CLOSED; it is idempotent.
func (c *sessionContext) Close() error {
	_, err := c.transition(context.Background(), StateClosed)
	return err
}

// CloseCtx is the bounded-wait form of Close.
func (c *sessionContext) CloseCtx(ctx context.Context) (bool, error) {
	return c.transition(ctx, StateClosed)
}
