package smpp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/halftone-labs/smppclient/pdu"
)

type pendingResult struct {
	pdu pdu.PDU
	err error
}

type pendingEntry struct {
	ch chan pendingResult
}

// pendingTable correlates outbound requests to their responses by
// sequence_number, and guarantees each entry is resolved exactly once:
// either by a matching response, by timeout, by context cancellation, or by
// drainAll on session close.
type pendingTable struct {
	mu      sync.Mutex
	entries map[uint32]*pendingEntry
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[uint32]*pendingEntry)}
}

func (t *pendingTable) has(seq uint32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[seq]
	return ok
}

func (t *pendingTable) insert(seq uint32) (*pendingEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[seq]; ok {
		return nil, fmt.Errorf("smpp: sequence %d already pending", seq)
	}
	e := &pendingEntry{ch: make(chan pendingResult, 1)}
	t.entries[seq] = e
	return e, nil
}

func (t *pendingTable) remove(seq uint32) {
	t.mu.Lock()
	delete(t.entries, seq)
	t.mu.Unlock()
}

func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// complete resolves the entry for seq with a response PDU and the error
// derived from its command_status. It reports whether a waiter was found;
// a stray response (no matching entry) still counts as session activity to
// the caller, so it must check this return value rather than assume delivery.
func (t *pendingTable) complete(seq uint32, p pdu.PDU, status pdu.Status) bool {
	t.mu.Lock()
	e, ok := t.entries[seq]
	if ok {
		delete(t.entries, seq)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	e.ch <- pendingResult{pdu: p, err: toError(status)}
	return true
}

// await blocks until entry is resolved, ctx is done, or deadline elapses,
// whichever comes first. On timeout or cancellation it evicts the entry so a
// late response is logged as stray rather than delivered to a dead waiter.
// An expired ctx deadline is reported as a response timeout too.
func (t *pendingTable) await(ctx context.Context, seq uint32, entry *pendingEntry, deadline time.Time) (pdu.PDU, error) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case res := <-entry.ch:
		return res.pdu, res.err
	case <-timer.C:
	case <-ctx.Done():
		if err := ctx.Err(); !errors.Is(err, context.DeadlineExceeded) {
			t.remove(seq)
			return nil, err
		}
	}
	t.remove(seq)
	return nil, &Error{Kind: KindResponseTimeout, Msg: fmt.Sprintf("no response for sequence %d within deadline", seq), Temp: true}
}

// drainAll resolves every still-pending entry with reason, used when a
// session closes while requests are outstanding.
func (t *pendingTable) drainAll(reason error) {
	t.mu.Lock()
	entries := t.entries
	t.entries = make(map[uint32]*pendingEntry)
	t.mu.Unlock()
	for _, e := range entries {
		select {
		case e.ch <- pendingResult{err: reason}:
		default:
		}
	}
}
