package smpp

import (
	"context"
	"testing"
	"time"

	"github.com/halftone-labs/smppclient/pdu"
)

func TestPendingTableCompleteResolvesWaiter(t *testing.T) {
	tbl := newPendingTable()
	entry, err := tbl.insert(7)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(time.Millisecond)
		if found := tbl.complete(7, &pdu.SubmitSmResp{MessageID: "m1"}, pdu.StatusOK); !found {
			t.Error("complete() reported no waiter for an inserted sequence")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := tbl.await(ctx, 7, entry, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("await() error = %v", err)
	}
	r, ok := resp.(*pdu.SubmitSmResp)
	if !ok || r.MessageID != "m1" {
		t.Fatalf("await() resp = %#v, want submit_sm_resp{MessageID: m1}", resp)
	}
}

func TestPendingTableCompleteStray(t *testing.T) {
	tbl := newPendingTable()
	if found := tbl.complete(99, &pdu.EnquireLinkResp{}, pdu.StatusOK); found {
		t.Fatal("complete() reported a waiter for a sequence never inserted")
	}
}

func TestPendingTableAwaitTimeout(t *testing.T) {
	tbl := newPendingTable()
	entry, err := tbl.insert(1)
	if err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(20 * time.Millisecond)
	_, err = tbl.await(context.Background(), 1, entry, deadline)
	if err == nil {
		t.Fatal("await() returned nil error on timeout")
	}
	serr, ok := err.(*Error)
	if !ok || serr.Kind != KindResponseTimeout {
		t.Fatalf("await() error = %v, want KindResponseTimeout", err)
	}
	if tbl.has(1) {
		t.Fatal("entry still present in pending table after timeout eviction")
	}
}

func TestPendingTableInsertDuplicateRejected(t *testing.T) {
	tbl := newPendingTable()
	if _, err := tbl.insert(5); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.insert(5); err == nil {
		t.Fatal("insert() allowed a duplicate sequence")
	}
}

func TestPendingTableDrainAll(t *testing.T) {
	tbl := newPendingTable()
	e1, _ := tbl.insert(1)
	e2, _ := tbl.insert(2)
	reason := &Error{Kind: KindIO, Msg: "session closed"}
	tbl.drainAll(reason)

	for _, e := range []*pendingEntry{e1, e2} {
		select {
		case res := <-e.ch:
			if res.err != reason {
				t.Fatalf("drainAll() err = %v, want %v", res.err, reason)
			}
		default:
			t.Fatal("drainAll() did not resolve a pending entry")
		}
	}
	if tbl.size() != 0 {
		t.Fatalf("size() = %d after drainAll, want 0", tbl.size())
	}
}
