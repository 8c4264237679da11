package smpp

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSessionContextLegalTransitions(t *testing.T) {
	cases := []struct {
		name string
		run  func(c *sessionContext) error
		want SessionState
	}{
		{"open", func(c *sessionContext) error { return c.Open() }, StateOpen},
		{"bind_trx", func(c *sessionContext) error {
			c.Open()
			return c.Bound(StateBoundTRx)
		}, StateBoundTRx},
		{"unbind", func(c *sessionContext) error {
			c.Open()
			c.Bound(StateBoundRx)
			return c.Unbound()
		}, StateUnbound},
		{"close_from_any_state", func(c *sessionContext) error {
			c.Open()
			c.Bound(StateBoundTx)
			return c.Close()
		}, StateClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newSessionContext(zerolog.Nop())
			if err := tc.run(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := c.State(); got != tc.want {
				t.Fatalf("State() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSessionContextIllegalTransition(t *testing.T) {
	c := newSessionContext(zerolog.Nop())
	if err := c.Bound(StateBoundTRx); err == nil {
		t.Fatal("Bound() from CLOSED succeeded, want illegal-transition error")
	}
}

func TestSessionContextBoundedWaitTimesOutOnHeldLock(t *testing.T) {
	c := newSessionContext(zerolog.Nop())
	<-c.lock // hold the lock as if a transition were already in progress

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	acquired, err := c.OpenCtx(ctx)
	if acquired {
		t.Fatal("OpenCtx() acquired the lock while it was held")
	}
	if err != nil {
		t.Fatalf("OpenCtx() err = %v, want nil when not acquired", err)
	}
}

func TestSessionContextListenerPanicRecovered(t *testing.T) {
	c := newSessionContext(zerolog.Nop())
	called := make(chan struct{}, 1)
	c.AddListener(func(newState, old SessionState) {
		panic("boom")
	})
	c.AddListener(func(newState, old SessionState) {
		called <- struct{}{}
	})
	if err := c.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("second listener was not invoked after first panicked")
	}
}
