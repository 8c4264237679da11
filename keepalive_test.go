package smpp_test

import (
	"context"
	"testing"
	"time"

	"github.com/halftone-labs/smppclient"
	"github.com/halftone-labs/smppclient/internal/smsctest"
	"github.com/halftone-labs/smppclient/pdu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKeepaliveProbeOnIdle covers S5: once the connection sits idle past
// EnquireLinkTimer, the session probes with enquire_link; an OK response
// keeps the session bound.
func TestKeepaliveProbeOnIdle(t *testing.T) {
	addr := startSMSC(t, func(c *smsctest.Conn) {
		_, err := smsctest.AcceptBind(c, "SMSC")
		assert.NoError(t, err)

		h, body, err := c.ReadPDU()
		require.NoError(t, err)
		_, ok := body.(*pdu.EnquireLink)
		require.True(t, ok, "expected enquire_link probe after idle period")
		assert.NoError(t, c.Respond(&pdu.EnquireLinkResp{}, h.Sequence()))

		for {
			if _, _, err := c.ReadPDU(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sess, err := smpp.Dial(ctx, "tcp", addr, smpp.BindTransceiver, smpp.BindParameter{
		SystemID: "ESME",
		Password: "pw",
	}, smpp.Config{
		EnquireLinkTimer: 50 * time.Millisecond,
		TransactionTimer: time.Second,
	})
	require.NoError(t, err)
	defer sess.Close()

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, smpp.StateBoundTRx, sess.State(), "session must stay bound after a healthy probe")
}

// TestKeepaliveProbeTimeoutClosesSession covers S5's failure branch: a probe
// that never receives a response closes the session outright.
func TestKeepaliveProbeTimeoutClosesSession(t *testing.T) {
	addr := startSMSC(t, func(c *smsctest.Conn) {
		_, err := smsctest.AcceptBind(c, "SMSC")
		assert.NoError(t, err)
		// never answer the probe that follows
		for {
			if _, _, err := c.ReadPDU(); err != nil {
				return
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sess, err := smpp.Dial(ctx, "tcp", addr, smpp.BindTransceiver, smpp.BindParameter{
		SystemID: "ESME",
		Password: "pw",
	}, smpp.Config{
		EnquireLinkTimer: 50 * time.Millisecond,
		TransactionTimer: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	defer sess.Close()

	select {
	case <-sess.NotifyClosed():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not close after an unanswered keepalive probe")
	}
}

// TestKeepaliveProbeNegativeResponseUnbinds covers S5's rejection branch: a
// probe answered with a non-OK status triggers an unbind-and-close rather
// than leaving the session bound to a peer that rejected liveness checks.
func TestKeepaliveProbeNegativeResponseUnbinds(t *testing.T) {
	unbindSeen := make(chan struct{})
	addr := startSMSC(t, func(c *smsctest.Conn) {
		_, err := smsctest.AcceptBind(c, "SMSC")
		assert.NoError(t, err)

		h, body, err := c.ReadPDU()
		require.NoError(t, err)
		_, ok := body.(*pdu.EnquireLink)
		require.True(t, ok)
		assert.NoError(t, c.WritePDU(&pdu.EnquireLinkResp{}, h.Sequence(), pdu.StatusSysErr))

		h2, body2, err := c.ReadPDU()
		if err != nil {
			return
		}
		if _, ok := body2.(*pdu.Unbind); ok {
			assert.NoError(t, c.Respond(&pdu.UnbindResp{}, h2.Sequence()))
			close(unbindSeen)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sess, err := smpp.Dial(ctx, "tcp", addr, smpp.BindTransceiver, smpp.BindParameter{
		SystemID: "ESME",
		Password: "pw",
	}, smpp.Config{
		EnquireLinkTimer: 50 * time.Millisecond,
		TransactionTimer: time.Second,
	})
	require.NoError(t, err)
	defer sess.Close()

	select {
	case <-unbindSeen:
	case <-time.After(2 * time.Second):
		t.Fatal("session never unbound after a negative enquire_link_resp")
	}
	select {
	case <-sess.NotifyClosed():
	case <-time.After(time.Second):
		t.Fatal("session did not close after unbinding")
	}
}
