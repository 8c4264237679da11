package smpp_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/halftone-labs/smppclient"
	"github.com/halftone-labs/smppclient/internal/smsctest"
	"github.com/halftone-labs/smppclient/pdu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSMSC(t *testing.T, h smsctest.Handler) string {
	t.Helper()
	addr, stop, err := smsctest.ListenAndServe(h)
	require.NoError(t, err)
	t.Cleanup(func() { stop() })
	return addr
}

// TestSuccessfulBind covers S1: a bind_transceiver answered with status 0
// lands the session in BOUND_TRX and surfaces the peer's system_id.
func TestSuccessfulBind(t *testing.T) {
	addr := startSMSC(t, func(c *smsctest.Conn) {
		_, err := smsctest.AcceptBind(c, "SMSC")
		assert.NoError(t, err)
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
	}, smpp.Config{})
	require.NoError(t, err)
	defer sess.Close()

	assert.Equal(t, "SMSC", sess.PeerSystemID())
	assert.Equal(t, smpp.StateBoundTRx, sess.State())
}

// TestNegativeBind covers S2: a bind rejected with a non-OK status surfaces
// a negative-response error and leaves the session closed.
func TestNegativeBind(t *testing.T) {
	addr := startSMSC(t, func(c *smsctest.Conn) {
		assert.NoError(t, smsctest.RejectBind(c, pdu.StatusBindFail))
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sess, err := smpp.Dial(ctx, "tcp", addr, smpp.BindTransceiver, smpp.BindParameter{
		SystemID: "ESME",
		Password: "pw",
	}, smpp.Config{})
	require.Error(t, err)
	require.Nil(t, sess)

	var serr *smpp.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, smpp.KindNegativeResponse, serr.Kind)
	assert.Equal(t, pdu.StatusBindFail, serr.Status)
}

// TestSubmitSmTimeout covers S3: a submit_sm the peer never answers fails
// with KindResponseTimeout, after which the session is still usable.
func TestSubmitSmTimeout(t *testing.T) {
	respondNext := make(chan struct{}, 1)
	addr := startSMSC(t, func(c *smsctest.Conn) {
		_, err := smsctest.AcceptBind(c, "SMSC")
		assert.NoError(t, err)
		for {
			h, body, err := c.ReadPDU()
			if err != nil {
				return
			}
			sm, ok := body.(*pdu.SubmitSm)
			if !ok {
				continue
			}
			select {
			case <-respondNext:
				assert.NoError(t, c.Respond(sm.Response("msg-1"), h.Sequence()))
			default:
				// first submit_sm: drop it to force a timeout
				respondNext <- struct{}{}
			}
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sess, err := smpp.Dial(ctx, "tcp", addr, smpp.BindTransceiver, smpp.BindParameter{
		SystemID: "ESME",
		Password: "pw",
	}, smpp.Config{TransactionTimer: 100 * time.Millisecond})
	require.NoError(t, err)
	defer sess.Close()

	start := time.Now()
	_, err = sess.SubmitSm(context.Background(), &pdu.SubmitSm{SourceAddr: "1", DestinationAddr: "2", ShortMessage: "hi"})
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	var serr *smpp.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, smpp.KindResponseTimeout, serr.Kind)
	assert.Equal(t, smpp.StateBoundTRx, sess.State())

	msgID, err := sess.SubmitSm(context.Background(), &pdu.SubmitSm{SourceAddr: "1", DestinationAddr: "2", ShortMessage: "hi again"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", msgID)
}

// TestGracefulUnbind covers S6: UnbindAndClose sends unbind, waits for
// unbind_resp, and leaves the session closed either way.
func TestGracefulUnbind(t *testing.T) {
	unbound := make(chan struct{})
	addr := startSMSC(t, func(c *smsctest.Conn) {
		_, err := smsctest.AcceptBind(c, "SMSC")
		assert.NoError(t, err)
		h, _, err := c.ReadPDU()
		if err != nil {
			return
		}
		assert.NoError(t, c.Respond(&pdu.UnbindResp{}, h.Sequence()))
		close(unbound)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sess, err := smpp.Dial(ctx, "tcp", addr, smpp.BindTransceiver, smpp.BindParameter{
		SystemID: "ESME",
		Password: "pw",
	}, smpp.Config{})
	require.NoError(t, err)

	require.NoError(t, sess.UnbindAndClose(context.Background()))

	select {
	case <-unbound:
	case <-time.After(time.Second):
		t.Fatal("peer never saw unbind")
	}
	select {
	case <-sess.NotifyClosed():
	case <-time.After(time.Second):
		t.Fatal("session did not close")
	}
}

// TestSubmitSmBeforeBindRejected exercises checkTransmittable: an
// application PDU sent from a non-transmittable state fails fast with
// KindIllegalState, without touching the wire.
func TestSubmitSmBeforeBindRejected(t *testing.T) {
	addr := startSMSC(t, func(c *smsctest.Conn) {
		for {
			if _, _, err := c.ReadPDU(); err != nil {
				return
			}
		}
	})

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	sess := smpp.NewSession(conn, smpp.Config{})
	defer sess.Close()

	_, err = sess.SubmitSm(context.Background(), &pdu.SubmitSm{})
	require.Error(t, err)
	var serr *smpp.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, smpp.KindIllegalState, serr.Kind)
}

// TestThrottling covers S4: with queue capacity 2 and pool degree 1, 5
// deliver_sm pushed faster than the slow handler drains them must throttle
// at least the tail of the burst without resetting the connection.
func TestThrottling(t *testing.T) {
	var slowHandler smpp.HandlerFunc = func(ctx *smpp.RequestContext) {
		time.Sleep(75 * time.Millisecond)
		dsm, ok := ctx.DeliverSm()
		if !ok {
			return
		}
		_ = ctx.Respond(dsm.Response(""), pdu.StatusOK)
	}

	var serverConn *smsctest.Conn
	ready := make(chan struct{})
	done := make(chan struct{})
	addr := startSMSC(t, func(c *smsctest.Conn) {
		serverConn = c
		_, err := smsctest.AcceptBind(c, "SMSC")
		assert.NoError(t, err)
		close(ready)
		<-done // test owns all further reads/writes on c until it's finished
	})
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sess, err := smpp.Dial(ctx, "tcp", addr, smpp.BindTransceiver, smpp.BindParameter{
		SystemID: "ESME",
		Password: "pw",
	}, smpp.Config{
		QueueCapacity:      2,
		PduProcessorDegree: 1,
		Handler:            slowHandler,
	})
	require.NoError(t, err)
	defer sess.Close()

	<-ready
	const n = 5
	for i := uint32(1); i <= n; i++ {
		require.NoError(t, serverConn.WritePDU(&pdu.DeliverSm{ShortMessage: "hi"}, i, pdu.StatusOK))
	}

	throttled := 0
	for i := 0; i < n; i++ {
		serverConn.SetReadDeadline(time.Now().Add(2 * time.Second))
		h, _, err := serverConn.ReadPDU()
		require.NoError(t, err)
		if h.Status() == pdu.StatusThrottled {
			throttled++
		}
	}
	assert.GreaterOrEqual(t, throttled, 2, "expected at least the tail of the burst to be throttled")
	assert.Equal(t, smpp.StateBoundTRx, sess.State(), "session must survive a throttled burst")
}
