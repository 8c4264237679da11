package smpp

import (
	"context"
	"net"

	"github.com/halftone-labs/smppclient/pdu"
)

// Handler processes an inbound deliver_sm, data_sm or alert_notification
// request. ServeSMPP must call Respond exactly once for deliver_sm and
// data_sm (alert_notification has no response PDU in the protocol); if it
// returns without responding, the session auto-responds with ESME_ROK and an
// empty message_id. A panic inside ServeSMPP is recovered and translated
// into ESME_RX_T_APPN.
type Handler interface {
	ServeSMPP(ctx *RequestContext)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx *RequestContext)

// ServeSMPP implements Handler.
func (f HandlerFunc) ServeSMPP(ctx *RequestContext) { f(ctx) }

// DefaultHandler auto-acknowledges every deliver_sm/data_sm with ESME_ROK
// and logs alert_notification; it is used when Config.Handler is nil.
var DefaultHandler Handler = HandlerFunc(func(ctx *RequestContext) {
	switch req := ctx.req.(type) {
	case *pdu.DeliverSm:
		_ = ctx.Respond(req.Response(""), pdu.StatusOK)
	case *pdu.DataSm:
		_ = ctx.Respond(req.Response(""), pdu.StatusOK)
	case *pdu.AlertNotification:
		ctx.sess.log.Debug().Str("source_addr", req.SourceAddr).Msg("alert_notification received, no handler configured")
	}
})

// RequestContext wraps one inbound request PDU and the means to answer it.
type RequestContext struct {
	sess       *Session
	ctx        context.Context
	seq        uint32
	req        pdu.PDU
	responded  bool
	closeAfter bool
}

// Context returns the deadline-bound context the handler should observe.
func (c *RequestContext) Context() context.Context { return c.ctx }

// SessionID returns the owning Session's id.
func (c *RequestContext) SessionID() string { return c.sess.id }

// RemoteAddr returns the peer address of the owning Session's connection.
func (c *RequestContext) RemoteAddr() net.Addr { return c.sess.conn.RemoteAddr() }

// CommandID returns the inbound PDU's command_id.
func (c *RequestContext) CommandID() pdu.CommandID { return c.req.CommandID() }

// DeliverSm type-asserts the inbound PDU, reporting false on a mismatch.
func (c *RequestContext) DeliverSm() (*pdu.DeliverSm, bool) {
	p, ok := c.req.(*pdu.DeliverSm)
	return p, ok
}

// DataSm type-asserts the inbound PDU, reporting false on a mismatch.
func (c *RequestContext) DataSm() (*pdu.DataSm, bool) {
	p, ok := c.req.(*pdu.DataSm)
	return p, ok
}

// AlertNotification type-asserts the inbound PDU, reporting false on a
// mismatch.
func (c *RequestContext) AlertNotification() (*pdu.AlertNotification, bool) {
	p, ok := c.req.(*pdu.AlertNotification)
	return p, ok
}

// Respond writes resp back to the peer with the given status, correlated by
// the inbound PDU's sequence_number. Calling it more than once returns an
// IllegalState error without writing anything.
func (c *RequestContext) Respond(resp pdu.PDU, status pdu.Status) error {
	if c.responded {
		return &Error{Kind: KindIllegalState, Msg: "response already sent for this request"}
	}
	c.responded = true
	return c.sess.writeResponse(resp, c.seq, status)
}

// CloseSession requests that the owning Session close once ServeSMPP
// returns. Safe to call from within ServeSMPP; it does not close
// re-entrantly mid-callback.
func (c *RequestContext) CloseSession() {
	c.closeAfter = true
}
