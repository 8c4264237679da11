// Package smpp implements an SMPP v3.4 external short message entity (ESME)
// session engine: a client that binds to an SMSC and exchanges PDUs over a
// single TCP connection.
//
// A Session is the main carrier of the protocol and enforcer of its state
// machine. The simplest way to obtain one, bound and ready to send, is Dial:
//
//	sess, err := smpp.Dial(ctx, "tcp", "smsc.example.com:2775", smpp.BindTransceiver, smpp.BindParameter{
//	    SystemID: "client",
//	    Password: "secret",
//	}, smpp.Config{})
//
// A connection that's already established can be wrapped directly:
//
//	sess := smpp.NewSession(conn, smpp.Config{})
//	systemID, err := sess.BindTransceiver(ctx, smpp.BindParameter{...})
//
// Once bound, the session can submit short messages and query, cancel or
// replace previously submitted ones:
//
//	msgID, err := sess.SubmitSm(ctx, &pdu.SubmitSm{
//	    SourceAddr:      "11111111",
//	    DestinationAddr: "22222222",
//	    ShortMessage:    "Hello from SMPP!",
//	})
//
// Inbound deliver_sm, data_sm and alert_notification requests are routed to
// Config.Handler, similar in spirit to net/http's Handler:
//
//	cfg := smpp.Config{
//	    Handler: smpp.HandlerFunc(func(ctx *smpp.RequestContext) {
//	        if dsm, ok := ctx.DeliverSm(); ok {
//	            log.Print(dsm.ShortMessage)
//	        }
//	        ctx.Respond(&pdu.DeliverSmResp{}, pdu.StatusOK)
//	    }),
//	}
//
// A session that is no longer needed must be closed:
//
//	sess.Close()
package smpp

import (
	"context"
	"net"
)

// Dial opens network/addr and binds a new Session to it using bt and p,
// bounded by ctx. On any failure the partially-constructed connection or
// session is closed before returning.
func Dial(ctx context.Context, network, addr string, bt BindType, p BindParameter, cfg Config) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	sess := NewSession(conn, cfg)
	if _, err := sess.bind(ctx, bt, p); err != nil {
		sess.close()
		return nil, err
	}
	return sess, nil
}
