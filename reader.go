package smpp

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/halftone-labs/smppclient/pdu"
)

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// runReader is the single goroutine that reads PDUs off the wire while the
// session is OPEN, OUTBOUND or bound. Every decoded PDU is handed to the
// processor pool, which applies the asymmetric backpressure policy: a request
// PDU that does not fit is throttled at once, while a response PDU may hold
// the reader for up to maxResponseEnqueueWait until the queue has room.
func (s *Session) runReader() {
	defer s.wg.Done()
	for {
		if st := s.ctx.State(); !st.IsBound() && st != StateOpen && st != StateOutbound {
			return
		}

		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.EnquireLinkTimer))
		h, body, err := s.dec.Decode()
		if err != nil {
			if isTimeout(err) {
				s.keepalive.notifyNoActivity()
				continue
			}
			s.handleReadError(h, err)
			return
		}

		s.ctx.NotifyActivity()

		t := task{sess: s, header: h, body: body, isResponse: !pdu.IsRequest(h.CommandID())}
		if err := s.pool.submit(context.Background(), t); err != nil {
			if t.isResponse {
				s.log.Error().Err(err).Uint32("seq", h.Sequence()).Msg("dropping response pdu: processor queue saturated")
				continue
			}
			s.throttle(h.Sequence())
		}
	}
}

func (s *Session) handleReadError(h pdu.Header, err error) {
	if h != nil && (h.Length() < 16 || h.Length() > pdu.MaxPDUSize) {
		s.log.Warn().Err(err).Msg("invalid pdu command_length, unbinding and closing")
		s.sendGenericNack(h.Sequence(), pdu.StatusInvCmdLen)
		s.unbindAndClose(context.Background())
		return
	}
	var unsupported *pdu.UnsupportedCommandError
	if errors.As(err, &unsupported) && h != nil {
		s.log.Warn().Uint32("command_id", uint32(unsupported.ID)).Msg("unknown command_id, unbinding and closing")
		s.sendGenericNack(h.Sequence(), pdu.StatusInvCmdID)
		s.unbindAndClose(context.Background())
		return
	}
	if errors.Is(err, io.EOF) {
		s.log.Info().Msg("connection closed by peer")
	} else {
		s.log.Error().Err(err).Msg("reading pdu")
	}
	s.close()
}
