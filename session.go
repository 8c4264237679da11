package smpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/halftone-labs/smppclient/pdu"
	"github.com/rs/zerolog"
)

// Session is the façade over one ESME connection: it owns the wire codec,
// the sequence/pending-table bookkeeping for correlating requests with
// responses, the processor pool that dispatches inbound PDUs, and the
// enquire_link keepalive loop. All exported operations are safe to call
// concurrently from multiple goroutines.
type Session struct {
	id  string
	cfg Config

	conn net.Conn
	enc  *pdu.Encoder
	dec  *pdu.Decoder

	writeMu sync.Mutex

	ctx     *sessionContext
	pending *pendingTable
	seq     *sequence

	pool     *processorPool
	ownsPool bool

	keepalive *enquireLinkSender

	log     zerolog.Logger
	metrics *Metrics

	peerSystemID atomic.Value

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewSession wraps conn in a new Session, transitioning it from CLOSED to
// OPEN and starting its reader and keepalive goroutines. The Session owns a
// dedicated single-worker processor pool until bind completes, at which
// point it grows to Config.PduProcessorDegree.
func NewSession(conn net.Conn, cfg Config) *Session {
	return newSession(conn, cfg, nil, true)
}

func newSession(conn net.Conn, cfg Config, pool *processorPool, ownsPool bool) *Session {
	cfg.setDefaults()
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()[:8]
	}

	s := &Session{
		id:      id,
		cfg:     cfg,
		conn:    conn,
		enc:     pdu.NewEncoder(conn, pdu.NewSequencer(1)),
		dec:     pdu.NewDecoder(conn),
		pending: newPendingTable(),
		seq:     newSequence(),
		log:     cfg.Logger.With().Str("session_id", id).Logger(),
		metrics: cfg.Metrics,
		closed:  make(chan struct{}),
	}
	s.ctx = newSessionContext(s.log)

	if pool != nil {
		s.pool = pool
		s.ownsPool = false
	} else {
		s.pool = newProcessorPool(cfg.QueueCapacity, cfg.Metrics)
		s.ownsPool = true
	}

	s.ctx.AddListener(s.onStateChange)
	_ = s.ctx.Open()

	s.wg.Add(1)
	go s.runReader()
	s.keepalive = newEnquireLinkSender(s)
	return s
}

func (s *Session) onStateChange(newState, old SessionState) {
	s.metrics.observeTransition(newState)
	s.log.Debug().Str("from", old.String()).Str("to", newState.String()).Msg("session state transition")
	if newState.IsBound() && s.ownsPool {
		s.pool.Resize(s.cfg.PduProcessorDegree)
	}
}

// ID returns the session's log/metrics identifier.
func (s *Session) ID() string { return s.id }

// State returns the current SessionState.
func (s *Session) State() SessionState { return s.ctx.State() }

// PeerSystemID returns the system_id the peer reported in its bind
// response, or "" before bind completes.
func (s *Session) PeerSystemID() string {
	v, _ := s.peerSystemID.Load().(string)
	return v
}

// NotifyClosed returns a channel that is closed once the session reaches
// CLOSED, for callers that want to observe session termination without
// polling State.
func (s *Session) NotifyClosed() <-chan struct{} {
	return s.closed
}

// BindTransmitter sends bind_transmitter and, on success, transitions to
// BOUND_TX. It returns the peer's system_id.
func (s *Session) BindTransmitter(ctx context.Context, p BindParameter) (string, error) {
	return s.bind(ctx, BindTransmitter, p)
}

// BindReceiver sends bind_receiver and, on success, transitions to
// BOUND_RX. It returns the peer's system_id.
func (s *Session) BindReceiver(ctx context.Context, p BindParameter) (string, error) {
	return s.bind(ctx, BindReceiver, p)
}

// BindTransceiver sends bind_transceiver and, on success, transitions to
// BOUND_TRX. It returns the peer's system_id.
func (s *Session) BindTransceiver(ctx context.Context, p BindParameter) (string, error) {
	return s.bind(ctx, BindTransceiver, p)
}

func (s *Session) bind(ctx context.Context, bt BindType, p BindParameter) (string, error) {
	if s.ctx.State() != StateOpen {
		return "", &Error{Kind: KindIllegalState, Msg: fmt.Sprintf("cannot %s-bind from state %s", bt, s.ctx.State())}
	}

	var req pdu.PDU
	switch bt {
	case BindTransmitter:
		req = &pdu.BindTx{SystemID: p.SystemID, Password: p.Password, SystemType: p.SystemType, InterfaceVersion: p.InterfaceVersion, AddrTon: p.AddrTon, AddrNpi: p.AddrNpi, AddressRange: p.AddressRange}
	case BindReceiver:
		req = &pdu.BindRx{SystemID: p.SystemID, Password: p.Password, SystemType: p.SystemType, InterfaceVersion: p.InterfaceVersion, AddrTon: p.AddrTon, AddrNpi: p.AddrNpi, AddressRange: p.AddressRange}
	case BindTransceiver:
		req = &pdu.BindTRx{SystemID: p.SystemID, Password: p.Password, SystemType: p.SystemType, InterfaceVersion: p.InterfaceVersion, AddrTon: p.AddrTon, AddrNpi: p.AddrNpi, AddressRange: p.AddressRange}
	default:
		return "", &Error{Kind: KindIllegalState, Msg: "unknown bind type"}
	}

	resp, err := s.sendCommand(ctx, req)
	if err != nil {
		var serr *Error
		if errors.As(err, &serr) && serr.Kind == KindNegativeResponse {
			s.close()
		}
		return "", err
	}

	var sysID string
	switch r := resp.(type) {
	case *pdu.BindTxResp:
		sysID = r.SystemID
	case *pdu.BindRxResp:
		sysID = r.SystemID
	case *pdu.BindTRxResp:
		sysID = r.SystemID
	default:
		return "", &Error{Kind: KindInvalidResponse, Msg: "unexpected bind response type"}
	}

	s.peerSystemID.Store(sysID)
	if err := s.ctx.Bound(bt.boundState()); err != nil {
		s.close()
		return "", err
	}
	return sysID, nil
}

// SubmitSm submits a short message and returns the SMSC-assigned message_id.
func (s *Session) SubmitSm(ctx context.Context, p *pdu.SubmitSm) (string, error) {
	if err := s.checkTransmittable("submit_sm"); err != nil {
		return "", err
	}
	if err := s.checkRateLimit("submit_sm"); err != nil {
		return "", err
	}
	resp, err := s.sendCommand(ctx, p)
	if err != nil {
		return "", err
	}
	r, ok := resp.(*pdu.SubmitSmResp)
	if !ok {
		return "", &Error{Kind: KindInvalidResponse, Msg: "expected submit_sm_resp"}
	}
	return r.MessageID, nil
}

// SubmitMulti submits a short message to multiple destinations.
func (s *Session) SubmitMulti(ctx context.Context, p *pdu.SubmitMulti) (*pdu.SubmitMultiResp, error) {
	if err := s.checkTransmittable("submit_multi"); err != nil {
		return nil, err
	}
	if err := s.checkRateLimit("submit_multi"); err != nil {
		return nil, err
	}
	resp, err := s.sendCommand(ctx, p)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*pdu.SubmitMultiResp)
	if !ok {
		return nil, &Error{Kind: KindInvalidResponse, Msg: "expected submit_multi_resp"}
	}
	return r, nil
}

// DataSm submits a short message over the data_sm interaction.
func (s *Session) DataSm(ctx context.Context, p *pdu.DataSm) (string, error) {
	if err := s.checkTransmittable("data_sm"); err != nil {
		return "", err
	}
	if err := s.checkRateLimit("data_sm"); err != nil {
		return "", err
	}
	resp, err := s.sendCommand(ctx, p)
	if err != nil {
		return "", err
	}
	r, ok := resp.(*pdu.DataSmResp)
	if !ok {
		return "", &Error{Kind: KindInvalidResponse, Msg: "expected data_sm_resp"}
	}
	return r.MessageID, nil
}

// QuerySm queries the delivery status of a previously submitted message.
func (s *Session) QuerySm(ctx context.Context, p *pdu.QuerySm) (*pdu.QuerySmResp, error) {
	if err := s.checkTransmittable("query_sm"); err != nil {
		return nil, err
	}
	resp, err := s.sendCommand(ctx, p)
	if err != nil {
		return nil, err
	}
	r, ok := resp.(*pdu.QuerySmResp)
	if !ok {
		return nil, &Error{Kind: KindInvalidResponse, Msg: "expected query_sm_resp"}
	}
	return r, nil
}

// CancelSm cancels a previously submitted message.
func (s *Session) CancelSm(ctx context.Context, p *pdu.CancelSm) error {
	if err := s.checkTransmittable("cancel_sm"); err != nil {
		return err
	}
	_, err := s.sendCommand(ctx, p)
	return err
}

// ReplaceSm replaces a previously submitted message.
func (s *Session) ReplaceSm(ctx context.Context, p *pdu.ReplaceSm) error {
	if err := s.checkTransmittable("replace_sm"); err != nil {
		return err
	}
	_, err := s.sendCommand(ctx, p)
	return err
}

// EnquireLink sends an enquire_link probe outside of the automatic keepalive
// loop, useful for an explicit health check.
func (s *Session) EnquireLink(ctx context.Context) error {
	if !s.ctx.State().IsBound() {
		return &Error{Kind: KindIllegalState, Msg: fmt.Sprintf("cannot enquire_link from state %s", s.ctx.State())}
	}
	_, err := s.sendCommand(ctx, &pdu.EnquireLink{})
	return err
}

// Unbind sends unbind and waits for unbind_resp, transitioning to UNBOUND on
// success. It does not close the underlying connection; call Close (or
// UnbindAndClose) afterward.
func (s *Session) Unbind(ctx context.Context) error {
	if !s.ctx.State().IsBound() {
		return &Error{Kind: KindIllegalState, Msg: fmt.Sprintf("cannot unbind from state %s", s.ctx.State())}
	}
	_, err := s.sendCommand(ctx, &pdu.Unbind{})
	if err != nil {
		return err
	}
	return s.ctx.Unbound()
}

// UnbindAndClose attempts a graceful unbind bounded by ctx, then closes the
// session regardless of whether the unbind completed.
func (s *Session) UnbindAndClose(ctx context.Context) error {
	return s.unbindAndClose(ctx)
}

func (s *Session) unbindAndClose(ctx context.Context) error {
	var err error
	if s.ctx.State().IsBound() {
		err = s.Unbind(ctx)
	}
	s.close()
	return err
}

// Close tears down the session immediately: it stops the reader and
// keepalive goroutines, fails every pending request, closes the connection,
// and transitions to CLOSED. Close is idempotent and safe to call from any
// goroutine, including from within a Handler.
func (s *Session) Close() error {
	s.close()
	return nil
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		_ = s.ctx.Close()
		s.pending.drainAll(&Error{Kind: KindIO, Msg: "session closed", Temp: false})
		_ = s.conn.Close()
		if s.ownsPool {
			// Not awaited: close may be running on one of the pool's own
			// workers (a Handler, a peer unbind), which Shutdown waits for.
			go s.pool.Shutdown()
		}
		close(s.closed)
		s.keepalive.stop()
	})
}

func (s *Session) checkTransmittable(op string) error {
	if !s.ctx.State().IsTransmittable() {
		return &Error{Kind: KindIllegalState, Msg: fmt.Sprintf("cannot %s from state %s", op, s.ctx.State())}
	}
	return nil
}

func (s *Session) checkRateLimit(category string) error {
	if s.cfg.SendLimiter == nil {
		return nil
	}
	if _, ok := s.cfg.SendLimiter.Allow(category); !ok {
		return &Error{Kind: KindRateLimited, Msg: fmt.Sprintf("%s rate limit exceeded", category), Temp: true}
	}
	return nil
}

// sendCommand implements the common request/response skeleton shared by
// every Session operation: reserve a sequence number, write the request,
// await the correlated response within Config.TransactionTimer (or ctx's
// deadline, whichever is sooner), and translate a non-OK command_status
// into a KindNegativeResponse error.
func (s *Session) sendCommand(ctx context.Context, req pdu.PDU) (pdu.PDU, error) {
	seq := s.seq.next(s.pending.has)
	entry, err := s.pending.insert(seq)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TransactionTimer)
	defer cancel()
	deadline, _ := ctx.Deadline()

	if werr := s.writeLocked(req, seq); werr != nil {
		s.pending.remove(seq)
		return nil, s.classifyAndHandleWriteErr(req, werr)
	}

	s.log.Debug().Uint32("command_id", uint32(req.CommandID())).Uint32("seq", seq).Msg("request sent")
	return s.pending.await(ctx, seq, entry, deadline)
}

func (s *Session) writeLocked(req pdu.PDU, seq uint32) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.enc.Encode(req, pdu.EncodeSeq(seq), pdu.EncodeStatus(pdu.StatusOK))
	return err
}

func (s *Session) writeResponse(resp pdu.PDU, seq uint32, status pdu.Status) error {
	s.writeMu.Lock()
	_, err := s.enc.Encode(resp, pdu.EncodeSeq(seq), pdu.EncodeStatus(status))
	s.writeMu.Unlock()
	if err != nil {
		s.log.Warn().Err(err).Uint32("seq", seq).Msg("writing response failed")
	}
	return err
}

func (s *Session) sendGenericNack(seq uint32, status pdu.Status) {
	s.writeResponse(&pdu.GenericNack{}, seq, status)
}

// throttle rejects a request PDU the processor pool could not enqueue,
// bypassing the queue entirely: ESME_RTHROTTLED is written directly back to
// the peer with the offending sequence number.
func (s *Session) throttle(seq uint32) {
	s.writeResponse(&pdu.GenericNack{}, seq, pdu.StatusThrottled)
}

func (s *Session) classifyAndHandleWriteErr(req pdu.PDU, err error) error {
	kind := classifyWriteErr(err)
	if kind == KindPDUEncoding {
		return &Error{Kind: KindPDUEncoding, Msg: err.Error()}
	}
	if _, isProbe := req.(*pdu.EnquireLink); isProbe {
		return &Error{Kind: KindIO, Msg: err.Error(), Temp: true}
	}
	s.close()
	return &Error{Kind: KindIO, Msg: err.Error()}
}

func classifyWriteErr(err error) ErrorKind {
	var ne net.Error
	if errors.As(err, &ne) {
		return KindIO
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
		return KindIO
	}
	return KindPDUEncoding
}

// handleInbound runs the configured Handler for a deliver_sm, data_sm or
// alert_notification request, recovering a panic into ESME_RX_T_APPN and
// auto-responding with ESME_ROK if the handler returns without responding.
func (s *Session) handleInbound(h pdu.Header, body pdu.PDU) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TransactionTimer*5)
	defer cancel()
	reqCtx := &RequestContext{sess: s, ctx: ctx, seq: h.Sequence(), req: body}

	s.runHandler(reqCtx)

	if !reqCtx.responded {
		s.autoRespond(h, body, pdu.StatusOK)
	}
	if reqCtx.closeAfter {
		s.close()
	}
}

func (s *Session) runHandler(reqCtx *RequestContext) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("handler panicked")
			if !reqCtx.responded {
				s.autoRespond2(reqCtx.seq, reqCtx.req, pdu.StatusTempAppErr)
				reqCtx.responded = true
			}
		}
	}()
	s.cfg.Handler.ServeSMPP(reqCtx)
}

func (s *Session) autoRespond(h pdu.Header, body pdu.PDU, status pdu.Status) {
	s.autoRespond2(h.Sequence(), body, status)
}

func (s *Session) autoRespond2(seq uint32, body pdu.PDU, status pdu.Status) {
	switch req := body.(type) {
	case *pdu.DeliverSm:
		s.writeResponse(req.Response(""), seq, status)
	case *pdu.DataSm:
		s.writeResponse(req.Response(""), seq, status)
	}
}
