// Package smsctest implements a minimal scriptable SMSC peer used only by
// the engine's own tests to drive a Session through bind/submit/deliver/
// unbind scenarios over a real socket. It has no relation to the SMPP
// server role, which this module does not ship: the accept loop, listener
// bookkeeping and graceful-close handshake here are adapted from the
// teacher's SMSC Server type, repurposed to speak raw pdu.PDU values
// instead of driving a bound Session on the accepting side.
package smsctest

import (
	"net"
	"sync"
	"time"

	"github.com/halftone-labs/smppclient/pdu"
)

// Conn is the SMSC-side half of one accepted connection: the codec plus a
// couple of scripting helpers tests call from inside a Handler.
type Conn struct {
	net.Conn
	enc *pdu.Encoder
	dec *pdu.Decoder
}

func newConn(nc net.Conn) *Conn {
	return &Conn{
		Conn: nc,
		enc:  pdu.NewEncoder(nc, pdu.NewSequencer(1)),
		dec:  pdu.NewDecoder(nc),
	}
}

// ReadPDU blocks for the next framed PDU from the peer.
func (c *Conn) ReadPDU() (pdu.Header, pdu.PDU, error) {
	return c.dec.Decode()
}

// WritePDU writes p back to the peer with the given sequence_number and
// command_status, the same request/response seq correlation the client
// side expects.
func (c *Conn) WritePDU(p pdu.PDU, seq uint32, status pdu.Status) error {
	_, err := c.enc.Encode(p, pdu.EncodeSeq(seq), pdu.EncodeStatus(status))
	return err
}

// Respond is WritePDU with StatusOK, the common case for answering a bind
// or submit_sm request in a scripted scenario.
func (c *Conn) Respond(p pdu.PDU, seq uint32) error {
	return c.WritePDU(p, seq, pdu.StatusOK)
}

// Handler drives one accepted connection for the lifetime of the test
// scenario; it owns the read loop and is expected to return when the
// scenario is done or the connection errors out.
type Handler func(c *Conn)

// Server accepts connections on a listener and runs Handler once per
// connection, tracking listeners/conns the same way the teacher's Server
// does so Close can wait for every in-flight Handler to return.
type Server struct {
	Handler Handler

	wg        sync.WaitGroup
	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	doneChan  chan struct{}
	conns     map[*Conn]struct{}
}

// NewServer creates a Server that runs h for every accepted connection.
func NewServer(h Handler) *Server {
	return &Server{Handler: h}
}

// ListenAndServe starts listening on an ephemeral loopback port and serves
// until Close is called. It returns once the listener is ready, with the
// assigned address and a function that stops the server.
func ListenAndServe(h Handler) (addr string, stop func() error, err error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := NewServer(h)
	go srv.Serve(ln)
	return ln.Addr().String(), srv.Close, nil
}

// Serve accepts connections until the listener or the Server is closed.
func (srv *Server) Serve(ln net.Listener) error {
	defer ln.Close()
	srv.trackListener(ln, true)
	var tempDelay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-srv.getDoneChan():
				return nil
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := time.Second; tempDelay > max {
					tempDelay = max
				}
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0

		c := newConn(nc)
		srv.trackConn(c, true)
		srv.wg.Add(1)
		go func() {
			defer srv.wg.Done()
			defer srv.trackConn(c, false)
			defer c.Close()
			srv.Handler(c)
		}()
	}
}

// Close stops accepting new connections, closes tracked listeners and
// waits for every in-flight Handler to return.
func (srv *Server) Close() error {
	srv.mu.Lock()
	srv.closeDoneChanLocked()
	err := srv.closeListenersLocked()
	srv.mu.Unlock()
	srv.wg.Wait()
	return err
}

func (srv *Server) getDoneChan() <-chan struct{} {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.getDoneChanLocked()
}

func (srv *Server) getDoneChanLocked() chan struct{} {
	if srv.doneChan == nil {
		srv.doneChan = make(chan struct{})
	}
	return srv.doneChan
}

func (srv *Server) closeDoneChanLocked() {
	ch := srv.getDoneChanLocked()
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func (srv *Server) trackListener(ln net.Listener, add bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listeners == nil {
		srv.listeners = make(map[net.Listener]struct{})
	}
	if add {
		if len(srv.listeners) == 0 && len(srv.conns) == 0 {
			srv.doneChan = nil
		}
		srv.listeners[ln] = struct{}{}
	} else {
		delete(srv.listeners, ln)
	}
}

func (srv *Server) closeListenersLocked() error {
	var err error
	for ln := range srv.listeners {
		if cerr := ln.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(srv.listeners, ln)
	}
	return err
}

func (srv *Server) trackConn(c *Conn, add bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.conns == nil {
		srv.conns = make(map[*Conn]struct{})
	}
	if add {
		srv.conns[c] = struct{}{}
	} else {
		delete(srv.conns, c)
	}
}
