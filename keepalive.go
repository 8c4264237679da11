package smpp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/halftone-labs/smppclient/pdu"
)

// enquireLinkSender runs the keepalive loop: it probes the peer with
// enquire_link whenever the reader's deadline fires with no activity. Probe
// requests from notifyNoActivity are coalesced into a single in-flight
// request via a size-1 buffered channel, so a slow peer can't accumulate an
// unbounded backlog of redundant probes.
type enquireLinkSender struct {
	sess  *Session
	probe chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup
}

func newEnquireLinkSender(sess *Session) *enquireLinkSender {
	e := &enquireLinkSender{
		sess:  sess,
		probe: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	e.wg.Add(1)
	go e.run()
	return e
}

func (e *enquireLinkSender) notifyNoActivity() {
	select {
	case e.probe <- struct{}{}:
	default:
		// a probe is already in flight or queued; coalesce.
	}
}

func (e *enquireLinkSender) run() {
	defer e.wg.Done()
	ticker := time.NewTicker(probeLoopInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-e.sess.closed:
			return
		case <-ticker.C:
			continue
		case <-e.probe:
			if !e.sess.ctx.State().IsBound() {
				continue
			}
			e.sendProbe()
		}
	}
}

func (e *enquireLinkSender) sendProbe() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), e.sess.cfg.TransactionTimer)
	defer cancel()
	_, err := e.sess.sendCommand(ctx, &pdu.EnquireLink{})
	if err == nil {
		e.sess.metrics.observeEnquireLinkRTT(time.Since(start).Seconds())
		return
	}

	var serr *Error
	if !errors.As(err, &serr) {
		e.sess.log.Warn().Err(err).Msg("enquire_link failed")
		return
	}
	// close joins this goroutine via stop, so it runs on a goroutine of its own.
	switch serr.Kind {
	case KindResponseTimeout:
		e.sess.log.Warn().Msg("enquire_link timed out, closing session")
		go e.sess.close()
	case KindInvalidResponse, KindNegativeResponse:
		e.sess.log.Warn().Err(err).Msg("enquire_link rejected, unbinding and closing")
		go e.sess.unbindAndClose(context.Background())
	case KindIO:
		// Transient write failures are logged and tolerated: the reader
		// loop is the authority on whether the connection is dead.
		e.sess.log.Warn().Err(err).Msg("enquire_link write failed, tolerating")
	default:
		e.sess.log.Warn().Err(err).Msg("enquire_link failed")
	}
}

func (e *enquireLinkSender) stop() {
	close(e.done)
	e.wg.Wait()
}
