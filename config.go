package smpp

import (
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/rs/zerolog"
)

// BindType selects which of the three SMPP bind operations a Session
// performs, and therefore which bound state it lands in.
type BindType int

const (
	BindTransmitter BindType = iota
	BindReceiver
	BindTransceiver
)

func (b BindType) String() string {
	switch b {
	case BindTransmitter:
		return "transmitter"
	case BindReceiver:
		return "receiver"
	case BindTransceiver:
		return "transceiver"
	default:
		return "unknown"
	}
}

func (b BindType) boundState() SessionState {
	switch b {
	case BindTransmitter:
		return StateBoundTx
	case BindReceiver:
		return StateBoundRx
	case BindTransceiver:
		return StateBoundTRx
	default:
		return StateClosed
	}
}

// BindParameter carries the fields sent on bind_transmitter, bind_receiver
// and bind_transceiver PDUs.
type BindParameter struct {
	SystemID         string
	Password         string
	SystemType       string
	InterfaceVersion int
	AddrTon          int
	AddrNpi          int
	AddressRange     string
}

const (
	defaultEnquireLinkTimer   = 60 * time.Second
	defaultTransactionTimer   = 2 * time.Second
	defaultPduProcessorDegree = 3
	defaultQueueCapacity      = 100
	maxResponseEnqueueWait    = 60 * time.Second
	probeLoopInterval         = 500 * time.Millisecond
)

// Config controls a single Session's timers, concurrency and collaborators.
// A zero Config is usable: setDefaults fills in every unset field.
type Config struct {
	// ID names the session for logging and metrics. A short random value
	// is generated when empty.
	ID string

	// EnquireLinkTimer bounds how long the connection may sit idle (no
	// PDU read) before a probing enquire_link is sent.
	EnquireLinkTimer time.Duration

	// TransactionTimer bounds how long an outbound request waits for its
	// correlated response before failing with KindResponseTimeout.
	TransactionTimer time.Duration

	// PduProcessorDegree is the number of concurrent worker goroutines
	// the processor pool runs once the session is bound. Before bind the
	// pool always runs with a single worker.
	PduProcessorDegree int

	// QueueCapacity bounds how many PDUs may sit in the processor pool's
	// queue before request PDUs are throttled.
	QueueCapacity int

	// Handler receives inbound deliver_sm, data_sm and alert_notification
	// requests. DefaultHandler is used when nil.
	Handler Handler

	// Logger is the base logger; NewSession attaches a session_id field
	// to a copy of it. A disabled logger is used when the zero value.
	Logger zerolog.Logger

	// SendLimiter, when set, throttles outbound submit_sm/submit_multi/
	// data_sm calls before they are written to the wire.
	SendLimiter *catrate.Limiter

	// Metrics collects Prometheus series for this session. A
	// disconnected (non-nil, unregistered) instance is used when nil.
	Metrics *Metrics
}

func (c *Config) setDefaults() {
	if c.EnquireLinkTimer <= 0 {
		c.EnquireLinkTimer = defaultEnquireLinkTimer
	}
	if c.TransactionTimer <= 0 {
		c.TransactionTimer = defaultTransactionTimer
	}
	if c.PduProcessorDegree <= 0 {
		c.PduProcessorDegree = defaultPduProcessorDegree
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultQueueCapacity
	}
	if c.Handler == nil {
		c.Handler = DefaultHandler
	}
	if c.Metrics == nil {
		c.Metrics = newNoopMetrics()
	}
}
