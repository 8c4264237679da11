package smpp

import (
	"fmt"

	"github.com/halftone-labs/smppclient/pdu"
)

// ErrorKind classifies the failure modes a Session operation can return, so
// callers can branch on the cause without parsing error strings.
type ErrorKind int

const (
	// KindIllegalState means the operation was attempted from a session
	// state that does not permit it (e.g. submitting before bind).
	KindIllegalState ErrorKind = iota
	// KindPDUEncoding means a request PDU could not be marshaled.
	KindPDUEncoding
	// KindIO means a read or write on the underlying connection failed.
	KindIO
	// KindResponseTimeout means no response arrived before the
	// transaction timer expired.
	KindResponseTimeout
	// KindInvalidResponse means a response of an unexpected PDU type was
	// correlated to the request.
	KindInvalidResponse
	// KindNegativeResponse means the peer answered with a non-OK
	// command_status.
	KindNegativeResponse
	// KindQueueMax means the processor pool could not accept the PDU
	// within its backpressure budget.
	KindQueueMax
	// KindRateLimited means a configured send limiter rejected the call.
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindIllegalState:
		return "illegal_state"
	case KindPDUEncoding:
		return "pdu_encoding"
	case KindIO:
		return "io"
	case KindResponseTimeout:
		return "response_timeout"
	case KindInvalidResponse:
		return "invalid_response"
	case KindNegativeResponse:
		return "negative_response"
	case KindQueueMax:
		return "queue_max"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every Session operation. Temp reports
// whether retrying the same call later has a reasonable chance of success.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Temp   bool
	Status pdu.Status
}

func (e *Error) Error() string {
	if e.Kind == KindNegativeResponse {
		return fmt.Sprintf("smpp: %s (status=%#08x)", e.Msg, uint32(e.Status))
	}
	return fmt.Sprintf("smpp: %s: %s", e.Kind, e.Msg)
}

// Temporary reports whether the failure is expected to be transient.
func (e *Error) Temporary() bool {
	return e.Temp
}

// statusMessages gives a short human description for every command_status a
// peer can legally send back. Anything absent from the table is reported as
// an unrecognized status rather than failing the lookup.
var statusMessages = map[pdu.Status]string{
	pdu.StatusInvMsgLen:       "message length is invalid",
	pdu.StatusInvCmdLen:       "command length is invalid",
	pdu.StatusInvCmdID:        "command ID is invalid or not known",
	pdu.StatusInvBnd:          "PDU received outside the bound state",
	pdu.StatusAlyBnd:          "ESME already bound",
	pdu.StatusInvPrtFlg:       "protocol_id value is invalid",
	pdu.StatusInvRegDlvFlg:    "registered_delivery value is invalid",
	pdu.StatusSysErr:          "SMSC system error",
	pdu.StatusInvSrcAdr:       "source address is invalid",
	pdu.StatusInvDstAdr:       "destination address is invalid",
	pdu.StatusInvMsgID:        "message ID is invalid",
	pdu.StatusBindFail:        "bind failed",
	pdu.StatusInvPaswd:        "password is invalid",
	pdu.StatusInvSysID:        "system_id is invalid",
	pdu.StatusCancelFail:      "cancel_sm failed",
	pdu.StatusReplaceFail:     "replace_sm failed",
	pdu.StatusMsgQFul:        "message queue is full",
	pdu.StatusInvSerTyp:       "service_type is invalid",
	pdu.StatusInvNumDe:        "number_of_dests is invalid",
	pdu.StatusInvDLName:       "distribution list name is invalid",
	pdu.StatusInvDestFlag:     "destination flag is invalid",
	pdu.StatusInvSubRep:       "submit with replace is unsupported",
	pdu.StatusInvEsmClass:     "esm_class field is invalid",
	pdu.StatusCntSubDL:        "cannot submit to a distribution list",
	pdu.StatusSubmitFail:      "submit_sm or submit_multi failed",
	pdu.StatusInvSrcTON:       "source_addr_ton is invalid",
	pdu.StatusInvSrcNPI:       "source_addr_npi is invalid",
	pdu.StatusInvDstTON:       "dest_addr_ton is invalid",
	pdu.StatusInvDstNPI:       "dest_addr_npi is invalid",
	pdu.StatusInvSysTyp:       "system_type is invalid",
	pdu.StatusInvRepFlag:      "replace_if_present_flag is invalid",
	pdu.StatusInvNumMsgs:      "number of messages is invalid",
	pdu.StatusThrottled:       "throttling error",
	pdu.StatusInvSched:        "schedule_delivery_time is invalid",
	pdu.StatusInvExpiry:       "validity_period is invalid",
	pdu.StatusInvDftMsgID:     "predefined message is invalid",
	pdu.StatusTempAppErr:      "ESME receiver temporary error",
	pdu.StatusPermAppErr:      "ESME receiver permanent error",
	pdu.StatusRejeAppErr:      "ESME receiver rejected the message",
	pdu.StatusQueryFail:       "query_sm failed",
	pdu.StatusInvOptParStream: "optional parameter stream is malformed",
	pdu.StatusOptParNotAllwd:  "optional parameter is not allowed",
	pdu.StatusInvParLen:       "optional parameter length is invalid",
	pdu.StatusMissingOptParam: "expected optional parameter is missing",
	pdu.StatusInvOptParamVal:  "optional parameter value is invalid",
	pdu.StatusDeliveryFailure: "delivery failure (data_sm_resp)",
	pdu.StatusUnknownErr:      "unknown error",
}

// toError maps a response command_status into a negative-response error, or
// nil when the status is ESME_ROK.
func toError(status pdu.Status) error {
	if status == pdu.StatusOK {
		return nil
	}
	msg, ok := statusMessages[status]
	if !ok {
		msg = "unrecognized status code"
	}
	return &Error{Kind: KindNegativeResponse, Msg: msg, Status: status}
}
