package smpp

import "github.com/halftone-labs/smppclient/pdu"

// inboundAction is the outcome of consulting the per-state dispatch table
// for a request PDU (one with its response bit clear). Response PDUs never
// reach classifyInbound: they are always resolved against the pending table.
type inboundAction int

const (
	// actionHandle invokes the configured Handler: deliver_sm, data_sm
	// and alert_notification while bound.
	actionHandle inboundAction = iota
	// actionEnquireLink answers an enquire_link probe automatically.
	actionEnquireLink
	// actionUnbindRequest answers a peer-initiated unbind, transitions to
	// UNBOUND, and closes the session.
	actionUnbindRequest
	// actionInvalidBindStatus rejects a PDU that is well-formed but
	// illegal for the current state with ESME_RINVBNDSTS.
	actionInvalidBindStatus
	// actionIgnore logs and drops a PDU that the current state expects to
	// occasionally see but that does not warrant a response (e.g. an
	// outbind invitation this ESME-only engine never acts on).
	actionIgnore
	// actionUnknownCommand answers an unrecognized command_id with
	// generic_nack(ESME_RINVCMDID).
	actionUnknownCommand
)

// knownCommands mirrors pdu.NewPDU's switch; it lets classifyInbound
// distinguish "unrecognized command_id" from "recognized but illegal here"
// without relying on NewPDU's panic-recovery path for control flow.
var knownCommands = map[pdu.CommandID]bool{
	pdu.GenericNackID:         true,
	pdu.BindReceiverID:        true,
	pdu.BindReceiverRespID:    true,
	pdu.BindTransmitterID:     true,
	pdu.BindTransmitterRespID: true,
	pdu.BindTransceiverID:     true,
	pdu.BindTransceiverRespID: true,
	pdu.QuerySmID:             true,
	pdu.QuerySmRespID:         true,
	pdu.SubmitSmID:            true,
	pdu.SubmitSmRespID:        true,
	pdu.DeliverSmID:           true,
	pdu.DeliverSmRespID:       true,
	pdu.UnbindID:              true,
	pdu.UnbindRespID:          true,
	pdu.ReplaceSmID:           true,
	pdu.ReplaceSmRespID:       true,
	pdu.CancelSmID:            true,
	pdu.CancelSmRespID:        true,
	pdu.OutbindID:             true,
	pdu.EnquireLinkID:         true,
	pdu.EnquireLinkRespID:     true,
	pdu.SubmitMultiID:         true,
	pdu.SubmitMultiRespID:     true,
	pdu.AlertNotificationID:   true,
	pdu.DataSmID:              true,
	pdu.DataSmRespID:          true,
}

// classifyInbound implements the per-state request dispatch table: what a
// Session does with a just-decoded request PDU depends only on its current
// SessionState and the PDU's command_id.
func classifyInbound(state SessionState, id pdu.CommandID) inboundAction {
	if !knownCommands[id] {
		return actionUnknownCommand
	}
	if state.IsBound() {
		switch id {
		case pdu.EnquireLinkID:
			return actionEnquireLink
		case pdu.UnbindID:
			return actionUnbindRequest
		case pdu.DeliverSmID, pdu.DataSmID, pdu.AlertNotificationID:
			return actionHandle
		default:
			return actionInvalidBindStatus
		}
	}
	switch state {
	case StateOpen, StateOutbound:
		if id == pdu.OutbindID {
			return actionIgnore
		}
		return actionInvalidBindStatus
	default: // StateClosed, StateUnbound
		return actionIgnore
	}
}
