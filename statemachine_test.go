package smpp

import (
	"testing"

	"github.com/halftone-labs/smppclient/pdu"
)

func TestClassifyInbound(t *testing.T) {
	cases := []struct {
		name  string
		state SessionState
		id    pdu.CommandID
		want  inboundAction
	}{
		{"enquire_link while bound", StateBoundTRx, pdu.EnquireLinkID, actionEnquireLink},
		{"unbind while bound", StateBoundRx, pdu.UnbindID, actionUnbindRequest},
		{"deliver_sm while bound", StateBoundTRx, pdu.DeliverSmID, actionHandle},
		{"submit_sm while bound is invalid here", StateBoundRx, pdu.SubmitSmID, actionInvalidBindStatus},
		{"bind response while open", StateOpen, pdu.BindTransceiverRespID, actionInvalidBindStatus},
		{"outbind while open is ignored", StateOpen, pdu.OutbindID, actionIgnore},
		{"anything while closed is ignored", StateClosed, pdu.SubmitSmID, actionIgnore},
		{"unknown command id", StateBoundTRx, pdu.CommandID(0x5555), actionUnknownCommand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyInbound(tc.state, tc.id); got != tc.want {
				t.Fatalf("classifyInbound(%s, %#x) = %d, want %d", tc.state, uint32(tc.id), got, tc.want)
			}
		})
	}
}
