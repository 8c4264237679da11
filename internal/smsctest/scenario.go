package smsctest

import "github.com/halftone-labs/smppclient/pdu"

// AcceptBind reads the next PDU, expects it to be one of the three bind
// requests, and answers it with StatusOK using systemID as the peer's
// reported system_id. It returns the command_id that was bound so callers
// can assert on the bind type the client chose.
func AcceptBind(c *Conn, systemID string) (pdu.CommandID, error) {
	h, body, err := c.ReadPDU()
	if err != nil {
		return 0, err
	}
	switch req := body.(type) {
	case *pdu.BindTx:
		return h.CommandID(), c.Respond(req.Response(systemID), h.Sequence())
	case *pdu.BindRx:
		return h.CommandID(), c.Respond(req.Response(systemID), h.Sequence())
	case *pdu.BindTRx:
		return h.CommandID(), c.Respond(req.Response(systemID), h.Sequence())
	default:
		return h.CommandID(), c.WritePDU(&pdu.GenericNack{}, h.Sequence(), pdu.StatusInvBnd)
	}
}

// RejectBind reads the next PDU, expects a bind request, and answers it
// with the given negative status.
func RejectBind(c *Conn, status pdu.Status) error {
	h, body, err := c.ReadPDU()
	if err != nil {
		return err
	}
	switch req := body.(type) {
	case *pdu.BindTx:
		return c.WritePDU(req.Response(""), h.Sequence(), status)
	case *pdu.BindRx:
		return c.WritePDU(req.Response(""), h.Sequence(), status)
	case *pdu.BindTRx:
		return c.WritePDU(req.Response(""), h.Sequence(), status)
	default:
		return c.WritePDU(&pdu.GenericNack{}, h.Sequence(), status)
	}
}

// PushDeliverSm sends an unsolicited deliver_sm to the peer and reads its
// correlated response, returning the response status.
func PushDeliverSm(c *Conn, seq uint32, msg *pdu.DeliverSm) (pdu.Status, error) {
	if err := c.WritePDU(msg, seq, pdu.StatusOK); err != nil {
		return 0, err
	}
	h, _, err := c.ReadPDU()
	if err != nil {
		return 0, err
	}
	return h.Status(), nil
}
