package pdu

import (
	"fmt"
)

// CancelSm requests that the SMSC cancel an existing short message that has
// not yet reached a final delivery state.
type CancelSm struct {
	ServiceType     string
	MessageID       string
	SourceAddrTon   int
	SourceAddrNpi   int
	SourceAddr      string
	DestAddrTon     int
	DestAddrNpi     int
	DestinationAddr string
}

// CommandID implements pdu.PDU interface.
func (p CancelSm) CommandID() CommandID {
	return CancelSmID
}

// Response creates new CancelSmResp.
func (p CancelSm) Response() *CancelSmResp {
	return &CancelSmResp{}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p CancelSm) MarshalBinary() ([]byte, error) {
	out := append([]byte(p.ServiceType), 0)
	out = append(out, append([]byte(p.MessageID), 0)...)
	out = append(out, byte(p.SourceAddrTon), byte(p.SourceAddrNpi))
	out = append(out, append([]byte(p.SourceAddr), 0)...)
	out = append(out, byte(p.DestAddrTon), byte(p.DestAddrNpi))
	out = append(out, append([]byte(p.DestinationAddr), 0)...)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *CancelSm) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(6)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding service_type %s", err)
	}
	p.ServiceType = string(res)
	res, err = buf.ReadCString(65)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding message_id %s", err)
	}
	p.MessageID = string(res)
	b, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_ton %s", err)
	}
	p.SourceAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_npi %s", err)
	}
	p.SourceAddrNpi = int(b)
	res, err = buf.ReadCString(21)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr %s", err)
	}
	p.SourceAddr = string(res)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding dest_addr_ton %s", err)
	}
	p.DestAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding dest_addr_npi %s", err)
	}
	p.DestAddrNpi = int(b)
	res, err = buf.ReadCString(21)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding destination_addr %s", err)
	}
	p.DestinationAddr = string(res)
	return nil
}

// CancelSmResp is the (bodyless) response to cancel_sm.
type CancelSmResp struct{}

// CommandID implements pdu.PDU interface.
func (p CancelSmResp) CommandID() CommandID {
	return CancelSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p CancelSmResp) MarshalBinary() ([]byte, error) {
	return nil, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p CancelSmResp) UnmarshalBinary(body []byte) error {
	return nil
}

// ReplaceSm requests that the SMSC replace a previously submitted short
// message that has not yet reached a final delivery state.
type ReplaceSm struct {
	MessageID            string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   RegisteredDelivery
	SmDefaultMsgID       int
	ShortMessage         string
}

// CommandID implements pdu.PDU interface.
func (p ReplaceSm) CommandID() CommandID {
	return ReplaceSmID
}

// Response creates new ReplaceSmResp.
func (p ReplaceSm) Response() *ReplaceSmResp {
	return &ReplaceSmResp{}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p ReplaceSm) MarshalBinary() ([]byte, error) {
	out := append([]byte(p.MessageID), 0)
	out = append(out, byte(p.SourceAddrTon), byte(p.SourceAddrNpi))
	out = append(out, append([]byte(p.SourceAddr), 0)...)
	out = append(out, append([]byte(p.ScheduleDeliveryTime), 0)...)
	out = append(out, append([]byte(p.ValidityPeriod), 0)...)
	l := len(p.ShortMessage)
	out = append(out, p.RegisteredDelivery.Byte(), byte(p.SmDefaultMsgID), byte(l))
	if l > 0 {
		out = append(out, []byte(p.ShortMessage)...)
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *ReplaceSm) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(65)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding message_id %s", err)
	}
	p.MessageID = string(res)
	b, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_ton %s", err)
	}
	p.SourceAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_npi %s", err)
	}
	p.SourceAddrNpi = int(b)
	res, err = buf.ReadCString(21)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr %s", err)
	}
	p.SourceAddr = string(res)
	res, err = buf.ReadCString(17)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding schedule_delivery_time %s", err)
	}
	p.ScheduleDeliveryTime = string(res)
	res, err = buf.ReadCString(17)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding validity_period %s", err)
	}
	p.ValidityPeriod = string(res)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding registered_delivery %s", err)
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding sm_default_msg_id %s", err)
	}
	p.SmDefaultMsgID = int(b)
	sm, err := buf.ReadString(254)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding short_message %s", err)
	}
	p.ShortMessage = string(sm)
	return nil
}

// ReplaceSmResp is the (bodyless) response to replace_sm.
type ReplaceSmResp struct{}

// CommandID implements pdu.PDU interface.
func (p ReplaceSmResp) CommandID() CommandID {
	return ReplaceSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p ReplaceSmResp) MarshalBinary() ([]byte, error) {
	return nil, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p ReplaceSmResp) UnmarshalBinary(body []byte) error {
	return nil
}

// Outbind is sent unsolicited by an SMSC to invite an ESME to bind as a
// receiver. The session engine only needs to decode it so that unexpected
// inbound outbind PDUs don't panic NewPDU; an ESME-role session never sends
// one.
type Outbind struct {
	SystemID string
	Password string
}

// CommandID implements pdu.PDU interface.
func (p Outbind) CommandID() CommandID {
	return OutbindID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p Outbind) MarshalBinary() ([]byte, error) {
	out := append([]byte(p.SystemID), 0)
	out = append(out, append([]byte(p.Password), 0)...)
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *Outbind) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(16)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding system_id %s", err)
	}
	p.SystemID = string(res)
	res, err = buf.ReadCString(9)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding password %s", err)
	}
	p.Password = string(res)
	return nil
}

// Destination flag values for submit_multi's dest_flag field.
const (
	DestFlagSMEAddress  = 1
	DestFlagDistribList = 2
)

// MultiDestination is one element of submit_multi's destination list:
// either a single SME address or a distribution list name, selected by Flag.
type MultiDestination struct {
	Flag            int
	DestAddrTon     int
	DestAddrNpi     int
	DestinationAddr string
	DlName          string
}

func (d MultiDestination) marshal() []byte {
	if d.Flag == DestFlagDistribList {
		out := []byte{byte(DestFlagDistribList)}
		return append(out, append([]byte(d.DlName), 0)...)
	}
	out := []byte{byte(DestFlagSMEAddress), byte(d.DestAddrTon), byte(d.DestAddrNpi)}
	return append(out, append([]byte(d.DestinationAddr), 0)...)
}

// UnsuccessSme reports per-destination failures in submit_multi_resp.
type UnsuccessSme struct {
	DestAddrTon     int
	DestAddrNpi     int
	DestinationAddr string
	ErrorStatus     Status
}

// SubmitMulti submits a short message to more than one destination, each an
// SME address or a distribution list.
type SubmitMulti struct {
	ServiceType          string
	SourceAddrTon        int
	SourceAddrNpi        int
	SourceAddr           string
	Dests                []MultiDestination
	EsmClass             EsmClass
	ProtocolID           int
	PriorityFlag         int
	ScheduleDeliveryTime string
	ValidityPeriod       string
	RegisteredDelivery   RegisteredDelivery
	ReplaceIfPresentFlag int
	DataCoding           int
	SmDefaultMsgID       int
	ShortMessage         string
	Options              *Options
}

// CommandID implements pdu.PDU interface.
func (p SubmitMulti) CommandID() CommandID {
	return SubmitMultiID
}

// Response creates new SubmitMultiResp.
func (p SubmitMulti) Response(msgID string) *SubmitMultiResp {
	return &SubmitMultiResp{MessageID: msgID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitMulti) MarshalBinary() ([]byte, error) {
	if len(p.Dests) == 0 {
		return nil, fmt.Errorf("smpp/pdu: submit_multi requires at least one destination")
	}
	if len(p.Dests) > 254 {
		return nil, fmt.Errorf("smpp/pdu: submit_multi supports at most 254 destinations, got %d", len(p.Dests))
	}
	out := append([]byte(p.ServiceType), 0, byte(p.SourceAddrTon), byte(p.SourceAddrNpi))
	out = append(out, append([]byte(p.SourceAddr), 0)...)
	out = append(out, byte(len(p.Dests)))
	for _, d := range p.Dests {
		out = append(out, d.marshal()...)
	}
	out = append(out, p.EsmClass.Byte(), byte(p.ProtocolID), byte(p.PriorityFlag))
	out = append(out, append([]byte(p.ScheduleDeliveryTime), 0)...)
	out = append(out, append([]byte(p.ValidityPeriod), 0)...)
	l := len(p.ShortMessage)
	out = append(out, p.RegisteredDelivery.Byte(), byte(p.ReplaceIfPresentFlag), byte(p.DataCoding), byte(p.SmDefaultMsgID), byte(l))
	if l > 0 {
		out = append(out, []byte(p.ShortMessage)...)
	}
	if p.Options == nil {
		return out, nil
	}
	opts, err := p.Options.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, opts...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *SubmitMulti) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(6)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding service_type %s", err)
	}
	p.ServiceType = string(res)
	b, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_ton %s", err)
	}
	p.SourceAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_npi %s", err)
	}
	p.SourceAddrNpi = int(b)
	res, err = buf.ReadCString(21)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr %s", err)
	}
	p.SourceAddr = string(res)
	n, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding number_of_dests %s", err)
	}
	p.Dests = make([]MultiDestination, 0, n)
	for i := 0; i < int(n); i++ {
		flag, err := buf.ReadByte()
		if err != nil {
			return fmt.Errorf("smpp/pdu: decoding dest_flag %s", err)
		}
		d := MultiDestination{Flag: int(flag)}
		if flag == DestFlagDistribList {
			res, err := buf.ReadCString(21)
			if err != nil {
				return fmt.Errorf("smpp/pdu: decoding dl_name %s", err)
			}
			d.DlName = string(res)
		} else {
			ton, err := buf.ReadByte()
			if err != nil {
				return fmt.Errorf("smpp/pdu: decoding dest_addr_ton %s", err)
			}
			npi, err := buf.ReadByte()
			if err != nil {
				return fmt.Errorf("smpp/pdu: decoding dest_addr_npi %s", err)
			}
			res, err := buf.ReadCString(21)
			if err != nil {
				return fmt.Errorf("smpp/pdu: decoding destination_addr %s", err)
			}
			d.DestAddrTon = int(ton)
			d.DestAddrNpi = int(npi)
			d.DestinationAddr = string(res)
		}
		p.Dests = append(p.Dests, d)
	}
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding esm_class %s", err)
	}
	p.EsmClass = ParseEsmClass(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding protocol_id %s", err)
	}
	p.ProtocolID = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding priority_flag %s", err)
	}
	p.PriorityFlag = int(b)
	res, err = buf.ReadCString(17)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding schedule_delivery_time %s", err)
	}
	p.ScheduleDeliveryTime = string(res)
	res, err = buf.ReadCString(17)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding validity_period %s", err)
	}
	p.ValidityPeriod = string(res)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding registered_delivery %s", err)
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding replace_if_present_flag %s", err)
	}
	p.ReplaceIfPresentFlag = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding data_coding %s", err)
	}
	p.DataCoding = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding sm_default_msg_id %s", err)
	}
	p.SmDefaultMsgID = int(b)
	sm, err := buf.ReadString(254)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding short_message %s", err)
	}
	p.ShortMessage = string(sm)
	if buf.Len() == 0 {
		return nil
	}
	if p.Options == nil {
		p.Options = NewOptions()
	}
	return p.Options.UnmarshalBinary(buf.Bytes())
}

// SubmitMultiResp carries the outcome of a submit_multi request, including
// per-destination failures.
type SubmitMultiResp struct {
	MessageID string
	Unsuccess []UnsuccessSme
}

// CommandID implements pdu.PDU interface.
func (p SubmitMultiResp) CommandID() CommandID {
	return SubmitMultiRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p SubmitMultiResp) MarshalBinary() ([]byte, error) {
	if len(p.Unsuccess) > 254 {
		return nil, fmt.Errorf("smpp/pdu: submit_multi_resp supports at most 254 unsuccessful destinations")
	}
	out := append([]byte(p.MessageID), 0, byte(len(p.Unsuccess)))
	for _, u := range p.Unsuccess {
		out = append(out, byte(u.DestAddrTon), byte(u.DestAddrNpi))
		out = append(out, append([]byte(u.DestinationAddr), 0)...)
		errStatus := make([]byte, 4)
		errStatus[0] = byte(u.ErrorStatus >> 24)
		errStatus[1] = byte(u.ErrorStatus >> 16)
		errStatus[2] = byte(u.ErrorStatus >> 8)
		errStatus[3] = byte(u.ErrorStatus)
		out = append(out, errStatus...)
	}
	return out, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *SubmitMultiResp) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(65)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding message_id %s", err)
	}
	p.MessageID = string(res)
	n, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding no_unsuccess %s", err)
	}
	p.Unsuccess = make([]UnsuccessSme, 0, n)
	for i := 0; i < int(n); i++ {
		ton, err := buf.ReadByte()
		if err != nil {
			return fmt.Errorf("smpp/pdu: decoding dest_addr_ton %s", err)
		}
		npi, err := buf.ReadByte()
		if err != nil {
			return fmt.Errorf("smpp/pdu: decoding dest_addr_npi %s", err)
		}
		addr, err := buf.ReadCString(21)
		if err != nil {
			return fmt.Errorf("smpp/pdu: decoding destination_addr %s", err)
		}
		var errBuf [4]byte
		if _, err := buf.Read(errBuf[:]); err != nil {
			return fmt.Errorf("smpp/pdu: decoding error_status_code %s", err)
		}
		status := Status(uint32(errBuf[0])<<24 | uint32(errBuf[1])<<16 | uint32(errBuf[2])<<8 | uint32(errBuf[3]))
		p.Unsuccess = append(p.Unsuccess, UnsuccessSme{
			DestAddrTon:     int(ton),
			DestAddrNpi:     int(npi),
			DestinationAddr: string(addr),
			ErrorStatus:     status,
		})
	}
	return nil
}

// AlertNotification is sent by the SMSC to an ESME bound as a receiver when
// a previously inaccessible destination becomes available again.
type AlertNotification struct {
	SourceAddrTon int
	SourceAddrNpi int
	SourceAddr    string
	EsmeAddrTon   int
	EsmeAddrNpi   int
	EsmeAddr      string
	Options       *Options
}

// CommandID implements pdu.PDU interface.
func (p AlertNotification) CommandID() CommandID {
	return AlertNotificationID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p AlertNotification) MarshalBinary() ([]byte, error) {
	out := []byte{byte(p.SourceAddrTon), byte(p.SourceAddrNpi)}
	out = append(out, append([]byte(p.SourceAddr), 0)...)
	out = append(out, byte(p.EsmeAddrTon), byte(p.EsmeAddrNpi))
	out = append(out, append([]byte(p.EsmeAddr), 0)...)
	if p.Options == nil {
		return out, nil
	}
	opts, err := p.Options.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, opts...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *AlertNotification) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	ton, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_ton %s", err)
	}
	p.SourceAddrTon = int(ton)
	npi, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_npi %s", err)
	}
	p.SourceAddrNpi = int(npi)
	res, err := buf.ReadCString(65)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr %s", err)
	}
	p.SourceAddr = string(res)
	ton, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding esme_addr_ton %s", err)
	}
	p.EsmeAddrTon = int(ton)
	npi, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding esme_addr_npi %s", err)
	}
	p.EsmeAddrNpi = int(npi)
	res, err = buf.ReadCString(65)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding esme_addr %s", err)
	}
	p.EsmeAddr = string(res)
	if buf.Len() == 0 {
		return nil
	}
	p.Options = NewOptions()
	return p.Options.UnmarshalBinary(buf.Bytes())
}

// DataSm transfers data between an ESME and the SMSC, commonly used for
// interactive and session-based messaging.
type DataSm struct {
	ServiceType        string
	SourceAddrTon      int
	SourceAddrNpi      int
	SourceAddr         string
	DestAddrTon        int
	DestAddrNpi        int
	DestinationAddr    string
	EsmClass           EsmClass
	RegisteredDelivery RegisteredDelivery
	DataCoding         int
	Options            *Options
}

// CommandID implements pdu.PDU interface.
func (p DataSm) CommandID() CommandID {
	return DataSmID
}

// Response creates new DataSmResp.
func (p DataSm) Response(msgID string) *DataSmResp {
	return &DataSmResp{MessageID: msgID}
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p DataSm) MarshalBinary() ([]byte, error) {
	out := append([]byte(p.ServiceType), 0, byte(p.SourceAddrTon), byte(p.SourceAddrNpi))
	out = append(out, append([]byte(p.SourceAddr), 0)...)
	out = append(out, byte(p.DestAddrTon), byte(p.DestAddrNpi))
	out = append(out, append([]byte(p.DestinationAddr), 0)...)
	out = append(out, p.EsmClass.Byte(), p.RegisteredDelivery.Byte(), byte(p.DataCoding))
	if p.Options == nil {
		return out, nil
	}
	opts, err := p.Options.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(out, opts...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *DataSm) UnmarshalBinary(body []byte) error {
	buf := newBuffer(body)
	res, err := buf.ReadCString(6)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding service_type %s", err)
	}
	p.ServiceType = string(res)
	b, err := buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_ton %s", err)
	}
	p.SourceAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr_npi %s", err)
	}
	p.SourceAddrNpi = int(b)
	res, err = buf.ReadCString(65)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding source_addr %s", err)
	}
	p.SourceAddr = string(res)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding dest_addr_ton %s", err)
	}
	p.DestAddrTon = int(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding dest_addr_npi %s", err)
	}
	p.DestAddrNpi = int(b)
	res, err = buf.ReadCString(65)
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding destination_addr %s", err)
	}
	p.DestinationAddr = string(res)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding esm_class %s", err)
	}
	p.EsmClass = ParseEsmClass(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding registered_delivery %s", err)
	}
	p.RegisteredDelivery = ParseRegisteredDelivery(b)
	b, err = buf.ReadByte()
	if err != nil {
		return fmt.Errorf("smpp/pdu: decoding data_coding %s", err)
	}
	p.DataCoding = int(b)
	if buf.Len() == 0 {
		return nil
	}
	p.Options = NewOptions()
	return p.Options.UnmarshalBinary(buf.Bytes())
}

// DataSmResp carries the SMSC's message_id assignment for a data_sm request.
type DataSmResp struct {
	MessageID string
	Options   *Options
}

// CommandID implements pdu.PDU interface.
func (p DataSmResp) CommandID() CommandID {
	return DataSmRespID
}

// MarshalBinary implements encoding.BinaryMarshaler interface.
func (p DataSmResp) MarshalBinary() ([]byte, error) {
	return cStringOptsRespMarshal(p.MessageID, p.Options)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler interface.
func (p *DataSmResp) UnmarshalBinary(body []byte) error {
	var err error
	p.MessageID, p.Options, err = cStringOptsRespUnmarshal(body)
	return err
}
