// Package dimse implements the DIMSE command-set codec and the P-DATA
// fragmentation/reassembly state described in PS3.8 §4.5.
//
// A DIMSE message is a command set (a sequence of data elements, always
// encoded Implicit VR Little Endian per P3.7 6.3.1) optionally followed
// by a data set in the transfer syntax negotiated for the presentation
// context. Both halves travel as one or more P-DATA-TF PDVs.
//
// http://dicom.nema.org/medical/dicom/current/output/pdf/part07.pdf
package dimse

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/yasushi-saito/go-dicom"
	"github.com/yasushi-saito/go-dicom/dicomio"
	"v.io/x/lib/vlog"

	"github.com/net-dicom/ulcore/pdu"
)

// ErrMalformed wraps command-set decode failures, per the MalformedPDU /
// command-set entry of PS3.8 §7's error taxonomy.
var ErrMalformed = errors.New("malformed DIMSE command set")

// Message is the common interface for all C-XXX command/response types.
type Message interface {
	fmt.Stringer
	Encode(*dicomio.Encoder)
	HasData() bool // does a data set follow the command set?

	// CommandField is the command field value (0000,0100) this message
	// encodes as.
	CommandField() uint16
	// CorrelationID is the value a pending-command dispatcher keys on:
	// the Message ID for a request, the Message ID Being Responded To
	// for a response.
	CorrelationID() uint16
	// IsResponse reports whether this message is a *_RSP.
	IsResponse() bool
}

// dimseDecoder extracts typed fields from a flat list of decoded
// elements, accumulating the first error encountered (matching the
// teacher's accumulate-then-check-once style instead of returning an
// error from every accessor).
type dimseDecoder struct {
	elems []*dicom.Element
	seen  map[dicom.Tag]bool
	err   error
}

type isOptionalElement int

const (
	RequiredElement isOptionalElement = iota
	OptionalElement
)

func (d *dimseDecoder) setError(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *dimseDecoder) markSeen(tag dicom.Tag) {
	if d.seen == nil {
		d.seen = make(map[dicom.Tag]bool)
	}
	d.seen[tag] = true
}

func (d *dimseDecoder) findElement(tag dicom.Tag, optional isOptionalElement) *dicom.Element {
	for _, elem := range d.elems {
		if elem.Tag == tag {
			d.markSeen(tag)
			vlog.VI(2).Infof("dimse: found %v for %s", elem, tag.String())
			return elem
		}
	}
	if optional == RequiredElement {
		d.setError(fmt.Errorf("%w: required element %s not found", ErrMalformed, dicom.TagString(tag)))
	}
	return nil
}

func (d *dimseDecoder) getString(tag dicom.Tag, optional isOptionalElement) string {
	e := d.findElement(tag, optional)
	if e == nil {
		return ""
	}
	v, err := e.GetString()
	if err != nil {
		d.setError(fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return v
}

func (d *dimseDecoder) getUInt32(tag dicom.Tag, optional isOptionalElement) uint32 {
	e := d.findElement(tag, optional)
	if e == nil {
		return 0
	}
	v, err := e.GetUInt32()
	if err != nil {
		d.setError(fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return v
}

func (d *dimseDecoder) getUInt16(tag dicom.Tag, optional isOptionalElement) uint16 {
	e := d.findElement(tag, optional)
	if e == nil {
		return 0
	}
	v, err := e.GetUInt16()
	if err != nil {
		d.setError(fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	return v
}

// getStatus gathers the Status (0000,0900) element plus the optional
// Error Comment (0000,0902), the two fields every response type carries.
func (d *dimseDecoder) getStatus() Status {
	code := d.getUInt16(dicom.TagStatus, RequiredElement)
	comment := d.getString(dicom.TagErrorComment, OptionalElement)
	return Status{Status: StatusCode(code), ErrorComment: comment}
}

// unparsedElements returns every decoded element whose tag wasn't
// consumed by a typed getter, preserved on the message's Extra field so
// a round trip doesn't silently drop service-class-specific elements
// this package has no dedicated field for.
func (d *dimseDecoder) unparsedElements() []*dicom.Element {
	var extra []*dicom.Element
	for _, e := range d.elems {
		if d.seen == nil || !d.seen[e.Tag] {
			extra = append(extra, e)
		}
	}
	return extra
}

// encodeField writes a single DIMSE element with an auto-detected VR.
func encodeField(e *dicomio.Encoder, tag dicom.Tag, v interface{}) {
	elem := dicom.Element{
		Tag:   tag,
		Vr:    "",
		Vl:    1,
		Value: []interface{}{v},
	}
	dicom.EncodeDataElement(e, &elem)
}

// StatusCode is the DIMSE Status (0000,0900) field. P3.7 Annex C and
// P3.4 GG4 define the per-service-class code space; this module only
// names the handful every service class shares.
type StatusCode uint16

const (
	StatusSuccess          StatusCode = 0x0000
	StatusCancel           StatusCode = 0xFE00
	StatusOutOfResources   StatusCode = 0xA700
	StatusDataSetMismatch  StatusCode = 0xA900
	StatusCannotUnderstand StatusCode = 0xC000
)

func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusCancel:
		return "Cancel"
	case StatusOutOfResources:
		return "OutOfResources"
	case StatusDataSetMismatch:
		return "DataSetDoesNotMatchSOPClass"
	case StatusCannotUnderstand:
		return "CannotUnderstand"
	default:
		return fmt.Sprintf("Status(0x%04x)", uint16(s))
	}
}

// Status is the command-set status pair every *_RSP message carries.
type Status struct {
	Status       StatusCode
	ErrorComment string
}

func (s Status) String() string {
	if s.ErrorComment == "" {
		return s.Status.String()
	}
	return fmt.Sprintf("%v (%s)", s.Status, s.ErrorComment)
}

func encodeStatus(e *dicomio.Encoder, s Status) {
	encodeField(e, dicom.TagStatus, uint16(s.Status))
	if s.ErrorComment != "" {
		encodeField(e, dicom.TagErrorComment, s.ErrorComment)
	}
}

const CommandDataSetTypeNull uint16 = 0x0101

// ReadMessage decodes one DIMSE command set (plus any unrecognized
// elements, preserved in Extra) out of d. d must already be positioned
// at the start of the command group; ReadMessage pushes the mandatory
// Implicit VR Little Endian transfer syntax itself (P3.7 6.3.1) and
// restores whatever was active on return.
func ReadMessage(d *dicomio.Decoder) Message {
	var elems []*dicom.Element
	d.PushTransferSyntax(binary.LittleEndian, dicomio.ImplicitVR)
	defer d.PopTransferSyntax()
	for d.Len() > 0 {
		elem := dicom.ReadDataElement(d)
		if d.Error() != nil {
			break
		}
		elems = append(elems, elem)
	}

	dd := dimseDecoder{elems: elems}
	commandField := dd.getUInt16(dicom.TagCommandField, RequiredElement)
	if dd.err != nil {
		d.SetError(dd.err)
		return nil
	}
	v := decodeMessageForType(&dd, commandField)
	if dd.err != nil {
		d.SetError(dd.err)
		return nil
	}
	return v
}

// EncodeMessage serializes v's command set, prefixed with the mandatory
// Command Group Length (0000,0000) element, per P3.7 6.3.1.
func EncodeMessage(e *dicomio.Encoder, v Message) {
	subEncoder := dicomio.NewEncoder(binary.LittleEndian, dicomio.ImplicitVR)
	v.Encode(subEncoder)
	body, err := subEncoder.Finish()
	if err != nil {
		e.SetError(err)
		return
	}
	e.PushTransferSyntax(binary.LittleEndian, dicomio.ImplicitVR)
	defer e.PopTransferSyntax()
	encodeField(e, dicom.TagCommandGroupLength, uint32(len(body)))
	e.WriteBytes(body)
}

// CommandAssembler reassembles one DIMSE message (command set plus, if
// HasData() is true, a trailing data set) out of a run of P-DATA-TF
// PDUs sharing a presentation context, per PS3.8 §4.5's receive path.
// Not safe for concurrent use; one assembler serves one in-flight
// message on one presentation context at a time.
type CommandAssembler struct {
	contextID      byte
	commandBytes   []byte
	command        Message
	dataBytes      []byte
	readAllCommand bool
	readAllData    bool
}

// AddDataPDU folds one P-DATA-TF PDU's PDVs into the assembler. It
// returns a non-nil Message once the command set (and data set, if
// HasData() requires one) is fully reassembled; until then it returns a
// nil Message and a nil error to signal "need more PDUs".
func (a *CommandAssembler) AddDataPDU(p *pdu.P_DATA_TF) (contextID byte, msg Message, data []byte, err error) {
	for _, item := range p.Items {
		if a.contextID == 0 {
			a.contextID = item.ContextID
		} else if a.contextID != item.ContextID {
			return 0, nil, nil, fmt.Errorf("%w: PDV context ID changed mid-message: %d -> %d",
				ErrMalformed, a.contextID, item.ContextID)
		}
		if item.Command {
			a.commandBytes = append(a.commandBytes, item.Value...)
			if item.Last {
				if a.readAllCommand {
					return 0, nil, nil, fmt.Errorf("%w: >1 command PDV with the Last bit set", ErrMalformed)
				}
				a.readAllCommand = true
			}
		} else {
			a.dataBytes = append(a.dataBytes, item.Value...)
			if item.Last {
				if a.readAllData {
					return 0, nil, nil, fmt.Errorf("%w: >1 data PDV with the Last bit set", ErrMalformed)
				}
				a.readAllData = true
			}
		}
	}
	if !a.readAllCommand {
		return 0, nil, nil, nil
	}
	if a.command == nil {
		d := dicomio.NewBytesDecoder(a.commandBytes, binary.LittleEndian, dicomio.ImplicitVR)
		a.command = ReadMessage(d)
		if err := d.Finish(); err != nil {
			return 0, nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if a.command.HasData() && !a.readAllData {
		return 0, nil, nil, nil
	}
	contextID, msg, data = a.contextID, a.command, a.dataBytes
	*a = CommandAssembler{}
	return contextID, msg, data, nil
}

// DefaultMaxPDVPayload is the PDV payload budget used when the peer's
// negotiated Maximum Length is 0 ("unlimited"), per the Open Question
// resolution recorded in DESIGN.md.
const DefaultMaxPDVPayload = 16384

// Fragment splits a command set and optional data set into the
// PresentationDataValueItems of one or more P-DATA-TF PDUs, respecting
// maxPDUSize (the peer's negotiated Maximum Length; 0 substitutes
// DefaultMaxPDVPayload), per PS3.8 §4.5's send path.
func Fragment(contextID byte, commandBytes, dataBytes []byte, maxPDUSize uint32) []*pdu.P_DATA_TF {
	budget := int(maxPDUSize)
	if budget <= 0 {
		budget = DefaultMaxPDVPayload
	}
	// Reserve room for the 6-byte PDU header and the 6-byte PDV item
	// header (4-byte length, context ID, control byte) so a full chunk
	// never exceeds the negotiated PDU size once framed.
	chunkSize := budget - 12
	if chunkSize <= 0 {
		chunkSize = DefaultMaxPDVPayload
	}
	var pdus []*pdu.P_DATA_TF
	if len(commandBytes) > 0 {
		pdus = append(pdus, fragmentInto(contextID, commandBytes, true, chunkSize)...)
	}
	if len(dataBytes) > 0 {
		pdus = append(pdus, fragmentInto(contextID, dataBytes, false, chunkSize)...)
	}
	return pdus
}

func fragmentInto(contextID byte, payload []byte, isCommand bool, chunkSize int) []*pdu.P_DATA_TF {
	if len(payload) == 0 {
		return []*pdu.P_DATA_TF{{
			Items: []pdu.PresentationDataValueItem{
				{ContextID: contextID, Command: isCommand, Last: true, Value: nil},
			},
		}}
	}
	var out []*pdu.P_DATA_TF
	for offset := 0; offset < len(payload); offset += chunkSize {
		end := offset + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		out = append(out, &pdu.P_DATA_TF{
			Items: []pdu.PresentationDataValueItem{{
				ContextID: contextID,
				Command:   isCommand,
				Last:      end == len(payload),
				Value:     payload[offset:end],
			}},
		})
	}
	return out
}
