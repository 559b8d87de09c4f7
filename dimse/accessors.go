package dimse

// Command field values (0000,0100), mirrored here from the literals each
// type's Encode method writes, so callers outside this package (the
// assoc dispatcher, in particular) have names instead of magic numbers.
const (
	CommandFieldCStoreRQ  uint16 = 0x0001
	CommandFieldCStoreRSP uint16 = 0x8001
	CommandFieldCFindRQ   uint16 = 0x0020
	CommandFieldCFindRSP  uint16 = 0x8020
	CommandFieldCEchoRQ   uint16 = 0x0030
	CommandFieldCEchoRSP  uint16 = 0x8030
)

// CommandField returns the command field value (0000,0100) encoded on
// the wire for v's concrete type.
func (v *C_STORE_RQ) CommandField() uint16  { return CommandFieldCStoreRQ }
func (v *C_STORE_RSP) CommandField() uint16 { return CommandFieldCStoreRSP }
func (v *C_FIND_RQ) CommandField() uint16   { return CommandFieldCFindRQ }
func (v *C_FIND_RSP) CommandField() uint16  { return CommandFieldCFindRSP }
func (v *C_ECHO_RQ) CommandField() uint16   { return CommandFieldCEchoRQ }
func (v *C_ECHO_RSP) CommandField() uint16  { return CommandFieldCEchoRSP }

// CorrelationID is the Message ID (0000,0110) for a *_RQ and the Message
// ID Being Responded To (0000,0120) for a *_RSP, whichever field
// correlates a response back to the request that triggered it. A
// pending-command dispatcher keys its table on this value.
func (v *C_STORE_RQ) CorrelationID() uint16  { return v.MessageID }
func (v *C_STORE_RSP) CorrelationID() uint16 { return v.MessageIDBeingRespondedTo }
func (v *C_FIND_RQ) CorrelationID() uint16   { return v.MessageID }
func (v *C_FIND_RSP) CorrelationID() uint16  { return v.MessageIDBeingRespondedTo }
func (v *C_ECHO_RQ) CorrelationID() uint16   { return v.MessageID }
func (v *C_ECHO_RSP) CorrelationID() uint16  { return v.MessageIDBeingRespondedTo }

// IsResponse reports whether v is a *_RSP message (its command field's
// high bit, P3.7 E.1, is set).
func (v *C_STORE_RQ) IsResponse() bool  { return false }
func (v *C_STORE_RSP) IsResponse() bool { return true }
func (v *C_FIND_RQ) IsResponse() bool   { return false }
func (v *C_FIND_RSP) IsResponse() bool  { return true }
func (v *C_ECHO_RQ) IsResponse() bool   { return false }
func (v *C_ECHO_RSP) IsResponse() bool  { return true }
