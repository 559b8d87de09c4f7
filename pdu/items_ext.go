package pdu

// SCP/SCU role selection, SOP Class Extended/Common Extended
// Negotiation, and User Identity Negotiation (including type 5 / JWT)
// sub-items, per PS3.7 Annex D.3.3. Byte layout follows pynetdicom's
// pdu_items.py, a second independent implementation of the same
// standard text.

import (
	"encoding/binary"
	"fmt"

	"github.com/yasushi-saito/go-dicom/dicomio"
)

// PS3.7 Annex D.3.3.4, Table D.3-1
type SCRole byte

const (
	SCRoleDefault   SCRole = 0 // non-support of the role
	SCRoleSupported SCRole = 1
)

// RoleSelectionSubItem negotiates which side of an abstract syntax acts
// as SCU/SCP, item type 0x54.
type RoleSelectionSubItem struct {
	SOPClassUID string
	SCURole     SCRole
	SCPRole     SCRole
}

func decodeRoleSelectionSubItem(d *dicomio.Decoder, length uint16) *RoleSelectionSubItem {
	d.PushLimit(int64(length))
	defer d.PopLimit()
	uidLen := d.ReadUInt16()
	v := &RoleSelectionSubItem{}
	v.SOPClassUID = d.ReadString(int(uidLen))
	v.SCURole = SCRole(d.ReadByte())
	v.SCPRole = SCRole(d.ReadByte())
	return v
}

func (v *RoleSelectionSubItem) Write(e *dicomio.Encoder) {
	encodeSubItemHeader(e, ItemTypeRoleSelection, uint16(2+len(v.SOPClassUID)+2))
	e.WriteUInt16(uint16(len(v.SOPClassUID)))
	e.WriteBytes([]byte(v.SOPClassUID))
	e.WriteByte(byte(v.SCURole))
	e.WriteByte(byte(v.SCPRole))
}

func (v *RoleSelectionSubItem) String() string {
	return fmt.Sprintf("roleselection{sopclass: %q scu: %v scp: %v}",
		v.SOPClassUID, v.SCURole == SCRoleSupported, v.SCPRole == SCRoleSupported)
}

// SOPClassExtendedNegotiationSubItem carries service-class-specific
// application information alongside an abstract syntax, item type 0x56.
type SOPClassExtendedNegotiationSubItem struct {
	SOPClassUID         string
	ServiceClassAppInfo []byte
}

func decodeSOPClassExtendedNegotiationSubItem(d *dicomio.Decoder, length uint16) *SOPClassExtendedNegotiationSubItem {
	d.PushLimit(int64(length))
	defer d.PopLimit()
	uidLen := d.ReadUInt16()
	v := &SOPClassExtendedNegotiationSubItem{}
	v.SOPClassUID = d.ReadString(int(uidLen))
	v.ServiceClassAppInfo = d.ReadBytes(int(d.Len()))
	return v
}

func (v *SOPClassExtendedNegotiationSubItem) Write(e *dicomio.Encoder) {
	encodeSubItemHeader(e, ItemTypeSOPClassExtendedNegotiation,
		uint16(2+len(v.SOPClassUID)+len(v.ServiceClassAppInfo)))
	e.WriteUInt16(uint16(len(v.SOPClassUID)))
	e.WriteBytes([]byte(v.SOPClassUID))
	e.WriteBytes(v.ServiceClassAppInfo)
}

func (v *SOPClassExtendedNegotiationSubItem) String() string {
	return fmt.Sprintf("sopclassextendednegotiation{sopclass: %q appinfo: %d bytes}",
		v.SOPClassUID, len(v.ServiceClassAppInfo))
}

// SOPClassCommonExtendedNegotiationSubItem advertises the related
// general SOP classes for a proposed abstract syntax, item type 0x57.
// The related-general-SOP-class-identification field is optional: an
// empty slice means the requestor declined to assert any.
type SOPClassCommonExtendedNegotiationSubItem struct {
	SOPClassUID              string
	ServiceClassUID          string
	RelatedGeneralSOPClasses []string
}

func decodeSOPClassCommonExtendedNegotiationSubItem(d *dicomio.Decoder, length uint16) *SOPClassCommonExtendedNegotiationSubItem {
	d.PushLimit(int64(length))
	defer d.PopLimit()
	v := &SOPClassCommonExtendedNegotiationSubItem{}
	sopLen := d.ReadUInt16()
	v.SOPClassUID = d.ReadString(int(sopLen))
	serviceLen := d.ReadUInt16()
	v.ServiceClassUID = d.ReadString(int(serviceLen))
	listLen := d.ReadUInt16()
	d.PushLimit(int64(listLen))
	for d.Len() > 0 {
		uidLen := d.ReadUInt16()
		v.RelatedGeneralSOPClasses = append(v.RelatedGeneralSOPClasses, d.ReadString(int(uidLen)))
	}
	d.PopLimit()
	return v
}

func (v *SOPClassCommonExtendedNegotiationSubItem) Write(e *dicomio.Encoder) {
	listEncoder := dicomio.NewBytesEncoder(binary.BigEndian, dicomio.UnknownVR)
	for _, uid := range v.RelatedGeneralSOPClasses {
		listEncoder.WriteUInt16(uint16(len(uid)))
		listEncoder.WriteBytes([]byte(uid))
	}
	listBytes := listEncoder.Bytes()
	total := 2 + len(v.SOPClassUID) + 2 + len(v.ServiceClassUID) + 2 + len(listBytes)
	encodeSubItemHeader(e, ItemTypeSOPClassCommonExtendedNegotiation, uint16(total))
	e.WriteUInt16(uint16(len(v.SOPClassUID)))
	e.WriteBytes([]byte(v.SOPClassUID))
	e.WriteUInt16(uint16(len(v.ServiceClassUID)))
	e.WriteBytes([]byte(v.ServiceClassUID))
	e.WriteUInt16(uint16(len(listBytes)))
	e.WriteBytes(listBytes)
}

func (v *SOPClassCommonExtendedNegotiationSubItem) String() string {
	return fmt.Sprintf("sopclasscommonextendednegotiation{sopclass: %q service: %q related: %d}",
		v.SOPClassUID, v.ServiceClassUID, len(v.RelatedGeneralSOPClasses))
}

// UserIdentityType enumerates PS3.7 Table D.3-3's identity types. Type 5
// (JSON Web Token) is encoded and decoded exactly like the other types:
// this package does not interpret IdentityType, and PrimaryField and
// SecondaryField are carried as opaque bytes whatever the type.
type UserIdentityType byte

const (
	UserIdentityUsername         UserIdentityType = 1
	UserIdentityUsernamePasscode UserIdentityType = 2
	UserIdentityKerberos         UserIdentityType = 3
	UserIdentitySAML             UserIdentityType = 4
	UserIdentityJWT              UserIdentityType = 5
)

// UserIdentityRequestSubItem is item type 0x58, carried in an
// A-ASSOCIATE-RQ's User Information item.
type UserIdentityRequestSubItem struct {
	IdentityType              UserIdentityType
	PositiveResponseRequested bool
	PrimaryField              []byte
	SecondaryField            []byte // meaningful only for UserIdentityUsernamePasscode
}

func decodeUserIdentityRequestSubItem(d *dicomio.Decoder, length uint16) *UserIdentityRequestSubItem {
	d.PushLimit(int64(length))
	defer d.PopLimit()
	v := &UserIdentityRequestSubItem{}
	v.IdentityType = UserIdentityType(d.ReadByte())
	v.PositiveResponseRequested = d.ReadByte() != 0
	primaryLen := d.ReadUInt16()
	v.PrimaryField = d.ReadBytes(int(primaryLen))
	secondaryLen := d.ReadUInt16()
	if secondaryLen > 0 {
		v.SecondaryField = d.ReadBytes(int(secondaryLen))
	}
	return v
}

func (v *UserIdentityRequestSubItem) Write(e *dicomio.Encoder) {
	total := 1 + 1 + 2 + len(v.PrimaryField) + 2 + len(v.SecondaryField)
	encodeSubItemHeader(e, ItemTypeUserIdentityRequest, uint16(total))
	e.WriteByte(byte(v.IdentityType))
	if v.PositiveResponseRequested {
		e.WriteByte(1)
	} else {
		e.WriteByte(0)
	}
	e.WriteUInt16(uint16(len(v.PrimaryField)))
	e.WriteBytes(v.PrimaryField)
	e.WriteUInt16(uint16(len(v.SecondaryField)))
	e.WriteBytes(v.SecondaryField)
}

func (v *UserIdentityRequestSubItem) String() string {
	return fmt.Sprintf("useridentityrequest{type: %d positiveresponse: %v primary: %d bytes}",
		v.IdentityType, v.PositiveResponseRequested, len(v.PrimaryField))
}

// UserIdentityResponseSubItem is item type 0x59, the acceptor's reply in
// an A-ASSOCIATE-AC, present only when the requestor set
// PositiveResponseRequested.
type UserIdentityResponseSubItem struct {
	ServerResponse []byte
}

func decodeUserIdentityResponseSubItem(d *dicomio.Decoder, length uint16) *UserIdentityResponseSubItem {
	d.PushLimit(int64(length))
	defer d.PopLimit()
	v := &UserIdentityResponseSubItem{}
	respLen := d.ReadUInt16()
	v.ServerResponse = d.ReadBytes(int(respLen))
	return v
}

func (v *UserIdentityResponseSubItem) Write(e *dicomio.Encoder) {
	encodeSubItemHeader(e, ItemTypeUserIdentityResponse, uint16(2+len(v.ServerResponse)))
	e.WriteUInt16(uint16(len(v.ServerResponse)))
	e.WriteBytes(v.ServerResponse)
}

func (v *UserIdentityResponseSubItem) String() string {
	return fmt.Sprintf("useridentityresponse{response: %d bytes}", len(v.ServerResponse))
}
