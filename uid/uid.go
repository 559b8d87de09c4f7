// Package uid holds the static, process-wide table of well-known DICOM
// UIDs used by the upper-layer core: the fixed application context name,
// the verification SOP class, the standard transfer syntaxes, and a
// representative sample of storage/query-retrieve SOP classes for use in
// examples and tests.
//
// https://www.dicomlibrary.com/dicom/sop/
package uid

import "strings"

// ApplicationContextName is the fixed UID carried in every
// A-ASSOCIATE-RQ/AC, per PS3.8 §6.
const ApplicationContextName = "1.2.840.10008.3.1.1.1"

// DefaultImplementationClassUID identifies this implementation in the
// User Information item of every A-ASSOCIATE-RQ/AC this module sends.
// Applications embedding this module in a product should override it.
const DefaultImplementationClassUID = "1.2.840.10008.5.1.4.1.1.9999.1"

// DefaultImplementationVersionName is the matching 1..16 ASCII character
// version string sent alongside DefaultImplementationClassUID.
const DefaultImplementationVersionName = "ULCORE_1"

// SOPClass names an abstract syntax: a UID paired with a human-readable
// name.
type SOPClass struct {
	Name string
	UID  string
}

// VerificationSOPClass is the abstract syntax used by C-ECHO.
var VerificationSOPClass = SOPClass{"VerificationSOPClass", "1.2.840.10008.1.1"}

// VerificationClasses lists the abstract syntaxes a requestor proposes to
// perform verification (C-ECHO).
var VerificationClasses = []SOPClass{VerificationSOPClass}

// StorageClasses is a representative sample of Storage SOP classes; the
// full catalog has hundreds of entries (see the DICOM standard PS3.6) and
// is not reproduced here. Callers needing more can append to this slice
// or list their own abstract syntax UIDs in an acse configuration's
// proposed or supported contexts.
var StorageClasses = []SOPClass{
	{"CTImageStorage", "1.2.840.10008.5.1.4.1.1.2"},
	{"MRImageStorage", "1.2.840.10008.5.1.4.1.1.4"},
	{"SecondaryCaptureImageStorage", "1.2.840.10008.5.1.4.1.1.7"},
	{"UltrasoundImageStorage", "1.2.840.10008.5.1.4.1.1.6.1"},
	{"ComputedRadiographyImageStorage", "1.2.840.10008.5.1.4.1.1.1"},
}

// QueryRetrieveClasses is a representative sample of Query/Retrieve SOP
// classes (C-FIND/C-GET/C-MOVE), again a sample rather than the full list.
var QueryRetrieveClasses = []SOPClass{
	{"StudyRootQueryRetrieveInformationModelFIND", "1.2.840.10008.5.1.4.1.2.2.1"},
	{"StudyRootQueryRetrieveInformationModelMOVE", "1.2.840.10008.5.1.4.1.2.2.2"},
	{"StudyRootQueryRetrieveInformationModelGET", "1.2.840.10008.5.1.4.1.2.2.3"},
	{"PatientRootQueryRetrieveInformationModelFIND", "1.2.840.10008.5.1.4.1.2.1.1"},
	{"PatientRootQueryRetrieveInformationModelMOVE", "1.2.840.10008.5.1.4.1.2.1.2"},
	{"PatientRootQueryRetrieveInformationModelGET", "1.2.840.10008.5.1.4.1.2.1.3"},
}

// Standard transfer syntax UIDs.
const (
	ImplicitVRLittleEndian         = "1.2.840.10008.1.2"
	ExplicitVRLittleEndian         = "1.2.840.10008.1.2.1"
	ExplicitVRBigEndian            = "1.2.840.10008.1.2.2"
	DeflatedExplicitVRLittleEndian = "1.2.840.10008.1.2.1.99"
	JPEGBaseline                   = "1.2.840.10008.1.2.4.50"
	JPEGLosslessSV1                = "1.2.840.10008.1.2.4.70"
	JPEG2000Lossless               = "1.2.840.10008.1.2.4.90"
	JPEG2000                       = "1.2.840.10008.1.2.4.91"
	RLELossless                    = "1.2.840.10008.1.2.5"
)

// StandardTransferSyntaxes lists the transfer syntaxes above except
// DeflatedExplicitVRLittleEndian, ordered by preference (uncompressed
// first). Nothing in this module substitutes it for a caller's list: a
// presentation context with no transfer syntaxes is a configuration error.
var StandardTransferSyntaxes = []string{
	ImplicitVRLittleEndian,
	ExplicitVRLittleEndian,
	ExplicitVRBigEndian,
	JPEGBaseline,
	JPEGLosslessSV1,
	JPEG2000Lossless,
	JPEG2000,
	RLELossless,
}

// MaxUIDLength is the maximum encoded length of a DICOM UID (PS3.8 §3).
const MaxUIDLength = 64

// Valid reports whether s is a syntactically acceptable UID: ASCII,
// dotted-decimal, no longer than MaxUIDLength bytes. It does not check
// that the UID is registered.
func Valid(s string) bool {
	if s == "" || len(s) > MaxUIDLength {
		return false
	}
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// AETitleLength is the fixed wire width of an Application Entity title
// (PS3.8 §6): 16 bytes, ASCII, space-padded on the right.
const AETitleLength = 16

// PadAETitle right-pads (or truncates) an AE title to AETitleLength bytes
// for wire encoding.
func PadAETitle(title string) string {
	if len(title) > AETitleLength {
		return title[:AETitleLength]
	}
	for len(title) < AETitleLength {
		title += " "
	}
	return title
}

// TrimAETitle removes the space padding added by PadAETitle, for
// comparison and display.
func TrimAETitle(title string) string {
	return strings.TrimRight(title, " ")
}

// ValidAETitle reports whether title is acceptable as a locally
// configured AE title: non-empty once trimmed of padding, and no longer
// than AETitleLength bytes (PS3.8 §6: "Empty or all-space titles are
// rejected at configuration time").
func ValidAETitle(title string) bool {
	trimmed := strings.TrimRight(title, " ")
	if trimmed == "" {
		return false
	}
	return len(title) <= AETitleLength
}

// EqualAETitle compares two AE titles the way the wire format requires:
// case-sensitive, padding-normalized (PS3.8 §6).
func EqualAETitle(a, b string) bool {
	return strings.TrimRight(a, " ") == strings.TrimRight(b, " ")
}
