package acse

import (
	"time"

	"github.com/net-dicom/ulcore/pdu"
	"github.com/net-dicom/ulcore/uid"
)

// DefaultTimeout is acse_timeout (PS3.8 §4.4) when a config leaves
// Timeout unset.
const DefaultTimeout = 30 * time.Second

// ProposedContext is one abstract syntax a requestor offers, paired with
// the transfer syntaxes it is willing to use and (optionally) the role
// it wants to play.
type ProposedContext struct {
	AbstractSyntax   string
	TransferSyntaxes []string

	// ProposeRole, if true, attaches a role-selection item (PS3.8
	// §4.4); SCURole/SCPRole are only meaningful when this is true. If
	// false, the default negotiated role is (scu=true, scp=false).
	ProposeRole bool
	SCURole     bool
	SCPRole     bool
}

// UserIdentity is the optional User Identity Negotiation (item 0x58) a
// requestor attaches to its A-ASSOCIATE-RQ.
type UserIdentity struct {
	Type                      pdu.UserIdentityType
	PositiveResponseRequested bool
	Primary                   []byte
	Secondary                 []byte // only meaningful for UserIdentityUsernamePasscode
}

// RequestorConfig configures the requestor (client) side of Request.
type RequestorConfig struct {
	CallingAETitle string
	CalledAETitle  string
	Contexts       []ProposedContext
	MaximumPDUSize uint32
	Timeout        time.Duration
	UserIdentity   *UserIdentity

	// ImplementationClassUID/Name identify this implementation to the
	// peer; both default to uid.DefaultImplementationClassUID/Name when
	// left empty.
	ImplementationClassUID    string
	ImplementationVersionName string
}

func (c *RequestorConfig) fillDefaults() {
	if c.MaximumPDUSize == 0 {
		c.MaximumPDUSize = 16384
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ImplementationClassUID == "" {
		c.ImplementationClassUID = uid.DefaultImplementationClassUID
	}
	if c.ImplementationVersionName == "" {
		c.ImplementationVersionName = uid.DefaultImplementationVersionName
	}
}

func (c *RequestorConfig) validate() error {
	if !uid.ValidAETitle(c.CallingAETitle) {
		return configErrorf("invalid CallingAETitle %q", c.CallingAETitle)
	}
	if !uid.ValidAETitle(c.CalledAETitle) {
		return configErrorf("invalid CalledAETitle %q", c.CalledAETitle)
	}
	if len(c.Contexts) == 0 {
		return configErrorf("at least one proposed context is required")
	}
	for _, ctx := range c.Contexts {
		if !uid.Valid(ctx.AbstractSyntax) {
			return configErrorf("invalid abstract syntax %q", ctx.AbstractSyntax)
		}
		if len(ctx.TransferSyntaxes) == 0 {
			return configErrorf("context %q proposes no transfer syntaxes", ctx.AbstractSyntax)
		}
	}
	return nil
}

// SupportedContext is one abstract syntax an acceptor is willing to
// negotiate, with its transfer syntaxes in preference order.
type SupportedContext struct {
	AbstractSyntax   string
	TransferSyntaxes []string

	// SCUSupported/SCPSupported bound the roles this acceptor will grant
	// when a requestor proposes a role-selection item for this abstract
	// syntax (PS3.8 §4.4's "intersected with the acceptor's support").
	SCUSupported bool
	SCPSupported bool
}

// UserIdentityValidator checks a requestor's User Identity item. It
// returns whether to accept the association and, if the requestor set
// PositiveResponseRequested, the bytes to echo back in the
// UserIdentityResponseSubItem.
type UserIdentityValidator func(*pdu.UserIdentityRequestSubItem) (accept bool, response []byte)

// AcceptorConfig configures the acceptor (server) side of Accept.
type AcceptorConfig struct {
	CalledAETitle          string
	StrictCalledAETitle    bool     // reject on a CalledAETitle mismatch
	AllowedCallingAETitles []string // empty/nil = any calling title accepted

	SupportedContexts []SupportedContext
	MaximumPDUSize    uint32
	Timeout           time.Duration

	// MaxConcurrentAssociations, if non-zero, is enforced against
	// CurrentAssociations() (PS3.8 §4.4 policy check 4). A nil
	// CurrentAssociations with a non-zero limit is a configuration error.
	MaxConcurrentAssociations int
	CurrentAssociations       func() int

	ValidateUserIdentity UserIdentityValidator // nil = accept unconditionally

	ImplementationClassUID    string
	ImplementationVersionName string
}

func (c *AcceptorConfig) fillDefaults() {
	if c.MaximumPDUSize == 0 {
		c.MaximumPDUSize = 16384
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ImplementationClassUID == "" {
		c.ImplementationClassUID = uid.DefaultImplementationClassUID
	}
	if c.ImplementationVersionName == "" {
		c.ImplementationVersionName = uid.DefaultImplementationVersionName
	}
}

func (c *AcceptorConfig) validate() error {
	if !uid.ValidAETitle(c.CalledAETitle) {
		return configErrorf("invalid CalledAETitle %q", c.CalledAETitle)
	}
	if len(c.SupportedContexts) == 0 {
		return configErrorf("at least one supported context is required")
	}
	if c.MaxConcurrentAssociations > 0 && c.CurrentAssociations == nil {
		return configErrorf("MaxConcurrentAssociations set without a CurrentAssociations callback")
	}
	return nil
}

func (c *AcceptorConfig) allowsCallingTitle(title string) bool {
	if len(c.AllowedCallingAETitles) == 0 {
		return true
	}
	for _, a := range c.AllowedCallingAETitles {
		if uid.EqualAETitle(a, title) {
			return true
		}
	}
	return false
}
