package acse

import (
	"fmt"

	"github.com/net-dicom/ulcore/pdu"
)

// Reason byte values from PS3.8 Table 9-21, keyed by the rejecting
// source named in PS3.8 §4.4's acceptor policy order. Only a few codes
// are named here; reasonApplicationContextNameNotSupported is defined
// but this package never sends it. The rest of the table is the
// caller's business if it builds its own RejectedError.
const (
	reasonApplicationContextNameNotSupported = pdu.ReasonApplicationContextNameNotSupported
	reasonCallingAETitleNotRecognized        = 3 // source=user
	reasonCalledAETitleNotRecognized         = 7 // source=user
	reasonUserIdentityFailed                 = 1 // source=ACSE
	reasonLocalLimitExceeded                 = 2 // source=presentation
)

// NegotiatedContext is the outcome of presentation context negotiation
// for one proposed abstract syntax, from either side's point of view.
type NegotiatedContext struct {
	ContextID      byte
	AbstractSyntax string
	TransferSyntax string // empty if Result != Accepted
	Result         pdu.PresentationContextResult
	SCURole        bool
	SCPRole        bool
}

func (c NegotiatedContext) Accepted() bool {
	return c.Result == pdu.PresentationContextAccepted
}

// buildAssociateRequestItems turns a RequestorConfig into the Items of
// an A-ASSOCIATE-RQ, assigning odd context IDs 1,3,5... in Contexts
// order (PS3.8 §6). The returned map lets the requestor correlate the
// eventual A-ASSOCIATE-AC's contexts back to what was proposed.
func buildAssociateRequestItems(cfg *RequestorConfig) ([]pdu.SubItem, map[byte]ProposedContext) {
	items := []pdu.SubItem{
		&pdu.ApplicationContextItem{Name: pdu.DICOMApplicationContextItemName},
	}
	proposed := make(map[byte]ProposedContext, len(cfg.Contexts))
	contextID := byte(1)
	for _, ctx := range cfg.Contexts {
		syntaxItems := []pdu.SubItem{&pdu.AbstractSyntaxSubItem{Name: ctx.AbstractSyntax}}
		for _, ts := range ctx.TransferSyntaxes {
			syntaxItems = append(syntaxItems, &pdu.TransferSyntaxSubItem{Name: ts})
		}
		items = append(items, &pdu.PresentationContextItem{
			Type:      pdu.ItemTypePresentationContextRequest,
			ContextID: contextID,
			Items:     syntaxItems,
		})
		proposed[contextID] = ctx
		contextID += 2
	}

	userInfo := []pdu.SubItem{
		&pdu.UserInformationMaximumLengthItem{MaximumLengthReceived: cfg.MaximumPDUSize},
		&pdu.ImplementationClassUIDSubItem{Name: cfg.ImplementationClassUID},
		&pdu.ImplementationVersionNameSubItem{Name: cfg.ImplementationVersionName},
	}
	for _, ctx := range cfg.Contexts {
		if !ctx.ProposeRole {
			continue
		}
		role := pdu.SCRoleDefault
		if ctx.SCURole {
			role = pdu.SCRoleSupported
		}
		scpRole := pdu.SCRoleDefault
		if ctx.SCPRole {
			scpRole = pdu.SCRoleSupported
		}
		userInfo = append(userInfo, &pdu.RoleSelectionSubItem{
			SOPClassUID: ctx.AbstractSyntax,
			SCURole:     role,
			SCPRole:     scpRole,
		})
	}
	if cfg.UserIdentity != nil {
		userInfo = append(userInfo, &pdu.UserIdentityRequestSubItem{
			IdentityType:              cfg.UserIdentity.Type,
			PositiveResponseRequested: cfg.UserIdentity.PositiveResponseRequested,
			PrimaryField:              cfg.UserIdentity.Primary,
			SecondaryField:            cfg.UserIdentity.Secondary,
		})
	}
	items = append(items, &pdu.UserInformationItem{Items: userInfo})
	return items, proposed
}

// parseAssociateRequest applies the presentation-context and
// role-selection negotiation algorithm of PS3.8 §4.4 to an inbound
// A-ASSOCIATE-RQ's items, from the acceptor's point of view. It never
// returns a policy rejection itself (those are the caller's AE-title/
// user-identity/concurrency checks, applied before or alongside this);
// err here means the peer's PDU was structurally invalid.
func parseAssociateRequest(cfg *AcceptorConfig, items []pdu.SubItem) (
	contexts []NegotiatedContext, peerMaxPDUSize uint32, identity *pdu.UserIdentityRequestSubItem, err error) {

	roleByAbstractSyntax := make(map[string]*pdu.RoleSelectionSubItem)
	for _, item := range items {
		if ui, ok := item.(*pdu.UserInformationItem); ok {
			for _, sub := range ui.Items {
				switch s := sub.(type) {
				case *pdu.UserInformationMaximumLengthItem:
					peerMaxPDUSize = s.MaximumLengthReceived
				case *pdu.RoleSelectionSubItem:
					roleByAbstractSyntax[s.SOPClassUID] = s
				case *pdu.UserIdentityRequestSubItem:
					identity = s
				}
			}
		}
	}

	for _, item := range items {
		pc, ok := item.(*pdu.PresentationContextItem)
		if !ok {
			continue
		}
		var abstractSyntax string
		var proposedTransferSyntaxes []string
		for _, sub := range pc.Items {
			switch s := sub.(type) {
			case *pdu.AbstractSyntaxSubItem:
				if abstractSyntax != "" {
					return nil, 0, nil, fmt.Errorf("%w: multiple abstract syntaxes in context %d", ErrProtocolViolation, pc.ContextID)
				}
				abstractSyntax = s.Name
			case *pdu.TransferSyntaxSubItem:
				proposedTransferSyntaxes = append(proposedTransferSyntaxes, s.Name)
			}
		}
		nc := NegotiatedContext{ContextID: pc.ContextID, AbstractSyntax: abstractSyntax}
		supported := findSupportedContext(cfg, abstractSyntax)
		if supported == nil {
			nc.Result = pdu.PresentationContextProviderRejectionAbstractSyntaxNotSupported
		} else if ts := pickTransferSyntax(supported.TransferSyntaxes, proposedTransferSyntaxes); ts == "" {
			nc.Result = pdu.PresentationContextProviderRejectionTransferSyntaxNotSupported
		} else {
			nc.Result = pdu.PresentationContextAccepted
			nc.TransferSyntax = ts
			nc.SCURole, nc.SCPRole = true, false
			if rs, ok := roleByAbstractSyntax[abstractSyntax]; ok {
				nc.SCURole = rs.SCURole == pdu.SCRoleSupported && supported.SCUSupported
				nc.SCPRole = rs.SCPRole == pdu.SCRoleSupported && supported.SCPSupported
			}
		}
		contexts = append(contexts, nc)
	}
	return contexts, peerMaxPDUSize, identity, nil
}

// findSupportedContext returns the acceptor's preference list for
// abstractSyntax, or nil if unsupported. The acceptor's own preference
// order is what decides ties, per PS3.8 §4.4.
func findSupportedContext(cfg *AcceptorConfig, abstractSyntax string) *SupportedContext {
	for i := range cfg.SupportedContexts {
		if cfg.SupportedContexts[i].AbstractSyntax == abstractSyntax {
			return &cfg.SupportedContexts[i]
		}
	}
	return nil
}

// pickTransferSyntax returns the first entry of supported (the
// acceptor's preference order) that also appears in proposed, or "" if
// none match.
func pickTransferSyntax(supported, proposed []string) string {
	proposedSet := make(map[string]bool, len(proposed))
	for _, ts := range proposed {
		proposedSet[ts] = true
	}
	for _, ts := range supported {
		if proposedSet[ts] {
			return ts
		}
	}
	return ""
}

// buildAssociateResponseItems turns the negotiation outcome into the
// Items of an A-ASSOCIATE-AC.
func buildAssociateResponseItems(cfg *AcceptorConfig, contexts []NegotiatedContext, identityResponse []byte) []pdu.SubItem {
	items := []pdu.SubItem{
		&pdu.ApplicationContextItem{Name: pdu.DICOMApplicationContextItemName},
	}
	for _, c := range contexts {
		var respItems []pdu.SubItem
		if c.Accepted() {
			respItems = []pdu.SubItem{&pdu.TransferSyntaxSubItem{Name: c.TransferSyntax}}
		}
		items = append(items, &pdu.PresentationContextItem{
			Type:      pdu.ItemTypePresentationContextResponse,
			ContextID: c.ContextID,
			Result:    c.Result,
			Items:     respItems,
		})
	}
	userInfo := []pdu.SubItem{
		&pdu.UserInformationMaximumLengthItem{MaximumLengthReceived: cfg.MaximumPDUSize},
		&pdu.ImplementationClassUIDSubItem{Name: cfg.ImplementationClassUID},
		&pdu.ImplementationVersionNameSubItem{Name: cfg.ImplementationVersionName},
	}
	for _, c := range contexts {
		if !c.Accepted() {
			continue
		}
		supported := findSupportedContext(cfg, c.AbstractSyntax)
		if supported != nil && (supported.SCUSupported || supported.SCPSupported) {
			role := pdu.SCRoleDefault
			if c.SCURole {
				role = pdu.SCRoleSupported
			}
			scpRole := pdu.SCRoleDefault
			if c.SCPRole {
				scpRole = pdu.SCRoleSupported
			}
			userInfo = append(userInfo, &pdu.RoleSelectionSubItem{
				SOPClassUID: c.AbstractSyntax,
				SCURole:     role,
				SCPRole:     scpRole,
			})
		}
	}
	if identityResponse != nil {
		userInfo = append(userInfo, &pdu.UserIdentityResponseSubItem{ServerResponse: identityResponse})
	}
	items = append(items, &pdu.UserInformationItem{Items: userInfo})
	return items
}

// parseAssociateResponse matches an A-ASSOCIATE-AC's items against what
// was proposed, from the requestor's point of view.
func parseAssociateResponse(items []pdu.SubItem, proposed map[byte]ProposedContext) ([]NegotiatedContext, uint32, error) {
	var contexts []NegotiatedContext
	var peerMaxPDUSize uint32
	for _, item := range items {
		switch v := item.(type) {
		case *pdu.PresentationContextItem:
			p, ok := proposed[v.ContextID]
			if !ok {
				return nil, 0, fmt.Errorf("%w: A-ASSOCIATE-AC referenced unknown context %d", ErrProtocolViolation, v.ContextID)
			}
			nc := NegotiatedContext{ContextID: v.ContextID, AbstractSyntax: p.AbstractSyntax, Result: v.Result}
			for _, sub := range v.Items {
				if ts, ok := sub.(*pdu.TransferSyntaxSubItem); ok {
					nc.TransferSyntax = ts.Name
				}
			}
			contexts = append(contexts, nc)
		case *pdu.UserInformationItem:
			for _, sub := range v.Items {
				switch s := sub.(type) {
				case *pdu.UserInformationMaximumLengthItem:
					peerMaxPDUSize = s.MaximumLengthReceived
				case *pdu.RoleSelectionSubItem:
					for i := range contexts {
						if contexts[i].AbstractSyntax == s.SOPClassUID {
							contexts[i].SCURole = s.SCURole == pdu.SCRoleSupported
							contexts[i].SCPRole = s.SCPRole == pdu.SCRoleSupported
						}
					}
				}
			}
		}
	}
	return contexts, peerMaxPDUSize, nil
}
