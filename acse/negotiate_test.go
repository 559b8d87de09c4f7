package acse

import (
	"testing"

	"github.com/net-dicom/ulcore/pdu"
)

func TestBuildAndParseAssociateRequestItems(t *testing.T) {
	cfg := RequestorConfig{
		CallingAETitle: "SCU",
		CalledAETitle:  "SCP",
		Contexts: []ProposedContext{
			{AbstractSyntax: "1.2.840.10008.1.1", TransferSyntaxes: []string{"1.2.840.10008.1.2", "1.2.840.10008.1.2.1"}},
			{AbstractSyntax: "1.2.840.10008.5.1.4.1.1.2", TransferSyntaxes: []string{"1.2.840.10008.1.2.1"}, ProposeRole: true, SCURole: true, SCPRole: true},
		},
	}
	cfg.fillDefaults()
	items, proposed := buildAssociateRequestItems(&cfg)
	if len(proposed) != 2 {
		t.Fatalf("got %d proposed contexts, want 2", len(proposed))
	}
	if proposed[1].AbstractSyntax != "1.2.840.10008.1.1" || proposed[3].AbstractSyntax != "1.2.840.10008.5.1.4.1.1.2" {
		t.Fatalf("unexpected context ID assignment: %+v", proposed)
	}

	var sawRole bool
	for _, item := range items {
		if ui, ok := item.(*pdu.UserInformationItem); ok {
			for _, s := range ui.Items {
				if rs, ok := s.(*pdu.RoleSelectionSubItem); ok {
					sawRole = true
					if rs.SOPClassUID != "1.2.840.10008.5.1.4.1.1.2" {
						t.Errorf("role selection item for wrong abstract syntax %q", rs.SOPClassUID)
					}
				}
			}
		}
	}
	if !sawRole {
		t.Error("expected a RoleSelectionSubItem in the built items")
	}
}

func TestParseAssociateRequestAcceptsMatchingContext(t *testing.T) {
	cfg := &AcceptorConfig{
		CalledAETitle: "SCP",
		SupportedContexts: []SupportedContext{
			{AbstractSyntax: "1.2.840.10008.1.1", TransferSyntaxes: []string{"1.2.840.10008.1.2.1", "1.2.840.10008.1.2"}},
		},
	}
	cfg.fillDefaults()
	items := []pdu.SubItem{
		&pdu.PresentationContextItem{
			Type:      pdu.ItemTypePresentationContextRequest,
			ContextID: 1,
			Items: []pdu.SubItem{
				&pdu.AbstractSyntaxSubItem{Name: "1.2.840.10008.1.1"},
				&pdu.TransferSyntaxSubItem{Name: "1.2.840.10008.1.2"},
				&pdu.TransferSyntaxSubItem{Name: "1.2.840.10008.1.2.1"},
			},
		},
	}
	contexts, _, _, err := parseAssociateRequest(cfg, items)
	if err != nil {
		t.Fatalf("parseAssociateRequest: %v", err)
	}
	if len(contexts) != 1 {
		t.Fatalf("got %d contexts, want 1", len(contexts))
	}
	c := contexts[0]
	if !c.Accepted() {
		t.Fatalf("context not accepted: %+v", c)
	}
	if c.TransferSyntax != "1.2.840.10008.1.2.1" {
		t.Errorf("TransferSyntax = %q, want the acceptor's preferred 1.2.840.10008.1.2.1", c.TransferSyntax)
	}
}

func TestParseAssociateRequestRejectsUnsupportedAbstractSyntax(t *testing.T) {
	cfg := &AcceptorConfig{CalledAETitle: "SCP"}
	cfg.fillDefaults()
	items := []pdu.SubItem{
		&pdu.PresentationContextItem{
			Type:      pdu.ItemTypePresentationContextRequest,
			ContextID: 1,
			Items:     []pdu.SubItem{&pdu.AbstractSyntaxSubItem{Name: "1.2.3.4"}, &pdu.TransferSyntaxSubItem{Name: "1.2.840.10008.1.2"}},
		},
	}
	contexts, _, _, err := parseAssociateRequest(cfg, items)
	if err != nil {
		t.Fatalf("parseAssociateRequest: %v", err)
	}
	if len(contexts) != 1 || contexts[0].Result != pdu.PresentationContextProviderRejectionAbstractSyntaxNotSupported {
		t.Fatalf("unexpected result: %+v", contexts)
	}
}

func TestParseAssociateRequestRejectsUnsupportedTransferSyntax(t *testing.T) {
	cfg := &AcceptorConfig{
		CalledAETitle:     "SCP",
		SupportedContexts: []SupportedContext{{AbstractSyntax: "1.2.840.10008.1.1", TransferSyntaxes: []string{"1.2.840.10008.1.2.1"}}},
	}
	cfg.fillDefaults()
	items := []pdu.SubItem{
		&pdu.PresentationContextItem{
			Type:      pdu.ItemTypePresentationContextRequest,
			ContextID: 1,
			Items:     []pdu.SubItem{&pdu.AbstractSyntaxSubItem{Name: "1.2.840.10008.1.1"}, &pdu.TransferSyntaxSubItem{Name: "1.2.840.10008.1.2.99"}},
		},
	}
	contexts, _, _, err := parseAssociateRequest(cfg, items)
	if err != nil {
		t.Fatalf("parseAssociateRequest: %v", err)
	}
	if len(contexts) != 1 || contexts[0].Result != pdu.PresentationContextProviderRejectionTransferSyntaxNotSupported {
		t.Fatalf("unexpected result: %+v", contexts)
	}
}

func TestRoleSelectionIntersectsAcceptorSupport(t *testing.T) {
	cfg := &AcceptorConfig{
		CalledAETitle: "SCP",
		SupportedContexts: []SupportedContext{
			{AbstractSyntax: "1.2.840.10008.5.1.4.1.1.2", TransferSyntaxes: []string{"1.2.840.10008.1.2.1"}, SCUSupported: true, SCPSupported: false},
		},
	}
	cfg.fillDefaults()
	items := []pdu.SubItem{
		&pdu.PresentationContextItem{
			Type:      pdu.ItemTypePresentationContextRequest,
			ContextID: 1,
			Items:     []pdu.SubItem{&pdu.AbstractSyntaxSubItem{Name: "1.2.840.10008.5.1.4.1.1.2"}, &pdu.TransferSyntaxSubItem{Name: "1.2.840.10008.1.2.1"}},
		},
		&pdu.UserInformationItem{Items: []pdu.SubItem{
			&pdu.RoleSelectionSubItem{SOPClassUID: "1.2.840.10008.5.1.4.1.1.2", SCURole: pdu.SCRoleSupported, SCPRole: pdu.SCRoleSupported},
		}},
	}
	contexts, _, _, err := parseAssociateRequest(cfg, items)
	if err != nil {
		t.Fatalf("parseAssociateRequest: %v", err)
	}
	c := contexts[0]
	if !c.SCURole {
		t.Error("SCURole should be granted (requested and acceptor supports it)")
	}
	if c.SCPRole {
		t.Error("SCPRole should not be granted (acceptor doesn't support it, despite request)")
	}
}

func TestRoleSelectionDefaultsWhenNotProposed(t *testing.T) {
	cfg := &AcceptorConfig{
		CalledAETitle:     "SCP",
		SupportedContexts: []SupportedContext{{AbstractSyntax: "1.2.840.10008.1.1", TransferSyntaxes: []string{"1.2.840.10008.1.2"}}},
	}
	cfg.fillDefaults()
	items := []pdu.SubItem{
		&pdu.PresentationContextItem{
			Type:      pdu.ItemTypePresentationContextRequest,
			ContextID: 1,
			Items:     []pdu.SubItem{&pdu.AbstractSyntaxSubItem{Name: "1.2.840.10008.1.1"}, &pdu.TransferSyntaxSubItem{Name: "1.2.840.10008.1.2"}},
		},
	}
	contexts, _, _, err := parseAssociateRequest(cfg, items)
	if err != nil {
		t.Fatalf("parseAssociateRequest: %v", err)
	}
	if !contexts[0].SCURole || contexts[0].SCPRole {
		t.Errorf("default role should be (scu=true, scp=false), got %+v", contexts[0])
	}
}
