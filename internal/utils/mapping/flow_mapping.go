package mapping

import (
	"github.com/procflow/approval_flow_app/internal/core/domain"
	"github.com/procflow/approval_flow_app/internal/models"
)

// ToModelOfficer converts a domain Officer to a model Officer
func ToModelOfficer(d domain.Officer) models.Officer {
	return models.Officer{
		Kind:          string(d.Kind),
		UserID:        d.UserID,
		UserName:      d.UserName,
		RoleID:        d.RoleID,
		Obligation:    string(d.Obligation),
		IsSigned:      d.IsSigned,
		SubstituteFor: d.SubstituteFor,
	}
}

// ToDomainOfficer converts a model Officer to a domain Officer
func ToDomainOfficer(m models.Officer) domain.Officer {
	return domain.Officer{
		Kind:          domain.OfficerKind(m.Kind),
		UserID:        m.UserID,
		UserName:      m.UserName,
		RoleID:        m.RoleID,
		Obligation:    domain.OfficerObligation(m.Obligation),
		IsSigned:      m.IsSigned,
		SubstituteFor: m.SubstituteFor,
	}
}

// ToModelOfficers converts a slice of domain Officers to model form
func ToModelOfficers(d []domain.Officer) []models.Officer {
	officers := make([]models.Officer, len(d))
	for i, o := range d {
		officers[i] = ToModelOfficer(o)
	}
	return officers
}

// ToDomainOfficers converts a slice of model Officers to domain form
func ToDomainOfficers(m []models.Officer) []domain.Officer {
	officers := make([]domain.Officer, len(m))
	for i, o := range m {
		officers[i] = ToDomainOfficer(o)
	}
	return officers
}

// ToModelSignature converts a domain Signature to a model Signature
func ToModelSignature(d domain.Signature) models.Signature {
	return models.Signature{
		UserID:        d.UserID,
		Username:      d.Username,
		Email:         d.Email,
		SignedAt:      d.SignedAt,
		SignatureType: d.SignatureType,
		Notes:         d.Notes,
		SignatureHash: d.SignatureHash,
	}
}

// ToDomainSignature converts a model Signature to a domain Signature
func ToDomainSignature(m models.Signature) domain.Signature {
	return domain.Signature{
		UserID:        m.UserID,
		Username:      m.Username,
		Email:         m.Email,
		SignedAt:      m.SignedAt,
		SignatureType: m.SignatureType,
		Notes:         m.Notes,
		SignatureHash: m.SignatureHash,
	}
}

// ToModelFlow converts a domain ApprovalFlow to a model ApprovalFlow
func ToModelFlow(d domain.ApprovalFlow) models.ApprovalFlow {
	signatures := make([]models.Signature, len(d.Signatures))
	for i, s := range d.Signatures {
		signatures[i] = ToModelSignature(s)
	}
	var steps []models.FlowSubStep
	for _, st := range d.Steps {
		steps = append(steps, models.FlowSubStep{
			Order:         st.Order,
			Name:          st.Name,
			Officers:      ToModelOfficers(st.Officers),
			MinSignatures: st.MinSignatures,
		})
	}
	return models.ApprovalFlow{
		FlowID:        d.FlowID,
		ObjectType:    d.ObjectType,
		ObjectSource:  d.ObjectSource,
		ObjectID:      d.ObjectID,
		StepType:      d.StepType,
		Name:          d.Name,
		Description:   d.Description,
		Officers:      ToModelOfficers(d.Officers),
		Steps:         steps,
		MinSignatures: d.MinSignatures,
		Signatures:    signatures,
		IsCompleted:   d.IsCompleted,
		Status:        models.FlowStatus(d.Status),
		CompletedAt:   d.CompletedAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFlow converts a model ApprovalFlow to a domain ApprovalFlow
func ToDomainFlow(m models.ApprovalFlow) domain.ApprovalFlow {
	signatures := make([]domain.Signature, len(m.Signatures))
	for i, s := range m.Signatures {
		signatures[i] = ToDomainSignature(s)
	}
	var steps []domain.FlowSubStep
	for _, st := range m.Steps {
		steps = append(steps, domain.FlowSubStep{
			Order:         st.Order,
			Name:          st.Name,
			Officers:      ToDomainOfficers(st.Officers),
			MinSignatures: st.MinSignatures,
		})
	}
	return domain.ApprovalFlow{
		FlowID:        m.FlowID,
		ObjectType:    m.ObjectType,
		ObjectSource:  m.ObjectSource,
		ObjectID:      m.ObjectID,
		StepType:      m.StepType,
		Name:          m.Name,
		Description:   m.Description,
		Officers:      ToDomainOfficers(m.Officers),
		Steps:         steps,
		MinSignatures: m.MinSignatures,
		Signatures:    signatures,
		IsCompleted:   m.IsCompleted,
		Status:        domain.FlowStatus(m.Status),
		CompletedAt:   m.CompletedAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
