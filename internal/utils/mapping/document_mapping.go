package mapping

import (
	"github.com/procflow/approval_flow_app/internal/core/domain"
	"github.com/procflow/approval_flow_app/internal/models"
)

// ToModelDocument converts a domain Document to a model Document
func ToModelDocument(d domain.Document) models.Document {
	return models.Document{
		DocumentID:      d.DocumentID,
		Kind:            d.Kind,
		Title:           d.Title,
		Amount:          d.Amount,
		Stare:           d.Stare,
		StareB:          d.StareB,
		StareID:         d.StareID,
		CancelledAt:     d.CancelledAt,
		CancelledBy:     d.CancelledBy,
		CancelReason:    d.CancelReason,
		RevertedAt:      d.RevertedAt,
		RevertedBy:      d.RevertedBy,
		RevertReason:    d.RevertReason,
		SignedArtifacts: d.SignedArtifacts,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocument converts a model Document to a domain Document
func ToDomainDocument(m models.Document) domain.Document {
	return domain.Document{
		DocumentID:      m.DocumentID,
		Kind:            m.Kind,
		Title:           m.Title,
		Amount:          m.Amount,
		Stare:           m.Stare,
		StareB:          m.StareB,
		StareID:         m.StareID,
		CancelledAt:     m.CancelledAt,
		CancelledBy:     m.CancelledBy,
		CancelReason:    m.CancelReason,
		RevertedAt:      m.RevertedAt,
		RevertedBy:      m.RevertedBy,
		RevertReason:    m.RevertReason,
		SignedArtifacts: m.SignedArtifacts,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
