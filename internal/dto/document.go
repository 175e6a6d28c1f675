package dto

import (
	"time"

	"github.com/procflow/approval_flow_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentResponse is the wire representation of a parent document's
// denormalized lifecycle state.
type DocumentResponse struct {
	ID              string            `json:"id"`
	Kind            string            `json:"kind"`
	Title           string            `json:"title"`
	Amount          decimal.Decimal   `json:"amount"`
	Stare           string            `json:"stare"`
	StareB          string            `json:"stare_b"`
	StareID         string            `json:"stare_id"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy     string            `json:"cancelled_by,omitempty"`
	CancelReason    string            `json:"cancel_reason,omitempty"`
	RevertedAt      *time.Time        `json:"reverted_at,omitempty"`
	RevertedBy      string            `json:"reverted_by,omitempty"`
	RevertReason    string            `json:"revert_reason,omitempty"`
	SignedArtifacts map[string]string `json:"signed_artifacts,omitempty"`
}

// ToDocumentResponse converts a domain.Document to its wire form.
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:              d.DocumentID,
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
	}
}
