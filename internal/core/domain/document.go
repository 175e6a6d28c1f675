package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the parent procurement document whose approval is tracked by a
// set of flows. The denormalized lifecycle fields (Stare, StareB, StareID and
// the stamps below) are owned by the document entity but written exclusively
// by the document state coordinator.
type Document struct {
	DocumentID string          `json:"documentID"` // Primary Key (e.g., UUID)
	Kind       string          `json:"kind"`       // e.g., "docfunda", "ordonantare", "paap"
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"` // Committed budget value

	Stare  string `json:"stare"`   // Current lifecycle label
	StareB string `json:"stareB"`  // Secondary lifecycle label
	StareID string `json:"stareID"` // Machine-readable lifecycle key, e.g. "at_step_b"

	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy  string     `json:"cancelledBy,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty"`

	RevertedAt   *time.Time `json:"revertedAt,omitempty"`
	RevertedBy   string     `json:"revertedBy,omitempty"`
	RevertReason string     `json:"revertReason,omitempty"`

	// SignedArtifacts maps a step type to the artifact reference (e.g. signed
	// PDF path) produced when that step completed.
	SignedArtifacts map[string]string `json:"signedArtifacts,omitempty"`

	AuditFields
}
