package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the stored form of a parent procurement document.
type Document struct {
	DocumentID string          `json:"documentID"` // Primary Key (UUID)
	Kind       string          `json:"kind"`
	Title      string          `json:"title"`
	Amount     decimal.Decimal `json:"amount"`

	Stare   string `json:"stare"`
	StareB  string `json:"stareB"`
	StareID string `json:"stareID"`

	CancelledAt  *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy  string     `json:"cancelledBy,omitempty"`
	CancelReason string     `json:"cancelReason,omitempty"`

	RevertedAt   *time.Time `json:"revertedAt,omitempty"`
	RevertedBy   string     `json:"revertedBy,omitempty"`
	RevertReason string     `json:"revertReason,omitempty"`

	SignedArtifacts map[string]string `json:"signedArtifacts,omitempty"` // jsonb

	AuditFields
}
