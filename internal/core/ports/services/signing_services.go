package services

import (
	"context"

	"github.com/procflow/approval_flow_app/internal/core/domain"
	"github.com/procflow/approval_flow_app/internal/dto"
)

// SigningReaderSvc defines read-only queries over a document's flows.
type SigningReaderSvc interface {
	// ListFlows returns all flows for a document in step order.
	ListFlows(ctx context.Context, docType, docID string) ([]domain.ApprovalFlow, error)
}

// SigningSvcFacade is the signing engine: all mutation logic and invariant
// enforcement for a document's approval flows.
type SigningSvcFacade interface {
	SigningReaderSvc

	// CreateFlows fans out one flow per template step for the document.
	// A repeat call is a no-op returning the existing flows; created reports
	// whether this call performed the fan-out.
	CreateFlows(ctx context.Context, docType, docID string, caller domain.Identity) (flows []domain.ApprovalFlow, created bool, err error)

	// Sign appends the caller's signature to one step's flow, enforcing
	// eligibility, substitution confirmation, double-sign and step-ordering
	// rules, and recomputes completion.
	Sign(ctx context.Context, docType, docID, stepType string, caller domain.Identity, req dto.SignFlowRequest) (*domain.ApprovalFlow, error)

	// CancelDocument cancels every in-progress flow of the document and stamps
	// the document's cancellation fields. Idempotent.
	CancelDocument(ctx context.Context, docType, docID, reason string, caller domain.Identity) error

	// RevertToStep resets every flow strictly after the target step, preserving
	// signatures for audit, and stamps the document's revert fields. Atomic.
	RevertToStep(ctx context.Context, docType, docID, targetStepType, reason string, caller domain.Identity) error

	// RemoveSignature removes one user's signature from a flow (admin only) and
	// recomputes completion, rolling document state back if the flow reopens.
	RemoveSignature(ctx context.Context, docType, docID, stepType, userID string, caller domain.Identity) (*domain.ApprovalFlow, error)
}
