package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/procflow/approval_flow_app/internal/core/domain"
)

// DocumentStateSvcFacade is the document state coordinator: it translates
// flow-level events into the parent document's denormalized lifecycle fields.
// It is a pure reaction layer and never decides eligibility or quorum; all
// methods run inside the signing engine's transaction so a flow mutation and
// its document-state effect commit or roll back together.
type DocumentStateSvcFacade interface {
	// GetDocument returns the parent document's current lifecycle state.
	GetDocument(ctx context.Context, docType, docID string) (*domain.Document, error)

	// StepCompleted reacts to a flow reaching completion: status labels advance
	// to nextStepType (empty when the document is fully approved) and the
	// step's signed artifact reference is recorded. The engine supplies
	// nextStepType; the coordinator never inspects other flows itself.
	StepCompleted(ctx context.Context, tx pgx.Tx, doc domain.Document, flow domain.ApprovalFlow, nextStepType string) (domain.Document, error)

	// StepReopened reacts to a completed flow losing completion through an
	// administrative signature removal.
	StepReopened(ctx context.Context, tx pgx.Tx, doc domain.Document, flow domain.ApprovalFlow) (domain.Document, error)

	// DocumentCancelled stamps the document's cancellation fields.
	DocumentCancelled(ctx context.Context, tx pgx.Tx, doc domain.Document, reason string, caller domain.Identity) (domain.Document, error)

	// DocumentReverted stamps the document's revert fields and moves its status
	// labels back to the target step.
	DocumentReverted(ctx context.Context, tx pgx.Tx, doc domain.Document, targetStepType, reason string, caller domain.Identity) (domain.Document, error)
}

// ArtifactRenderer produces the signed artifact reference recorded when a step
// completes. The real renderer (PDF generation and storage) is an external
// collaborator; implementations here only hand back the reference.
type ArtifactRenderer interface {
	RenderSigned(ctx context.Context, doc domain.Document, flow domain.ApprovalFlow) (string, error)
}
