package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/procflow/approval_flow_app/internal/core/domain"
	portsrepo "github.com/procflow/approval_flow_app/internal/core/ports/repositories"
	portssvc "github.com/procflow/approval_flow_app/internal/core/ports/services"
	"github.com/procflow/approval_flow_app/internal/middleware"
)

// Document lifecycle keys written into stare_id.
const (
	StateAtStepPrefix = "at_step_" // StateAtStepPrefix + step type
	StateApproved     = "approved"
	StateCancelled    = "cancelled"
)

// documentStateService translates flow-level events into the parent document's
// denormalized lifecycle fields. It is a pure reaction layer: eligibility and
// quorum are the signing engine's exclusive responsibility.
type documentStateService struct {
	documentRepo portsrepo.DocumentRepositoryFacade
	renderer     portssvc.ArtifactRenderer
}

// NewDocumentStateService creates a new document state coordinator.
func NewDocumentStateService(documentRepo portsrepo.DocumentRepositoryFacade, renderer portssvc.ArtifactRenderer) portssvc.DocumentStateSvcFacade {
	return &documentStateService{
		documentRepo: documentRepo,
		renderer:     renderer,
	}
}

// Ensure documentStateService implements the portssvc.DocumentStateSvcFacade interface
var _ portssvc.DocumentStateSvcFacade = (*documentStateService)(nil)

// stepLabel renders a step type for display, e.g. "a" -> "A".
func stepLabel(stepType string) string {
	return strings.ToUpper(stepType)
}

// GetDocument returns the parent document's current lifecycle state.
func (s *documentStateService) GetDocument(ctx context.Context, docType, docID string) (*domain.Document, error) {
	doc, err := s.documentRepo.FindDocumentByID(ctx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to find document %s/%s: %w", docType, docID, err)
	}
	return doc, nil
}

// StepCompleted advances the document's status labels past the completed step
// and records the step's signed artifact reference.
func (s *documentStateService) StepCompleted(ctx context.Context, tx pgx.Tx, doc domain.Document, flow domain.ApprovalFlow, nextStepType string) (domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	doc.Stare = fmt.Sprintf("Semnat pas %s", stepLabel(flow.StepType))
	if nextStepType == "" {
		doc.StareB = "Aprobat"
		doc.StareID = StateApproved
	} else {
		doc.StareB = fmt.Sprintf("În așteptare pas %s", stepLabel(nextStepType))
		doc.StareID = StateAtStepPrefix + nextStepType
	}

	artifact, err := s.renderer.RenderSigned(ctx, doc, flow)
	if err != nil {
		return doc, fmt.Errorf("failed to render signed artifact for step %s: %w", flow.StepType, err)
	}
	if doc.SignedArtifacts == nil {
		doc.SignedArtifacts = make(map[string]string)
	}
	doc.SignedArtifacts[flow.StepType] = artifact

	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = flow.LastUpdatedBy

	if err := s.documentRepo.UpdateDocumentStateInTx(ctx, tx, doc); err != nil {
		return doc, fmt.Errorf("failed to persist document state: %w", err)
	}

	logger.Debug("Document state advanced",
		slog.String("doc_id", doc.DocumentID),
		slog.String("completed_step", flow.StepType),
		slog.String("stare_id", doc.StareID),
	)
	return doc, nil
}

// StepReopened moves the document's status labels back to the reopened step.
func (s *documentStateService) StepReopened(ctx context.Context, tx pgx.Tx, doc domain.Document, flow domain.ApprovalFlow) (domain.Document, error) {
	now := time.Now().UTC()
	doc.Stare = fmt.Sprintf("Pas %s redeschis", stepLabel(flow.StepType))
	doc.StareB = fmt.Sprintf("În așteptare pas %s", stepLabel(flow.StepType))
	doc.StareID = StateAtStepPrefix + flow.StepType
	if doc.SignedArtifacts != nil {
		delete(doc.SignedArtifacts, flow.StepType)
	}
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = flow.LastUpdatedBy

	if err := s.documentRepo.UpdateDocumentStateInTx(ctx, tx, doc); err != nil {
		return doc, fmt.Errorf("failed to persist document state: %w", err)
	}
	return doc, nil
}

// DocumentCancelled stamps the document's cancellation fields.
func (s *documentStateService) DocumentCancelled(ctx context.Context, tx pgx.Tx, doc domain.Document, reason string, caller domain.Identity) (domain.Document, error) {
	now := time.Now().UTC()
	doc.Stare = "Anulat"
	doc.StareB = "Anulat"
	doc.StareID = StateCancelled
	doc.CancelledAt = &now
	doc.CancelledBy = caller.UserID
	doc.CancelReason = reason
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = caller.UserID

	if err := s.documentRepo.UpdateDocumentStateInTx(ctx, tx, doc); err != nil {
		return doc, fmt.Errorf("failed to persist document state: %w", err)
	}
	return doc, nil
}

// DocumentReverted stamps the document's revert fields and moves its status
// labels back to the target step.
func (s *documentStateService) DocumentReverted(ctx context.Context, tx pgx.Tx, doc domain.Document, targetStepType, reason string, caller domain.Identity) (domain.Document, error) {
	now := time.Now().UTC()
	doc.Stare = fmt.Sprintf("Revenit la pas %s", stepLabel(targetStepType))
	doc.StareB = fmt.Sprintf("În așteptare pas %s", stepLabel(targetStepType))
	doc.StareID = StateAtStepPrefix + targetStepType
	doc.RevertedAt = &now
	doc.RevertedBy = caller.UserID
	doc.RevertReason = reason
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = caller.UserID

	if err := s.documentRepo.UpdateDocumentStateInTx(ctx, tx, doc); err != nil {
		return doc, fmt.Errorf("failed to persist document state: %w", err)
	}
	return doc, nil
}
