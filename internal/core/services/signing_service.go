package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procflow/approval_flow_app/internal/apperrors"
	"github.com/procflow/approval_flow_app/internal/core/domain"
	portsrepo "github.com/procflow/approval_flow_app/internal/core/ports/repositories"
	portssvc "github.com/procflow/approval_flow_app/internal/core/ports/services"
	"github.com/procflow/approval_flow_app/internal/dto"
	"github.com/procflow/approval_flow_app/internal/middleware"
)

var (
	ErrReasonRequired   = errors.New("a non-empty reason is required")
	ErrFlowCancelled    = errors.New("flow is cancelled")
	ErrStepCompleted    = errors.New("step is already completed")
	ErrEmptyTemplate    = errors.New("flow template has no steps")
	ErrNoOfficers       = errors.New("template step resolves to no officers")
	ErrUnknownSignature = errors.New("no signature by this user on this flow")
)

// defaultSignatureType is recorded when the sign request does not name one.
const defaultSignatureType = "approval"

// signingService is the signing engine: it owns every mutation of approval
// flows and is the single source of truth for eligibility, quorum, step
// ordering, cancel and revert rules.
type signingService struct {
	flowRepo     portsrepo.FlowRepositoryWithTx
	documentRepo portsrepo.DocumentRepositoryFacade
	templateRepo portsrepo.TemplateRepositoryFacade
	userRepo     portsrepo.UserRepositoryFacade
	docState     portssvc.DocumentStateSvcFacade
}

// NewSigningService creates a new signing engine.
func NewSigningService(
	flowRepo portsrepo.FlowRepositoryWithTx,
	documentRepo portsrepo.DocumentRepositoryFacade,
	templateRepo portsrepo.TemplateRepositoryFacade,
	userRepo portsrepo.UserRepositoryFacade,
	docState portssvc.DocumentStateSvcFacade,
) portssvc.SigningSvcFacade {
	return &signingService{
		flowRepo:     flowRepo,
		documentRepo: documentRepo,
		templateRepo: templateRepo,
		userRepo:     userRepo,
		docState:     docState,
	}
}

// Ensure signingService implements the portssvc.SigningSvcFacade interface
var _ portssvc.SigningSvcFacade = (*signingService)(nil)

// signatureHash computes the content hash stored alongside a signature record.
// The scheme is deterministic and distinct per signing: the signature sequence
// number keeps two signings by different users at the same instant apart.
func signatureHash(docType, docID, stepType, userID string, signedAt time.Time, seq int) string {
	payload := strings.Join([]string{
		docType, docID, stepType, userID,
		signedAt.UTC().Format(time.RFC3339Nano),
		strconv.Itoa(seq),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ListFlows returns all flows for a document in step order.
func (s *signingService) ListFlows(ctx context.Context, docType, docID string) ([]domain.ApprovalFlow, error) {
	flows, err := s.flowRepo.ListFlowsByDocument(ctx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows for %s/%s: %w", docType, docID, err)
	}
	return flows, nil
}

// resolveOfficers snapshots a template officer list into concrete officers.
// Role references expand to the role's active members at this moment; later
// role membership changes do not affect already-created flows.
func (s *signingService) resolveOfficers(ctx context.Context, refs []domain.TemplateOfficer) ([]domain.Officer, error) {
	officers := make([]domain.Officer, 0, len(refs))
	seen := make(map[string]struct{})
	for _, ref := range refs {
		switch ref.Kind {
		case domain.OfficerUser:
			user, err := s.userRepo.FindUserByID(ctx, ref.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve officer user %s: %w", ref.UserID, err)
			}
			if _, dup := seen[user.UserID]; dup {
				continue
			}
			seen[user.UserID] = struct{}{}
			officers = append(officers, domain.Officer{
				Kind:          domain.OfficerUser,
				UserID:        user.UserID,
				UserName:      user.Name,
				Obligation:    ref.Obligation,
				SubstituteFor: ref.SubstituteFor,
			})
		case domain.OfficerRole:
			members, err := s.userRepo.ListUsersByRole(ctx, ref.RoleID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve officer role %s: %w", ref.RoleID, err)
			}
			for _, member := range members {
				if _, dup := seen[member.UserID]; dup {
					continue
				}
				seen[member.UserID] = struct{}{}
				officers = append(officers, domain.Officer{
					Kind:       domain.OfficerRole,
					UserID:     member.UserID,
					UserName:   member.Name,
					RoleID:     ref.RoleID,
					Obligation: ref.Obligation,
				})
			}
		default:
			return nil, fmt.Errorf("%w: unknown officer kind %q", apperrors.ErrValidation, ref.Kind)
		}
	}
	if len(officers) == 0 {
		return nil, ErrNoOfficers
	}
	return officers, nil
}

// CreateFlows fans out one flow per configured template step for the document.
// Repeat calls are a no-op returning the existing flows.
func (s *signingService) CreateFlows(ctx context.Context, docType, docID string, caller domain.Identity) ([]domain.ApprovalFlow, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.documentRepo.FindDocumentByID(ctx, docType, docID); err != nil {
		return nil, false, fmt.Errorf("failed to find document %s/%s: %w", docType, docID, err)
	}

	existing, err := s.flowRepo.ListFlowsByDocument(ctx, docType, docID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check existing flows: %w", err)
	}
	if len(existing) > 0 {
		logger.Debug("Flows already exist, returning existing set", slog.String("doc_id", docID), slog.Int("count", len(existing)))
		return existing, false, nil
	}

	template, err := s.templateRepo.FindTemplateByKind(ctx, docType)
	if err != nil {
		return nil, false, fmt.Errorf("failed to find flow template for kind %s: %w", docType, err)
	}
	if len(template.Steps) == 0 {
		return nil, false, ErrEmptyTemplate
	}

	now := time.Now().UTC()
	flows := make([]domain.ApprovalFlow, 0, len(template.Steps))
	for _, step := range template.Steps {
		officers, err := s.resolveOfficers(ctx, step.Officers)
		if err != nil {
			return nil, false, fmt.Errorf("step %s: %w", step.StepType, err)
		}

		var subSteps []domain.FlowSubStep
		for _, sub := range step.SubSteps {
			subOfficers, err := s.resolveOfficers(ctx, sub.Officers)
			if err != nil {
				return nil, false, fmt.Errorf("step %s sub-step %d: %w", step.StepType, sub.Order, err)
			}
			subSteps = append(subSteps, domain.FlowSubStep{
				Order:         sub.Order,
				Name:          sub.Name,
				Officers:      subOfficers,
				MinSignatures: sub.MinSignatures,
			})
		}

		flows = append(flows, domain.ApprovalFlow{
			FlowID:        uuid.NewString(),
			ObjectType:    docType + "_" + step.StepType,
			ObjectSource:  docType,
			ObjectID:      docID,
			StepType:      step.StepType,
			Name:          step.Name,
			Description:   step.Description,
			Officers:      officers,
			Steps:         subSteps,
			MinSignatures: step.MinSignatures,
			Signatures:    []domain.Signature{},
			Status:        domain.FlowActive,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     caller.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: caller.UserID,
			},
		})
	}

	if err := s.flowRepo.SaveFlows(ctx, flows); err != nil {
		// A concurrent create (auto-create double-fire across remounts) hits the
		// unique constraint; treat it as the no-op repeat call.
		if errors.Is(err, apperrors.ErrDuplicate) {
			existing, listErr := s.flowRepo.ListFlowsByDocument(ctx, docType, docID)
			if listErr != nil {
				return nil, false, fmt.Errorf("failed to reload flows after duplicate create: %w", listErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to save flows: %w", err)
	}

	logger.Info("Approval flows created", slog.String("doc_type", docType), slog.String("doc_id", docID), slog.Int("steps", len(flows)))
	return flows, true, nil
}

// findFlow returns the flow for stepType out of a locked flow set.
func findFlow(flows []domain.ApprovalFlow, stepType string) *domain.ApprovalFlow {
	for i := range flows {
		if flows[i].StepType == stepType {
			return &flows[i]
		}
	}
	return nil
}

// nextIncompleteStep returns the lowest-ordered step that is not completed,
// excluding the given one. Empty means every other step is completed.
func nextIncompleteStep(flows []domain.ApprovalFlow, exclude string) string {
	next := ""
	for i := range flows {
		f := &flows[i]
		if f.StepType == exclude || f.IsCompleted {
			continue
		}
		if next == "" || domain.StepBefore(f.StepType, next) {
			next = f.StepType
		}
	}
	return next
}

// subStepLocked reports whether the caller must wait for an earlier sub-step:
// they belong to at least one sub-step, and every sub-step containing them
// orders after the active one.
func subStepLocked(steps []domain.FlowSubStep, userID string, activeOrder int) bool {
	member := false
	for i := range steps {
		if steps[i].FindOfficer(userID) == nil {
			continue
		}
		member = true
		if steps[i].Order <= activeOrder {
			return false
		}
	}
	return member
}

// Sign appends the caller's signature to one step's flow.
func (s *signingService) Sign(ctx context.Context, docType, docID, stepType string, caller domain.Identity, req dto.SignFlowRequest) (*domain.ApprovalFlow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.SkipStepCheck && !caller.IsAdmin {
		return nil, fmt.Errorf("%w: step-order override requires admin privilege", apperrors.ErrForbidden)
	}

	tx, err := s.flowRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = s.flowRepo.Rollback(ctx, tx) }()

	// Lock the document first, then the flows, so every per-document mutation
	// serializes in the same order.
	doc, err := s.documentRepo.FindDocumentForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock document %s/%s: %w", docType, docID, err)
	}

	flows, err := s.flowRepo.ListFlowsForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock flows for %s/%s: %w", docType, docID, err)
	}

	flow := findFlow(flows, stepType)
	if flow == nil {
		return nil, fmt.Errorf("no flow for step %s: %w", stepType, apperrors.ErrNotFound)
	}

	if flow.Status == domain.FlowCancelled {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrFlowCancelled)
	}
	if flow.IsCompleted {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrStepCompleted)
	}

	if !req.SkipStepCheck {
		for i := range flows {
			prior := &flows[i]
			if domain.StepBefore(prior.StepType, stepType) && !prior.IsCompleted {
				return nil, fmt.Errorf("%w: step %s is not completed", apperrors.ErrStepLocked, prior.StepType)
			}
		}
	}

	officer := flow.FindOfficer(caller.UserID)
	if officer == nil {
		return nil, apperrors.ErrNotEligible
	}
	if officer.SubstituteFor != "" && !req.SubstituteConfirmed {
		return nil, apperrors.ErrSubstitutionNotConfirmed
	}
	if flow.HasSigned(caller.UserID) {
		return nil, apperrors.ErrAlreadySigned
	}

	// Sub-steps approve sequentially: an officer whose sub-steps all order
	// after the one currently collecting signatures has to wait.
	if active := flow.ActiveSubStep(); active != nil && subStepLocked(flow.Steps, caller.UserID, active.Order) {
		return nil, fmt.Errorf("%w: sub-step %d (%s) is not completed", apperrors.ErrStepLocked, active.Order, active.Name)
	}

	now := time.Now().UTC()
	signatureType := req.SignatureType
	if signatureType == "" {
		signatureType = defaultSignatureType
	}
	flow.Signatures = append(flow.Signatures, domain.Signature{
		UserID:        caller.UserID,
		Username:      caller.Username,
		Email:         caller.Email,
		SignedAt:      now,
		SignatureType: signatureType,
		Notes:         req.Notes,
		SignatureHash: signatureHash(docType, docID, stepType, caller.UserID, now, len(flow.Signatures)),
	})
	officer.IsSigned = true
	for i := range flow.Steps {
		if sub := flow.Steps[i].FindOfficer(caller.UserID); sub != nil {
			sub.IsSigned = true
		}
	}

	// A signature on a step a revert had reset puts it back in progress.
	if flow.Status == domain.FlowSuperseded {
		flow.Status = domain.FlowActive
	}

	flow.IsCompleted = flow.QuorumMet()
	if flow.IsCompleted {
		flow.Status = domain.FlowCompleted
		flow.CompletedAt = &now
	}
	flow.LastUpdatedAt = now
	flow.LastUpdatedBy = caller.UserID

	if err := s.flowRepo.UpdateFlowInTx(ctx, tx, *flow); err != nil {
		return nil, fmt.Errorf("failed to update flow %s: %w", flow.FlowID, err)
	}

	if flow.IsCompleted {
		next := nextIncompleteStep(flows, stepType)
		if _, err := s.docState.StepCompleted(ctx, tx, *doc, *flow, next); err != nil {
			return nil, fmt.Errorf("failed to update document state after step completion: %w", err)
		}
	}

	if err := s.flowRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit signature for flow %s: %w", flow.FlowID, err)
	}

	logger.Info("Flow signed",
		slog.String("doc_type", docType),
		slog.String("doc_id", docID),
		slog.String("step_type", stepType),
		slog.Bool("completed", flow.IsCompleted),
	)
	return flow, nil
}

// CancelDocument cancels every in-progress flow and stamps the document's
// cancellation fields. Cancelling an already-cancelled document is a no-op.
func (s *signingService) CancelDocument(ctx context.Context, docType, docID, reason string, caller domain.Identity) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrReasonRequired)
	}

	tx, err := s.flowRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = s.flowRepo.Rollback(ctx, tx) }()

	doc, err := s.documentRepo.FindDocumentForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return fmt.Errorf("failed to lock document %s/%s: %w", docType, docID, err)
	}
	if doc.CancelledAt != nil {
		logger.Debug("Document already cancelled, no-op", slog.String("doc_id", docID))
		return nil
	}

	flows, err := s.flowRepo.ListFlowsForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return fmt.Errorf("failed to lock flows for %s/%s: %w", docType, docID, err)
	}

	now := time.Now().UTC()
	for i := range flows {
		flow := &flows[i]
		// Completed flows stay historically intact.
		if flow.IsCompleted || flow.Status == domain.FlowCancelled {
			continue
		}
		flow.Status = domain.FlowCancelled
		flow.LastUpdatedAt = now
		flow.LastUpdatedBy = caller.UserID
		if err := s.flowRepo.UpdateFlowInTx(ctx, tx, *flow); err != nil {
			return fmt.Errorf("failed to cancel flow %s: %w", flow.FlowID, err)
		}
	}

	if _, err := s.docState.DocumentCancelled(ctx, tx, *doc, reason, caller); err != nil {
		return fmt.Errorf("failed to update document state on cancellation: %w", err)
	}

	if err := s.flowRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit cancellation for %s/%s: %w", docType, docID, err)
	}

	logger.Info("Document cancelled", slog.String("doc_type", docType), slog.String("doc_id", docID))
	return nil
}

// RevertToStep resets every flow strictly after the target step. The reset and
// the document-state change commit in one transaction; a partial revert is not
// an observable outcome.
func (s *signingService) RevertToStep(ctx context.Context, docType, docID, targetStepType, reason string, caller domain.Identity) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrReasonRequired)
	}

	tx, err := s.flowRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = s.flowRepo.Rollback(ctx, tx) }()

	doc, err := s.documentRepo.FindDocumentForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return fmt.Errorf("failed to lock document %s/%s: %w", docType, docID, err)
	}

	flows, err := s.flowRepo.ListFlowsForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return fmt.Errorf("failed to lock flows for %s/%s: %w", docType, docID, err)
	}

	if findFlow(flows, targetStepType) == nil {
		return fmt.Errorf("no flow for step %s: %w", targetStepType, apperrors.ErrNotFound)
	}

	furthest := ""
	for i := range flows {
		if flows[i].IsCompleted && (furthest == "" || domain.StepBefore(furthest, flows[i].StepType)) {
			furthest = flows[i].StepType
		}
	}
	if furthest == "" || domain.StepBefore(furthest, targetStepType) {
		return fmt.Errorf("%w: target %s, furthest completed %q", apperrors.ErrInvalidTarget, targetStepType, furthest)
	}

	now := time.Now().UTC()
	for i := range flows {
		flow := &flows[i]
		if !domain.StepBefore(targetStepType, flow.StepType) {
			continue
		}
		// Signatures and officer flags are preserved for audit; only the
		// completion state is forced back.
		flow.IsCompleted = false
		flow.Status = domain.FlowSuperseded
		flow.CompletedAt = nil
		flow.LastUpdatedAt = now
		flow.LastUpdatedBy = caller.UserID
		if err := s.flowRepo.UpdateFlowInTx(ctx, tx, *flow); err != nil {
			return fmt.Errorf("failed to reset flow %s: %w", flow.FlowID, err)
		}
	}

	if _, err := s.docState.DocumentReverted(ctx, tx, *doc, targetStepType, reason, caller); err != nil {
		return fmt.Errorf("failed to update document state on revert: %w", err)
	}

	if err := s.flowRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit revert for %s/%s: %w", docType, docID, err)
	}

	logger.Info("Document reverted",
		slog.String("doc_type", docType),
		slog.String("doc_id", docID),
		slog.String("target_step", targetStepType),
	)
	return nil
}

// RemoveSignature removes one user's signature from a flow. Administrative
// only; completion is recomputed and document state rolled back if the flow
// reopens.
func (s *signingService) RemoveSignature(ctx context.Context, docType, docID, stepType, userID string, caller domain.Identity) (*domain.ApprovalFlow, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !caller.IsAdmin {
		return nil, fmt.Errorf("%w: signature removal requires admin privilege", apperrors.ErrForbidden)
	}

	tx, err := s.flowRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = s.flowRepo.Rollback(ctx, tx) }()

	doc, err := s.documentRepo.FindDocumentForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock document %s/%s: %w", docType, docID, err)
	}

	flows, err := s.flowRepo.ListFlowsForUpdate(ctx, tx, docType, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock flows for %s/%s: %w", docType, docID, err)
	}

	flow := findFlow(flows, stepType)
	if flow == nil {
		return nil, fmt.Errorf("no flow for step %s: %w", stepType, apperrors.ErrNotFound)
	}

	idx := -1
	for i, sig := range flow.Signatures {
		if sig.UserID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, ErrUnknownSignature)
	}

	flow.Signatures = append(flow.Signatures[:idx], flow.Signatures[idx+1:]...)
	if officer := flow.FindOfficer(userID); officer != nil {
		officer.IsSigned = false
	}

	now := time.Now().UTC()
	wasCompleted := flow.IsCompleted
	flow.IsCompleted = flow.QuorumMet()
	if wasCompleted && !flow.IsCompleted {
		flow.Status = domain.FlowActive
		flow.CompletedAt = nil
	}
	flow.LastUpdatedAt = now
	flow.LastUpdatedBy = caller.UserID

	if err := s.flowRepo.UpdateFlowInTx(ctx, tx, *flow); err != nil {
		return nil, fmt.Errorf("failed to update flow %s: %w", flow.FlowID, err)
	}

	if wasCompleted && !flow.IsCompleted {
		if _, err := s.docState.StepReopened(ctx, tx, *doc, *flow); err != nil {
			return nil, fmt.Errorf("failed to update document state after signature removal: %w", err)
		}
	}

	if err := s.flowRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit signature removal for flow %s: %w", flow.FlowID, err)
	}

	logger.Info("Signature removed",
		slog.String("doc_type", docType),
		slog.String("doc_id", docID),
		slog.String("step_type", stepType),
		slog.String("removed_user_id", userID),
		slog.Bool("reopened", wasCompleted && !flow.IsCompleted),
	)
	return flow, nil
}
