package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/procflow/approval_flow_app/internal/core/domain"
)

// FlowReader defines read operations for approval-flow data
type FlowReader interface {
	// ListFlowsByDocument retrieves all flows for a document, any status, in step order.
	ListFlowsByDocument(ctx context.Context, objectSource, objectID string) ([]domain.ApprovalFlow, error)

	// FindFlowByStep retrieves the flow for one step of a document.
	// Returns apperrors.ErrNotFound when no such flow exists.
	FindFlowByStep(ctx context.Context, objectSource, objectID, stepType string) (*domain.ApprovalFlow, error)
}

// FlowWriter defines write operations for approval-flow data
type FlowWriter interface {
	// SaveFlows persists the full fan-out of flows for a document atomically.
	SaveFlows(ctx context.Context, flows []domain.ApprovalFlow) error

	// ListFlowsForUpdate retrieves and row-locks all flows of a document inside
	// the given transaction, in step order.
	ListFlowsForUpdate(ctx context.Context, tx pgx.Tx, objectSource, objectID string) ([]domain.ApprovalFlow, error)

	// UpdateFlowInTx persists the mutable fields of a flow (officers, signatures,
	// completion, status) inside the given transaction.
	UpdateFlowInTx(ctx context.Context, tx pgx.Tx, flow domain.ApprovalFlow) error
}

// FlowRepositoryFacade combines all flow-related repository interfaces
type FlowRepositoryFacade interface {
	FlowReader
	FlowWriter
}

// FlowRepositoryWithTx extends FlowRepositoryFacade with transaction capabilities
type FlowRepositoryWithTx interface {
	FlowRepositoryFacade
	TransactionManager
}
