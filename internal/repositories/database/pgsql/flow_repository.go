package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procflow/approval_flow_app/internal/apperrors"
	"github.com/procflow/approval_flow_app/internal/core/domain"
	portsrepo "github.com/procflow/approval_flow_app/internal/core/ports/repositories"
	"github.com/procflow/approval_flow_app/internal/models"
	"github.com/procflow/approval_flow_app/internal/utils/mapping"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

const flowColumns = `
	flow_id, object_type, object_source, object_id, step_type, name, description,
	officers, steps, min_signatures, signatures, is_completed, status, completed_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxFlowRepository struct {
	BaseRepository
}

// newPgxFlowRepository creates a new repository for approval-flow data.
func newPgxFlowRepository(pool *pgxpool.Pool) portsrepo.FlowRepositoryWithTx {
	return &PgxFlowRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxFlowRepository implements portsrepo.FlowRepositoryWithTx
var _ portsrepo.FlowRepositoryWithTx = (*PgxFlowRepository)(nil)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlow(row rowScanner) (models.ApprovalFlow, error) {
	var flow models.ApprovalFlow
	err := row.Scan(
		&flow.FlowID,
		&flow.ObjectType,
		&flow.ObjectSource,
		&flow.ObjectID,
		&flow.StepType,
		&flow.Name,
		&flow.Description,
		&flow.Officers,
		&flow.Steps,
		&flow.MinSignatures,
		&flow.Signatures,
		&flow.IsCompleted,
		&flow.Status,
		&flow.CompletedAt,
		&flow.CreatedAt,
		&flow.CreatedBy,
		&flow.LastUpdatedAt,
		&flow.LastUpdatedBy,
	)
	return flow, err
}

func collectFlows(rows pgx.Rows) ([]domain.ApprovalFlow, error) {
	defer rows.Close()

	flows := []domain.ApprovalFlow{}
	for rows.Next() {
		modelFlow, err := scanFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow row: %w", err)
		}
		flows = append(flows, mapping.ToDomainFlow(modelFlow))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flow rows: %w", err)
	}
	return flows, nil
}

// ListFlowsByDocument retrieves all flows for a document, any status, in step order.
func (r *PgxFlowRepository) ListFlowsByDocument(ctx context.Context, objectSource, objectID string) ([]domain.ApprovalFlow, error) {
	query := `SELECT ` + flowColumns + `
		FROM approval_flows
		WHERE object_source = $1 AND object_id = $2
		ORDER BY step_type;`
	rows, err := r.Pool.Query(ctx, query, objectSource, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows for %s/%s: %w", objectSource, objectID, err)
	}
	return collectFlows(rows)
}

// FindFlowByStep retrieves the flow for one step of a document.
func (r *PgxFlowRepository) FindFlowByStep(ctx context.Context, objectSource, objectID, stepType string) (*domain.ApprovalFlow, error) {
	query := `SELECT ` + flowColumns + `
		FROM approval_flows
		WHERE object_source = $1 AND object_id = $2 AND step_type = $3;`
	modelFlow, err := scanFlow(r.Pool.QueryRow(ctx, query, objectSource, objectID, stepType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find flow %s/%s step %s: %w", objectSource, objectID, stepType, err)
	}
	flow := mapping.ToDomainFlow(modelFlow)
	return &flow, nil
}

// SaveFlows persists the full fan-out of flows for a document within a DB transaction.
func (r *PgxFlowRepository) SaveFlows(ctx context.Context, flows []domain.ApprovalFlow) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO approval_flows (` + flowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`
	for _, flow := range flows {
		m := mapping.ToModelFlow(flow)
		batch.Queue(insertQuery,
			m.FlowID,
			m.ObjectType,
			m.ObjectSource,
			m.ObjectID,
			m.StepType,
			m.Name,
			m.Description,
			m.Officers,
			m.Steps,
			m.MinSignatures,
			m.Signatures,
			m.IsCompleted,
			m.Status,
			m.CompletedAt,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("flows already exist: %w", apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to execute flow insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit flow fan-out: %w", err)
	}
	return nil
}

// ListFlowsForUpdate retrieves and row-locks all flows of a document inside the
// given transaction, in step order.
func (r *PgxFlowRepository) ListFlowsForUpdate(ctx context.Context, tx pgx.Tx, objectSource, objectID string) ([]domain.ApprovalFlow, error) {
	query := `SELECT ` + flowColumns + `
		FROM approval_flows
		WHERE object_source = $1 AND object_id = $2
		ORDER BY step_type
		FOR UPDATE;`
	rows, err := tx.Query(ctx, query, objectSource, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock flows for %s/%s: %w", objectSource, objectID, err)
	}
	return collectFlows(rows)
}

// UpdateFlowInTx persists the mutable fields of a flow inside the given transaction.
func (r *PgxFlowRepository) UpdateFlowInTx(ctx context.Context, tx pgx.Tx, flow domain.ApprovalFlow) error {
	m := mapping.ToModelFlow(flow)
	query := `
		UPDATE approval_flows
		SET officers = $2,
			steps = $3,
			signatures = $4,
			is_completed = $5,
			status = $6,
			completed_at = $7,
			last_updated_at = $8,
			last_updated_by = $9
		WHERE flow_id = $1;`
	tag, err := tx.Exec(ctx, query,
		m.FlowID,
		m.Officers,
		m.Steps,
		m.Signatures,
		m.IsCompleted,
		m.Status,
		m.CompletedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update flow %s: %w", m.FlowID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
