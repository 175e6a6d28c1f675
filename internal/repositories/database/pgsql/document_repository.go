package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procflow/approval_flow_app/internal/apperrors"
	"github.com/procflow/approval_flow_app/internal/core/domain"
	portsrepo "github.com/procflow/approval_flow_app/internal/core/ports/repositories"
	"github.com/procflow/approval_flow_app/internal/models"
	"github.com/procflow/approval_flow_app/internal/utils/mapping"
)

const documentColumns = `
	document_id, kind, title, amount, stare, stare_b, stare_id,
	cancelled_at, cancelled_by, cancel_reason,
	reverted_at, reverted_by, revert_reason,
	signed_artifacts,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for document data.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryFacade {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxDocumentRepository implements portsrepo.DocumentRepositoryFacade
var _ portsrepo.DocumentRepositoryFacade = (*PgxDocumentRepository)(nil)

func scanDocument(row rowScanner) (models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.DocumentID,
		&doc.Kind,
		&doc.Title,
		&doc.Amount,
		&doc.Stare,
		&doc.StareB,
		&doc.StareID,
		&doc.CancelledAt,
		&doc.CancelledBy,
		&doc.CancelReason,
		&doc.RevertedAt,
		&doc.RevertedBy,
		&doc.RevertReason,
		&doc.SignedArtifacts,
		&doc.CreatedAt,
		&doc.CreatedBy,
		&doc.LastUpdatedAt,
		&doc.LastUpdatedBy,
	)
	return doc, err
}

// FindDocumentByID retrieves a document by kind and ID.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, kind, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE kind = $1 AND document_id = $2;`
	modelDoc, err := scanDocument(r.Pool.QueryRow(ctx, query, kind, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document %s/%s: %w", kind, documentID, err)
	}
	doc := mapping.ToDomainDocument(modelDoc)
	return &doc, nil
}

// FindDocumentForUpdate retrieves and row-locks a document inside the given
// transaction. The document row is always locked before its flows, so every
// writer takes locks in the same order.
func (r *PgxDocumentRepository) FindDocumentForUpdate(ctx context.Context, tx pgx.Tx, kind, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE kind = $1 AND document_id = $2
		FOR UPDATE;`
	modelDoc, err := scanDocument(tx.QueryRow(ctx, query, kind, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock document %s/%s: %w", kind, documentID, err)
	}
	doc := mapping.ToDomainDocument(modelDoc)
	return &doc, nil
}

// UpdateDocumentStateInTx persists the state fields of a document inside the
// given transaction.
func (r *PgxDocumentRepository) UpdateDocumentStateInTx(ctx context.Context, tx pgx.Tx, doc domain.Document) error {
	m := mapping.ToModelDocument(doc)
	query := `
		UPDATE documents
		SET stare = $3,
			stare_b = $4,
			stare_id = $5,
			cancelled_at = $6,
			cancelled_by = $7,
			cancel_reason = $8,
			reverted_at = $9,
			reverted_by = $10,
			revert_reason = $11,
			signed_artifacts = $12,
			last_updated_at = $13,
			last_updated_by = $14
		WHERE kind = $1 AND document_id = $2;`
	tag, err := tx.Exec(ctx, query,
		m.Kind,
		m.DocumentID,
		m.Stare,
		m.StareB,
		m.StareID,
		m.CancelledAt,
		m.CancelledBy,
		m.CancelReason,
		m.RevertedAt,
		m.RevertedBy,
		m.RevertReason,
		m.SignedArtifacts,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", m.Kind, m.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
