package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/procflow/approval_flow_app/internal/core/domain"
)

// DocumentReader defines read operations for parent documents
type DocumentReader interface {
	// FindDocumentByID retrieves a document by kind and id.
	// Returns apperrors.ErrNotFound when the document does not exist.
	FindDocumentByID(ctx context.Context, kind, documentID string) (*domain.Document, error)
}

// DocumentWriter defines write operations for parent documents
type DocumentWriter interface {
	// FindDocumentForUpdate retrieves and row-locks a document inside the given transaction.
	FindDocumentForUpdate(ctx context.Context, tx pgx.Tx, kind, documentID string) (*domain.Document, error)

	// UpdateDocumentStateInTx persists the denormalized lifecycle fields of a
	// document inside the given transaction.
	UpdateDocumentStateInTx(ctx context.Context, tx pgx.Tx, doc domain.Document) error
}

// DocumentRepositoryFacade combines all document repository interfaces
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
}
