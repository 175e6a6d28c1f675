package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/procflow/approval_flow_app/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx-backed repositories onto one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		FlowRepo:     newPgxFlowRepository(pool),
		DocumentRepo: newPgxDocumentRepository(pool),
		TemplateRepo: newPgxTemplateRepository(pool),
		UserRepo:     newPgxUserRepository(pool),
	}
}
