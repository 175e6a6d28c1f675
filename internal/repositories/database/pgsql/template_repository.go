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

type PgxTemplateRepository struct {
	BaseRepository
}

// newPgxTemplateRepository creates a new repository for flow-template data.
func newPgxTemplateRepository(pool *pgxpool.Pool) portsrepo.TemplateRepositoryFacade {
	return &PgxTemplateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxTemplateRepository implements portsrepo.TemplateRepositoryFacade
var _ portsrepo.TemplateRepositoryFacade = (*PgxTemplateRepository)(nil)

// FindTemplateByKind retrieves the flow configuration for a document kind.
func (r *PgxTemplateRepository) FindTemplateByKind(ctx context.Context, kind string) (*domain.FlowTemplate, error) {
	query := `SELECT kind, steps, created_at, created_by, last_updated_at, last_updated_by
		FROM flow_templates
		WHERE kind = $1;`
	var tmpl models.FlowTemplate
	err := r.Pool.QueryRow(ctx, query, kind).Scan(
		&tmpl.Kind,
		&tmpl.Steps,
		&tmpl.CreatedAt,
		&tmpl.CreatedBy,
		&tmpl.LastUpdatedAt,
		&tmpl.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find flow template for kind %s: %w", kind, err)
	}
	domainTmpl := mapping.ToDomainTemplate(tmpl)
	return &domainTmpl, nil
}
