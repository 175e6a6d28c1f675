package repositories

import (
	"context"

	"github.com/procflow/approval_flow_app/internal/core/domain"
)

// TemplateReader defines read operations for flow templates
type TemplateReader interface {
	// FindTemplateByKind retrieves the flow template configured for a document kind.
	// Returns apperrors.ErrNotFound when no template is configured.
	FindTemplateByKind(ctx context.Context, kind string) (*domain.FlowTemplate, error)
}

// TemplateRepositoryFacade combines all template repository interfaces
type TemplateRepositoryFacade interface {
	TemplateReader
}
