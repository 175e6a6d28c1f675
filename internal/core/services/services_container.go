package services

import (
	portsrepo "github.com/procflow/approval_flow_app/internal/core/ports/repositories"
	portssvc "github.com/procflow/approval_flow_app/internal/core/ports/services"
	"github.com/procflow/approval_flow_app/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	renderer := NewPathArtifactRenderer(cfg.SignedArtifactBasePath)

	// The coordinator is initialized first since the signing engine fires its hooks.
	container.DocumentState = NewDocumentStateService(repos.DocumentRepo, renderer)

	container.Signing = NewSigningService(
		repos.FlowRepo,
		repos.DocumentRepo,
		repos.TemplateRepo,
		repos.UserRepo,
		container.DocumentState,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.SigningSvcFacade       = (*signingService)(nil)
	_ portssvc.DocumentStateSvcFacade = (*documentStateService)(nil)
)
