package services

import (
	"context"
	"fmt"

	"github.com/procflow/approval_flow_app/internal/core/domain"
	portssvc "github.com/procflow/approval_flow_app/internal/core/ports/services"
)

// pathArtifactRenderer hands back the storage path where the external document
// service materializes the signed PDF for a completed step. Rendering and
// upload happen in that service; only the reference is recorded here.
type pathArtifactRenderer struct {
	basePath string
}

// NewPathArtifactRenderer creates an ArtifactRenderer that derives storage
// paths under the given base path.
func NewPathArtifactRenderer(basePath string) portssvc.ArtifactRenderer {
	return &pathArtifactRenderer{basePath: basePath}
}

var _ portssvc.ArtifactRenderer = (*pathArtifactRenderer)(nil)

func (r *pathArtifactRenderer) RenderSigned(ctx context.Context, doc domain.Document, flow domain.ApprovalFlow) (string, error) {
	return fmt.Sprintf("%s/%s/%s_%s_signed.pdf", r.basePath, doc.Kind, doc.DocumentID, flow.StepType), nil
}
