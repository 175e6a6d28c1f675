package middleware

import (
	"context"

	"github.com/procflow/approval_flow_app/internal/core/domain"
)

// identityKey is the key used to store the authenticated caller identity in the
// request context. Using a custom type prevents collisions.
const identityKey = contextKey("identity")

// GetIdentityFromCtx retrieves the authenticated caller identity from a
// standard context. It returns the identity and a boolean indicating if it was
// found.
func GetIdentityFromCtx(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok
}
