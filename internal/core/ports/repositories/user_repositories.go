package repositories

import (
	"context"

	"github.com/procflow/approval_flow_app/internal/core/domain"
)

// UserReader defines read operations for the local user projection
type UserReader interface {
	// FindUserByID retrieves a single user by id.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsersByRole retrieves the active members of a role, used to snapshot
	// role-reference officers at flow creation time.
	ListUsersByRole(ctx context.Context, roleID string) ([]domain.User, error)
}

// UserRepositoryFacade combines all user repository interfaces
type UserRepositoryFacade interface {
	UserReader
}
