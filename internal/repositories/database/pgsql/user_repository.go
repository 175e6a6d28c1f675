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

const userColumns = `
	user_id, name, email, roles, is_active,
	created_at, created_by, last_updated_at, last_updated_by, deleted_at`

type PgxUserRepository struct {
	BaseRepository
}

// newPgxUserRepository creates a new repository for user data.
func newPgxUserRepository(pool *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.Roles,
		&user.IsActive,
		&user.CreatedAt,
		&user.CreatedBy,
		&user.LastUpdatedAt,
		&user.LastUpdatedBy,
		&user.DeletedAt,
	)
	return user, err
}

// FindUserByID retrieves an active user by ID.
func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1 AND deleted_at IS NULL;`
	modelUser, err := scanUser(r.Pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	user := mapping.ToDomainUser(modelUser)
	return &user, nil
}

// ListUsersByRole retrieves all active users holding the given role.
func (r *PgxUserRepository) ListUsersByRole(ctx context.Context, roleID string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE roles @> jsonb_build_array($1::text)
		AND is_active = TRUE
		AND deleted_at IS NULL
		ORDER BY name;`
	rows, err := r.Pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with role %s: %w", roleID, err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		modelUser, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, mapping.ToDomainUser(modelUser))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
