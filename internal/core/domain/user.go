package domain

import "time"

// User represents a back-office user eligible to appear as an officer.
// Accounts are provisioned by the external identity provider; this record is
// the local projection used to resolve officer references.
type User struct {
	UserID   string   `json:"userID"` // Primary Key (e.g., UUID)
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"` // Role IDs, e.g. "ordonator_credite"
	IsActive bool     `json:"isActive"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}
