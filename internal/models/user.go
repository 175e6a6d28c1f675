package models

import "time"

// User is the stored local projection of a back-office user.
type User struct {
	UserID   string   `json:"userID"` // Primary Key (UUID)
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"` // jsonb
	IsActive bool     `json:"isActive"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
