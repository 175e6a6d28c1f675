package domain

// Identity is the authenticated caller of a signing-engine operation, as
// extracted from the externally issued token.
type Identity struct {
	UserID   string   `json:"userID"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	IsAdmin  bool     `json:"isAdmin"`
}

// HasRole reports whether the identity carries the given role.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}
