package domain

// Role is the dashboard role of an authenticated viewer.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
)

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOfficer
}

// Viewer is the authenticated person a dashboard session acts for.
// Category is set only for officers, who are scoped to one category.
type Viewer struct {
	ID       string   `json:"id"`
	Role     Role     `json:"role"`
	Category Category `json:"category,omitempty"`
	Name     string   `json:"name"`
}

// IsOfficer returns true for category-scoped viewers.
func (v Viewer) IsOfficer() bool {
	return v.Role == RoleOfficer
}

// Account is a known dashboard login.
type Account struct {
	ID         string
	SecretHash []byte
	Role       Role
	Category   Category
	Name       string
}

// Viewer returns the session view of the account, without the secret.
func (a *Account) Viewer() Viewer {
	return Viewer{
		ID:       a.ID,
		Role:     a.Role,
		Category: a.Category,
		Name:     a.Name,
	}
}
