package models

// Role distinguishes the two portal user kinds.
type Role string

const (
	RoleAgent   Role = "agent"
	RoleManager Role = "manager"
)

// Actor identifies the authenticated caller of an operation.
// For agents the ID is the access code they logged in with.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsManager reports whether the actor may moderate listings.
func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}
