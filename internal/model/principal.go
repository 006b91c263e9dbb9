package model

type Role string

const (
	RoleAnalyst Role = "ANALYST"
	RoleManager Role = "MANAGER"
	RoleService Role = "SERVICE"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsService() bool {
	return p.Role == RoleService
}
