package models

// UserRole represents the roles carried by admin tokens.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// Valid reports whether the role is one the API recognises.
func (r UserRole) Valid() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}
