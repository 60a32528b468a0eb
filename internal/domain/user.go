package domain

// Role type to distinguish between user roles in auth tokens.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)
