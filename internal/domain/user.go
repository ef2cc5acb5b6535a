package domain

// Role enumerates the access levels an account can hold.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// User is the domain model for registered accounts. Accounts are never
// hard-deleted; IsActive gates authentication eligibility.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
}
