package domain

// Role is the closed set of account roles. Authorization compares these
// exactly; there is no hierarchy encoded beyond the rules the user service
// enforces.
type Role string

const (
	// RoleElevatedAdmin is the top-level role. Accounts holding it can never
	// be deleted or demoted by any caller, themselves included.
	RoleElevatedAdmin Role = "elevated-admin"

	// RoleAdmin manages admin and guest accounts and reads aggregated data.
	RoleAdmin Role = "admin"

	// RoleGuest is the default role for self-service signup.
	RoleGuest Role = "guest"
)

// Valid reports whether r is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleElevatedAdmin, RoleAdmin, RoleGuest:
		return true
	}
	return false
}
