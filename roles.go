package backoffice

// UserRole is the user's role
type UserRole = string

const (
	// RoleAdmin manages users and every administrative surface
	RoleAdmin UserRole = "Administrador"
	// RoleComprador creates and follows purchase solicitudes
	RoleComprador UserRole = "Comprador"
	// RoleAprobador reviews and resolves solicitudes
	RoleAprobador UserRole = "Aprobador"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleComprador, RoleAprobador:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleAdmin,
		RoleComprador,
		RoleAprobador,
	}
}

// RoleIn reports whether role is a member of the given set. An empty set
// means "any role": guards configured with no required roles admit every
// authenticated session.
func RoleIn(role UserRole, set []UserRole) bool {
	if len(set) == 0 {
		return true
	}
	for _, candidate := range set {
		if candidate == role {
			return true
		}
	}
	return false
}
