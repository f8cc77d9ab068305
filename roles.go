package auth

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleClient, RoleItemEditor, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ValidRoles checks that every role in the set is a predefined role
func ValidRoles(roles []UserRole) bool {
	if len(roles) == 0 {
		return false
	}
	for _, r := range roles {
		if !IsValidRole(r) {
			return false
		}
	}
	return true
}

// RoleAtLeast checks if a role meets the minimum required level
func RoleAtLeast(r, minRole UserRole) bool {
	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// HighestRole returns the most privileged role in the set, RoleClient
// when the set is empty or holds only unknown tags
func HighestRole(roles []UserRole) UserRole {
	highest := RoleClient
	for _, r := range roles {
		if RoleAtLeast(r, highest) {
			highest = r
		}
	}
	return highest
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleClient,
		RoleItemEditor,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// DefaultRoles is the role set assigned to new accounts
func DefaultRoles() []UserRole {
	return []UserRole{RoleClient}
}

var roleHierarchy = map[UserRole]int{
	RoleClient:     0,
	RoleItemEditor: 1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}
