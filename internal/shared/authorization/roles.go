package authorization

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// IsPrivileged reports whether the role may act on other users' resources.
func (r UserRole) IsPrivileged() bool {
	return r == RoleModerator || r == RoleAdmin
}

func ParseUserRole(s string) UserRole {
	role := UserRole(s)
	if role.IsValid() {
		return role
	}
	return RoleUser
}

// PrivilegedRoles is the set of roles allowed to edit users other than
// themselves.
var PrivilegedRoles = []UserRole{RoleModerator, RoleAdmin}

// RoleIn reports whether role is contained in the allowed set.
func RoleIn(role UserRole, allowed []UserRole) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
