package domain

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// AdminRoles are the roles allowed into the admin views when a route does not
// name its own list.
var AdminRoles = []string{RoleAdmin, RoleManager}

// User is the cached projection of the authenticated account. It is only ever
// replaced wholesale with what the API returns.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	Email        string `json:"email,omitempty"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
	IsActive     bool   `json:"is_active,omitempty"`
}

// HasRole reports whether the user's role is one of roles. An empty list
// allows every role.
func (u *User) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
