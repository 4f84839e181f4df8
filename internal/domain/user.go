package domain

// LoggedUser is the authenticated identity for one storefront session.
// A nil LoggedUser means the session is anonymous.
type LoggedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Token    string `json:"token,omitempty"`
}

const RoleAdmin = "admin"

func (u *LoggedUser) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
