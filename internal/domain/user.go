package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Capability is an action a role may be allowed to perform.
type Capability int

const (
	CapBookTickets Capability = iota
	CapManageEvents
	CapViewSummaries
)

var roleCapabilities = map[Role][]Capability{
	RoleUser:  {CapBookTickets},
	RoleAdmin: {CapBookTickets, CapManageEvents, CapViewSummaries},
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

type User struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      Role      `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Principal is the identity carried by an access token.
type Principal struct {
	UserID uint
	Role   Role
}
