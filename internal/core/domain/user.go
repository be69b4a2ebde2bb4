package domain

import "time"

// Role partitions accounts into separate identity namespaces.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Roles lists every accepted role, in display order.
var Roles = []Role{RoleAdmin, RoleSuperAdmin}

// ParseRole returns the Role named by s, or ErrInvalidRole when s is not one of Roles.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidRole
}

// User is a persisted account. PasswordHash always holds a bcrypt hash and is
// never serialized.
type User struct {
	ID           string    `json:"_id"`
	UserName     string    `json:"userName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        int64     `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Images       []string  `json:"image"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserUpdate carries a partial update. Nil fields are left untouched.
type UserUpdate struct {
	UserName     *string
	Phone        *int64
	Images       []string
	PasswordHash *string
	UpdatedAt    time.Time
}

// ApplyTo returns a copy of user with the non-nil fields of u written over it.
func (u UserUpdate) ApplyTo(user *User) *User {
	out := *user
	if u.UserName != nil {
		out.UserName = *u.UserName
	}
	if u.Phone != nil {
		out.Phone = *u.Phone
	}
	if u.Images != nil {
		out.Images = append([]string(nil), u.Images...)
	}
	if u.PasswordHash != nil {
		out.PasswordHash = *u.PasswordHash
	}
	out.UpdatedAt = u.UpdatedAt
	return &out
}

// Claims is the identity asserted by a session token.
type Claims struct {
	UserID   string
	UserName string
}
