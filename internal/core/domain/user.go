package domain

import "time"

// User models a registered identity. PasswordHash never leaves the process.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

// Claims returns the minimal identity set embedded in bearer tokens.
func (u *User) Claims() Claims {
	return Claims{ID: u.ID, Username: u.Username, Role: u.Role}
}

// UserPatch carries the optional fields of a user update.
type UserPatch struct {
	Username     *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.PasswordHash == nil && p.Role == nil
}
