package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain entity for a user account. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch carries the fields of a partial update; nil means "leave as is".
type UserPatch struct {
	Name         *string
	Email        *string
	Role         *Role
	PasswordHash *string
}

// UserDraft is a validated create request; Password is still plain text.
type UserDraft struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UserChanges is a validated partial update; Password is still plain text.
type UserChanges struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
}
