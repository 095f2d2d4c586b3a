package entities

import "time"

// Role is a user's authorization level.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// User represents an account in the system. PasswordHash is a bcrypt hash
// and is never serialized.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Photo        *string   `json:"photo,omitempty" db:"photo"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
