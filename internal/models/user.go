package models

import "time"

// Roles recognized by the role-based access checks.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// ValidRole reports whether name is a recognized role.
func ValidRole(name string) bool {
	return name == RoleAdmin || name == RoleEditor || name == RoleUser
}

// User is an account on the platform.
type User struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile carries the optional attributes attached to a user.
type Profile struct {
	UserID    int        `db:"user_id" json:"user_id"`
	Age       *int       `db:"age" json:"age,omitempty"`
	Bio       string     `db:"bio" json:"bio"`
	Location  string     `db:"location" json:"location"`
	Interests string     `db:"interests" json:"interests"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
}

// Friendship is a directed (user, friend) pair, unique per pair.
type Friendship struct {
	UserID    int       `db:"user_id" json:"user_id"`
	FriendID  int       `db:"friend_id" json:"friend_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BlacklistedToken records a revoked refresh token. Append-only.
type BlacklistedToken struct {
	Token         string    `db:"token" json:"token"`
	BlacklistedAt time.Time `db:"blacklisted_at" json:"blacklisted_at"`
}
