package model

import "time"

// Identity is the verified user context carried inside signed tokens.  It
// is never persisted on its own; it is derived from the users table at
// login time and decoded from the token on every request.
type Identity struct {
	UserID uint64 `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// User represents an application user record as stored in the `users`
// table.  Handlers expose it through separate response types so the
// password hash never leaves the repository layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – admin, gerente or operario.
//	IsActive     – inactive users cannot log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         Role      // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Identity returns the token payload for u.
func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}
