package domain

import "time"

const (
	RoleNormal = "normal"
	RoleAdmin  = "admin"

	UserActive  = "active"
	UserDeleted = "deleted"
)

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}
