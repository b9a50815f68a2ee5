package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a raw role value against the closed enum.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
