package domain

import "time"

type User struct {
	ID           string
	Name         string
	Mobile       string // primary contact identifier, unique
	Email        string // secondary contact identifier, optional ("" when absent)
	PasswordHash string // bcrypt encoded
	Role         Role
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}