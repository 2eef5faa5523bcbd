package domain

import "time"

// User is an API principal. Authentication lives outside the pipeline core;
// only the HTTP layer reads this entity.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
