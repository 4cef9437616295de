package domain

import "time"

// RoleAdmin is the only role issued today; registration always assigns it.
const RoleAdmin = "admin"

// User is the domain model for admin accounts that manage issues.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
