package entity

import "github.com/google/uuid"

// Actor is the identity performing an operation, resolved by the host platform.
type Actor struct {
	UserId    uuid.UUID
	IsAdmin   bool
	IpAddress string
	UserAgent string
}

// SystemActor is used by background jobs and seeding.
func SystemActor() Actor {
	return Actor{
		UserId:    uuid.Nil,
		IsAdmin:   true,
		UserAgent: "system",
	}
}
