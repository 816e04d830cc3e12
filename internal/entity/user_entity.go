package entity

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is owned by the host platform; this service only reads it.
type User struct {
	Id       uuid.UUID
	Email    string
	FullName string
	Role     UserRole
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

const PreferenceKeyDeadlines = "deadlines"

type DeadlinePreference struct {
	Enabled   bool `json:"enabled"`
	DaysAhead int  `json:"days_ahead"`
}

const (
	MinDeadlineDaysAhead = 1
	MaxDeadlineDaysAhead = 30
)

// DefaultDeadlinePreference applies to users without a stored preference.
func DefaultDeadlinePreference() DeadlinePreference {
	return DeadlinePreference{Enabled: true, DaysAhead: 3}
}
