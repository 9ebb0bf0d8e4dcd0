package domain

import (
	"fmt"
	"time"
)

// User represents a chat member as seen by the directory
type User struct {
	ID                int64
	Username          string
	FirstName         string
	LastName          string
	FirstSeen         time.Time
	LastSeen          time.Time
	LastInteractionAt *time.Time
	IsAdmin           bool
	IsBot             bool
	Roles             []string
}

// Roles that exempt a user from moderation actions
var protectedRoles = map[string]bool{
	"admin":       true,
	"moderator":   true,
	"vip":         true,
	"allowlisted": true,
}

// IsProtected reports whether the user is exempt from lurker selection
func (u *User) IsProtected() bool {
	if u.IsAdmin || u.IsBot {
		return true
	}
	for _, role := range u.Roles {
		if protectedRoles[role] {
			return true
		}
	}
	return false
}

// Mention returns the best available display reference for the user
func (u *User) Mention() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("User %d", u.ID)
}
