// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the access level of a user. Only RoleAdmin unlocks the admin
// routes; the other roles are carried for display.
type Role string

const (
	RoleCitizen      Role = "citizen"
	RoleAdmin        Role = "admin"
	RoleResolver     Role = "resolver"
	RoleEventManager Role = "event_manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleAdmin, RoleResolver, RoleEventManager:
		return true
	}
	return false
}

// User represents a signed-in account.
//
// The gamification counters (BadgeCount, VolunteerHours) start at zero for
// newly registered users. PasswordHash is only populated in strict auth
// mode and never leaves the server.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Avatar         string    `json:"avatar,omitempty"`
	Role           Role      `json:"role"`
	BadgeCount     int       `json:"badgeCount"`
	VolunteerHours int       `json:"volunteerHours"`
	CreatedAt      time.Time `json:"createdAt"`
	PasswordHash   string    `json:"-"`
}

// Author is the identity stamped on comments, ticket responses and chat
// messages. Callers pass it explicitly; stores never look up "the current
// user" on their own.
type Author struct {
	ID   string
	Name string
}

// Author returns the display identity of u.
func (u User) Author() Author {
	return Author{ID: u.ID, Name: u.Name}
}
