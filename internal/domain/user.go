// Package domain contains core domain types for the DevMatch application.
package domain

import (
	"time"
)

// User represents a registered developer profile. UID is the external
// auth identity; ID is the database identity referenced by matches and
// workspace membership.
type User struct {
	ID         int64     `json:"id"`
	UID        string    `json:"uid,omitempty"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatarUrl"`
	Bio        string    `json:"bio"`
	Skills     []string  `json:"skills"`
	Interests  []string  `json:"interests"`
	Experience string    `json:"experience"`
	Location   string    `json:"location"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// UserSummary is the trimmed user shape embedded in project and match
// responses.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the embedded form of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
