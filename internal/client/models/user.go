// Package models holds the canonical domain types exchanged with the
// backend, plus the normalization code that converts the divergent wire
// envelopes into them.
package models

import "time"

// User is the canonical identity shape. The session store owns the
// authenticated user; posts and comments embed denormalized copies in their
// Author field, which are never written back.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email,omitempty"`
	AvatarURL   string    `json:"avatar,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Merge overlays non-empty fields of other onto u and returns the result.
// Credentials are not part of User, so merging never touches the token.
func (u User) Merge(other User) User {
	if other.ID != "" {
		u.ID = other.ID
	}
	if other.DisplayName != "" {
		u.DisplayName = other.DisplayName
	}
	if other.Email != "" {
		u.Email = other.Email
	}
	if other.AvatarURL != "" {
		u.AvatarURL = other.AvatarURL
	}
	if other.Bio != "" {
		u.Bio = other.Bio
	}
	if other.Score != 0 {
		u.Score = other.Score
	}
	if !other.CreatedAt.IsZero() {
		u.CreatedAt = other.CreatedAt
	}
	if !other.UpdatedAt.IsZero() {
		u.UpdatedAt = other.UpdatedAt
	}
	return u
}

// Valid reports whether the identity is structurally usable: a user must
// carry a non-empty id and display name.
func (u User) Valid() bool {
	return u.ID != "" && u.DisplayName != ""
}

// LeaderboardEntry is one row of the global score ranking.
type LeaderboardEntry struct {
	Rank  int  `json:"rank"`
	User  User `json:"user"`
	Score int  `json:"score"`
}
