// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Claims is the identity asserted by a verified bearer token.
// Handlers only ever see these values, never a freshly loaded User.
type Claims struct {
	UserID   string
	Username string
}
