// Package models defines the persistent entities of the feed service.
package models

// User is a registered account. IDs are assigned by the database and are
// monotonically increasing. HashedPassword holds a bcrypt digest, never the
// plaintext.
type User struct {
	ID             int64
	Name           string
	Email          string
	Profile        string
	HashedPassword string
	ProfilePicture string // object-store URL, empty when not set
}
