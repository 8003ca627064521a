package util

import "github.com/google/uuid"

// NewID returns a random identifier suitable for users, stories, and
// storage keys.
func NewID() string {
	return uuid.NewString()
}
