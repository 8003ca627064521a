package store

import "storytime/pkg/domain"

// Store defines persistence operations for users and stories.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// stories
	SaveStory(domain.Story) error
	ListRecentStories(limit int) ([]domain.Story, error)
}

// SessionStore issues and verifies session tokens.
type SessionStore interface {
	NewSession(user domain.User) (string, error)
	ClaimsFromToken(token string) (domain.Identity, error)
}
