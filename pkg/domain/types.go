package domain

import "time"

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

type User struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"`
	Subscription SubscriptionTier `json:"subscription"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Identity is the per-request view of a logged-in user, built from the
// verified claims of a session token. It is never persisted.
type Identity struct {
	UserID string
	Email  string
}

type Story struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"storyBody"`
	Ending      string    `json:"storyEnd"`
	ImagePath   string    `json:"image"`
	AuthorID    string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StoryDraft carries the client-supplied fields of a new story. The author
// is never part of the draft; it always comes from the verified identity.
type StoryDraft struct {
	Title       string
	Description string
	Body        string
	Ending      string
	ImageURL    string
}
