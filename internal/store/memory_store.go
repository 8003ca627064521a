package store

import (
	"sort"
	"sync"

	"storytime/pkg/domain"
)

// MemoryStore keeps users and stories in-process. Used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User // key: user ID
	email   map[string]string      // email -> user ID
	stories map[string]domain.Story
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		email:   make(map[string]string),
		stories: make(map[string]domain.Story),
	}
}

// SaveUser registers or replaces a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// SaveStory stores a story record.
func (m *MemoryStore) SaveStory(st domain.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stories[st.ID] = st
	return nil
}

// ListRecentStories returns the newest stories, most recent first.
func (m *MemoryStore) ListRecentStories(limit int) ([]domain.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Story, 0, len(m.stories))
	for _, st := range m.stories {
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// StoryCount reports how many stories exist.
func (m *MemoryStore) StoryCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stories)
}
