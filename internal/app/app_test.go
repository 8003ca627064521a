package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"storytime/internal/store"
	"storytime/pkg/domain"
)

type stubFetcher struct {
	body string
	err  error
}

func (f *stubFetcher) Get(context.Context, string) (io.ReadCloser, int64, string, error) {
	if f.err != nil {
		return nil, 0, "", f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), int64(len(f.body)), "image/jpeg", nil
}

type memoryImageStore struct {
	saved map[string]string
}

func (m *memoryImageStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = make(map[string]string)
	}
	m.saved[key] = string(data)
	return "uploads/" + key, nil
}

func newTestApp(t *testing.T, fetcher ImageFetcher) (*App, *store.MemoryStore, *memoryImageStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	images := &memoryImageStore{}
	a, err := New(Config{
		Store:    mem,
		Sessions: store.NewJWTSessionStore("test-secret", time.Minute),
		Images:   images,
		Fetcher:  fetcher,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, mem, images
}

func TestRegisterAndLogin(t *testing.T) {
	a, _, _ := newTestApp(t, &stubFetcher{})

	user, err := a.Register("a", "A@X.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Subscription != domain.TierFree {
		t.Fatalf("expected free tier default, got %q", user.Subscription)
	}

	if _, err := a.Register("b", "a@x.com", "pw2"); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	logged, token, err := a.Login("a@x.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result user=%+v token=%q", logged, token)
	}

	identity, err := a.IdentityFromToken(token)
	if err != nil {
		t.Fatalf("identity from token: %v", err)
	}
	if identity.UserID != user.ID || identity.Email != "a@x.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestLoginFailures(t *testing.T) {
	a, _, _ := newTestApp(t, &stubFetcher{})
	if _, err := a.Register("a", "a@x.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := a.Login("missing@x.com", "pw"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user-not-found, got %v", err)
	}
	if _, _, err := a.Login("a@x.com", "bad-pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestCreateStoryPipeline(t *testing.T) {
	a, mem, images := newTestApp(t, &stubFetcher{body: "jpeg-bytes"})
	author := domain.Identity{UserID: "user-1", Email: "a@x.com"}

	story, err := a.CreateStory(context.Background(), author, domain.StoryDraft{
		Title:    "My Story! #1",
		Body:     "once upon a time",
		ImageURL: "http://img.example/cover.jpg",
	})
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	if story.AuthorID != "user-1" {
		t.Fatalf("author must come from the identity, got %q", story.AuthorID)
	}
	if !strings.HasPrefix(story.ImagePath, "uploads/My_Story_1-") {
		t.Fatalf("unexpected image path %q", story.ImagePath)
	}
	if got := images.saved[strings.TrimPrefix(story.ImagePath, "uploads/")]; got != "jpeg-bytes" {
		t.Fatalf("image bytes not fully stored: %q", got)
	}
	if mem.StoryCount() != 1 {
		t.Fatalf("expected exactly one story, got %d", mem.StoryCount())
	}
}

func TestCreateStoryKeysNeverCollide(t *testing.T) {
	a, _, _ := newTestApp(t, &stubFetcher{body: "x"})
	author := domain.Identity{UserID: "user-1"}
	draft := domain.StoryDraft{Title: "Same Title", ImageURL: "http://img.example/a.jpg"}

	first, err := a.CreateStory(context.Background(), author, draft)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := a.CreateStory(context.Background(), author, draft)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first.ImagePath == second.ImagePath {
		t.Fatalf("same-titled stories must not share a storage key: %q", first.ImagePath)
	}
}

func TestCreateStoryRequiresTitle(t *testing.T) {
	a, mem, _ := newTestApp(t, &stubFetcher{body: "x"})
	_, err := a.CreateStory(context.Background(), domain.Identity{UserID: "user-1"}, domain.StoryDraft{
		ImageURL: "http://img.example/a.jpg",
	})
	if !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected title-required error, got %v", err)
	}
	if mem.StoryCount() != 0 {
		t.Fatalf("no record should exist after validation failure")
	}
}

func TestCreateStoryFetchFailureLeavesNoRecord(t *testing.T) {
	a, mem, images := newTestApp(t, &stubFetcher{err: errors.New("connection refused")})
	_, err := a.CreateStory(context.Background(), domain.Identity{UserID: "user-1"}, domain.StoryDraft{
		Title:    "Unfetchable",
		ImageURL: "http://img.example/gone.jpg",
	})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected fetch-failed error, got %v", err)
	}
	if mem.StoryCount() != 0 {
		t.Fatalf("fetch failure must not create a story record")
	}
	if len(images.saved) != 0 {
		t.Fatalf("fetch failure must not write an image")
	}
}

func TestRecentStoriesNewestFirst(t *testing.T) {
	a, mem, _ := newTestApp(t, &stubFetcher{})
	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		st := domain.Story{
			ID:        fmt.Sprintf("story-%02d", i),
			Title:     "t",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := mem.SaveStory(st); err != nil {
			t.Fatalf("seed story: %v", err)
		}
	}
	stories, err := a.RecentStories(context.Background())
	if err != nil {
		t.Fatalf("recent stories: %v", err)
	}
	if len(stories) != 20 {
		t.Fatalf("expected feed capped at 20, got %d", len(stories))
	}
	for i := 1; i < len(stories); i++ {
		if stories[i].CreatedAt.After(stories[i-1].CreatedAt) {
			t.Fatalf("feed not newest-first at index %d", i)
		}
	}
}

func TestUpdateSubscription(t *testing.T) {
	a, _, _ := newTestApp(t, &stubFetcher{})
	user, err := a.Register("a", "a@x.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	identity := domain.Identity{UserID: user.ID, Email: user.Email}

	updated, err := a.UpdateSubscription(identity, "premium")
	if err != nil {
		t.Fatalf("update subscription: %v", err)
	}
	if updated.Subscription != domain.TierPremium {
		t.Fatalf("expected premium tier, got %q", updated.Subscription)
	}
	if _, err := a.UpdateSubscription(identity, "platinum"); !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("expected invalid tier error, got %v", err)
	}
	if _, err := a.UpdateSubscription(domain.Identity{UserID: "ghost"}, "free"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user-not-found, got %v", err)
	}
}
