package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"storytime/internal/fetch"
	"storytime/internal/storage"
	"storytime/internal/store"
	"storytime/internal/util"
	"storytime/pkg/auth"
	"storytime/pkg/domain"
)

const recentFeedLimit = 20

// ImageFetcher retrieves a remote image as a byte stream.
type ImageFetcher interface {
	Get(ctx context.Context, url string) (io.ReadCloser, int64, string, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL   string
	Secret        string
	SessionTTL    time.Duration
	StorageDir    string
	FetchTimeout  time.Duration
	RedisAddr     string
	RedisPassword string
	FeedCacheTTL  time.Duration

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Injection points for tests.
	Store    store.Store
	Sessions store.SessionStore
	Images   storage.ImageStore
	Fetcher  ImageFetcher
	Feed     store.FeedCache
}

// App wires storage, sessions, and the story pipeline together.
type App struct {
	store    store.Store
	sessions store.SessionStore
	images   storage.ImageStore
	fetcher  ImageFetcher
	feed     store.FeedCache
}

// New constructs the application. Unset collaborators get their production
// defaults: gorm/postgres records, HS256 sessions, local file storage (or
// minio when configured), and an HTTP fetcher with a bounded timeout.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.FeedCacheTTL == 0 {
		cfg.FeedCacheTTL = 30 * time.Second
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		if strings.TrimSpace(cfg.Secret) == "" {
			return nil, fmt.Errorf("signing secret required")
		}
		sessionStore = store.NewJWTSessionStore(cfg.Secret, cfg.SessionTTL)
	}

	images := cfg.Images
	if images == nil {
		var err error
		if cfg.MinioEndpoint != "" {
			images, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
			if err != nil {
				return nil, fmt.Errorf("init minio store: %w", err)
			}
		} else {
			dir := cfg.StorageDir
			if dir == "" {
				dir = "uploads"
			}
			images, err = storage.NewFileStore(dir)
			if err != nil {
				return nil, fmt.Errorf("init file store: %w", err)
			}
		}
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = fetch.New(cfg.FetchTimeout)
	}

	feed := cfg.Feed
	if feed == nil && cfg.RedisAddr != "" {
		feed = store.NewRedisFeedCache(cfg.RedisAddr, cfg.RedisPassword, cfg.FeedCacheTTL)
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		images:   images,
		fetcher:  fetcher,
		feed:     feed,
	}, nil
}

// Register creates a new user account.
func (a *App) Register(username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return domain.User{}, ErrSignupFieldsRequired
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, ErrEmailAlreadyExists
	}
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:           util.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Subscription: domain.TierFree,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrUserNotFound
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// IdentityFromToken verifies a session token and returns the identity its
// claims carry. This is the only token verification point in the system.
func (a *App) IdentityFromToken(token string) (domain.Identity, error) {
	return a.sessions.ClaimsFromToken(token)
}

// CreateStory runs the ingestion pipeline: validate the draft, fetch the
// remote image, persist it fully, then insert the record. The author always
// comes from the verified identity.
func (a *App) CreateStory(ctx context.Context, author domain.Identity, draft domain.StoryDraft) (domain.Story, error) {
	if author.UserID == "" {
		return domain.Story{}, errors.New("author identity required")
	}
	if strings.TrimSpace(draft.Title) == "" {
		return domain.Story{}, ErrTitleRequired
	}

	body, size, contentType, err := a.fetcher.Get(ctx, draft.ImageURL)
	if err != nil {
		return domain.Story{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer body.Close()

	// The id in the key keeps same-titled stories from overwriting each other.
	id := util.NewID()
	key := storage.Stem(draft.Title) + "-" + id + ".jpg"
	imagePath, err := a.images.Save(ctx, key, body, size, contentType)
	if err != nil {
		return domain.Story{}, fmt.Errorf("store image: %w", err)
	}

	story := domain.Story{
		ID:          id,
		Title:       draft.Title,
		Description: draft.Description,
		Body:        draft.Body,
		Ending:      draft.Ending,
		ImagePath:   imagePath,
		AuthorID:    author.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.SaveStory(story); err != nil {
		return domain.Story{}, fmt.Errorf("save story: %w", err)
	}
	if a.feed != nil {
		if err := a.feed.Invalidate(ctx); err != nil {
			slog.Warn("feed cache invalidation failed", "err", err)
		}
	}
	return story, nil
}

// RecentStories returns the newest stories for the public feed, using the
// cache when one is configured.
func (a *App) RecentStories(ctx context.Context) ([]domain.Story, error) {
	if a.feed != nil {
		stories, ok, err := a.feed.Get(ctx)
		if err != nil {
			slog.Warn("feed cache read failed", "err", err)
		} else if ok {
			return stories, nil
		}
	}
	stories, err := a.store.ListRecentStories(recentFeedLimit)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	if a.feed != nil {
		if err := a.feed.Set(ctx, stories); err != nil {
			slog.Warn("feed cache write failed", "err", err)
		}
	}
	return stories, nil
}

// UpdateSubscription changes the caller's own subscription tier.
func (a *App) UpdateSubscription(identity domain.Identity, tier string) (domain.User, error) {
	parsed, ok := parseTier(tier)
	if !ok {
		return domain.User{}, ErrInvalidTier
	}
	user, found, err := a.store.GetUserByID(identity.UserID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !found {
		return domain.User{}, ErrUserNotFound
	}
	user.Subscription = parsed
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func parseTier(tier string) (domain.SubscriptionTier, bool) {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(domain.TierFree):
		return domain.TierFree, true
	case string(domain.TierPremium):
		return domain.TierPremium, true
	default:
		return "", false
	}
}
