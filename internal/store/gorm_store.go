package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storytime/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &StoryModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "password_hash", "subscription"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// SaveStory inserts a story record.
func (s *GormStore) SaveStory(st domain.Story) error {
	model := storyToModel(st)
	return s.db.Create(&model).Error
}

// ListRecentStories returns the newest stories, most recent first.
func (s *GormStore) ListRecentStories(limit int) ([]domain.Story, error) {
	var models []StoryModel
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Story, 0, len(models))
	for _, m := range models {
		res = append(res, storyFromModel(m))
	}
	return res, nil
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Subscription: string(u.Subscription),
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Subscription: domain.SubscriptionTier(m.Subscription),
		CreatedAt:    m.CreatedAt,
	}
}

func storyToModel(st domain.Story) StoryModel {
	return StoryModel{
		ID:          st.ID,
		Title:       st.Title,
		Description: st.Description,
		Body:        st.Body,
		Ending:      st.Ending,
		ImagePath:   st.ImagePath,
		AuthorID:    st.AuthorID,
		CreatedAt:   st.CreatedAt,
	}
}

func storyFromModel(m StoryModel) domain.Story {
	return domain.Story{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Body:        m.Body,
		Ending:      m.Ending,
		ImagePath:   m.ImagePath,
		AuthorID:    m.AuthorID,
		CreatedAt:   m.CreatedAt,
	}
}
