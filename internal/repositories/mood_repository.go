package repositories

import (
	"context"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"gorm.io/gorm"
)

// MoodRepository defines the interface for mood event operations.
// Lists are ordered newest first.
type MoodRepository interface {
	CreateMood(ctx context.Context, mood *models.MoodEvent) error
	UpdateMood(ctx context.Context, mood *models.MoodEvent) error
	DeleteMood(ctx context.Context, ownerID, id string) error
	GetMood(ctx context.Context, ownerID, id string) (*models.MoodEvent, error)
	FindMood(ctx context.Context, id string) (*models.MoodEvent, error)
	ListMoodsByUser(ctx context.Context, userID string) ([]models.MoodEvent, error)
	ListPublicMoodsByUsers(ctx context.Context, userIDs []string) ([]models.MoodEvent, error)
}

// SQLMoodRepository implements MoodRepository on GORM
type SQLMoodRepository struct {
	db *gorm.DB
}

// NewSQLMoodRepository creates a new SQLMoodRepository
func NewSQLMoodRepository(db *gorm.DB) *SQLMoodRepository {
	return &SQLMoodRepository{db: db}
}

func (r *SQLMoodRepository) CreateMood(ctx context.Context, mood *models.MoodEvent) error {
	return r.db.WithContext(ctx).Create(mood).Error
}

// UpdateMood overwrites every field of an existing mood owned by mood.UserID
func (r *SQLMoodRepository) UpdateMood(ctx context.Context, mood *models.MoodEvent) error {
	res := r.db.WithContext(ctx).Model(&models.MoodEvent{}).
		Where("id = ? AND user_id = ?", mood.ID, mood.UserID).
		Select("*").
		Updates(mood)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLMoodRepository) DeleteMood(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.MoodEvent{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLMoodRepository) GetMood(ctx context.Context, ownerID, id string) (*models.MoodEvent, error) {
	var mood models.MoodEvent
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&mood).Error; err != nil {
		return nil, gormErr(err)
	}
	mood.Existed = true
	return &mood, nil
}

func (r *SQLMoodRepository) FindMood(ctx context.Context, id string) (*models.MoodEvent, error) {
	var mood models.MoodEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&mood).Error; err != nil {
		return nil, gormErr(err)
	}
	mood.Existed = true
	return &mood, nil
}

func (r *SQLMoodRepository) ListMoodsByUser(ctx context.Context, userID string) ([]models.MoodEvent, error) {
	var moods []models.MoodEvent
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC").Find(&moods).Error
	if err != nil {
		return nil, err
	}
	return markExisted(moods), nil
}

func (r *SQLMoodRepository) ListPublicMoodsByUsers(ctx context.Context, userIDs []string) ([]models.MoodEvent, error) {
	if len(userIDs) == 0 {
		return []models.MoodEvent{}, nil
	}
	var moods []models.MoodEvent
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND public = ?", userIDs, true).
		Order("timestamp DESC").
		Find(&moods).Error
	if err != nil {
		return nil, err
	}
	return markExisted(moods), nil
}

func markExisted(moods []models.MoodEvent) []models.MoodEvent {
	for i := range moods {
		moods[i].Existed = true
	}
	return moods
}
