package repositories

import (
	"context"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations.
// Comments live in one flat collection and are grouped by mood event ID.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByMoodEvent(ctx context.Context, moodEventID string) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// SQLCommentRepository implements CommentRepository on GORM. Reply IDs are
// derived from parent_id rather than stored on the parent row.
type SQLCommentRepository struct {
	db *gorm.DB
}

// NewSQLCommentRepository creates a new SQLCommentRepository
func NewSQLCommentRepository(db *gorm.DB) *SQLCommentRepository {
	return &SQLCommentRepository{db: db}
}

// CreateComment inserts a comment; a reply must point at a comment on the same mood event
func (r *SQLCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if comment.ParentID != "" {
			var parent models.Comment
			err := tx.Where("id = ? AND mood_event_id = ?", comment.ParentID, comment.MoodEventID).First(&parent).Error
			if err != nil {
				return gormErr(err)
			}
		}
		if comment.ReplyIDs == nil {
			comment.ReplyIDs = []string{}
		}
		return tx.Create(comment).Error
	})
}

func (r *SQLCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	db := r.db.WithContext(ctx)
	var comment models.Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		return nil, gormErr(err)
	}
	comments := []models.Comment{comment}
	if err := r.attachReplyIDs(db, comments); err != nil {
		return nil, err
	}
	return &comments[0], nil
}

// ListCommentsByMoodEvent returns top-level comments, oldest first
func (r *SQLCommentRepository) ListCommentsByMoodEvent(ctx context.Context, moodEventID string) ([]models.Comment, error) {
	db := r.db.WithContext(ctx)
	var comments []models.Comment
	err := db.Where("mood_event_id = ? AND parent_id = ?", moodEventID, "").Order("timestamp ASC").Find(&comments).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachReplyIDs(db, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// ListReplies returns the direct replies of a comment, oldest first
func (r *SQLCommentRepository) ListReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	db := r.db.WithContext(ctx)
	var comments []models.Comment
	if err := db.Where("parent_id = ?", parentID).Order("timestamp ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	if err := r.attachReplyIDs(db, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment together with its whole reply thread
func (r *SQLCommentRepository) DeleteComment(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doomed := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			doomed = append(doomed, children...)
			frontier = children
		}
		res := tx.Where("id IN ?", doomed).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *SQLCommentRepository) attachReplyIDs(db *gorm.DB, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]string, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	var replies []models.Comment
	if err := db.Select("id", "parent_id").Where("parent_id IN ?", ids).Order("timestamp ASC").Find(&replies).Error; err != nil {
		return err
	}
	byParent := make(map[string][]string, len(comments))
	for _, reply := range replies {
		byParent[reply.ParentID] = append(byParent[reply.ParentID], reply.ID)
	}
	for i := range comments {
		comments[i].ReplyIDs = byParent[comments[i].ID]
		if comments[i].ReplyIDs == nil {
			comments[i].ReplyIDs = []string{}
		}
	}
	return nil
}
