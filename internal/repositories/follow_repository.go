package repositories

import (
	"context"
	"time"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository drives the follow state machine for a (requester, target) pair:
// none -> requested -> following, requested -> none on reject, following -> none on unfollow.
type FollowRepository interface {
	RequestFollow(ctx context.Context, requesterID, targetID string) error
	AcceptFollowRequest(ctx context.Context, requesterID, targetID string) error
	RejectFollowRequest(ctx context.Context, requesterID, targetID string) error
	Unfollow(ctx context.Context, followerID, followedID string) error
	GetFollowStatus(ctx context.Context, requesterID, targetID string) (models.FollowStatus, error)
	IsFollowing(ctx context.Context, followerID, followedID string) (bool, error)
	ListPendingRequests(ctx context.Context, targetID string) ([]models.FollowRequest, error)
	ListFollowers(ctx context.Context, userID string) ([]models.Follow, error)
	ListFollowing(ctx context.Context, userID string) ([]models.Follow, error)
	ListFollowingIDs(ctx context.Context, userID string) ([]string, error)
}

// SQLFollowRepository implements FollowRepository on GORM. One follows row
// stands for both the follower and the following view of an edge.
type SQLFollowRepository struct {
	db *gorm.DB
}

// NewSQLFollowRepository creates a new SQLFollowRepository
func NewSQLFollowRepository(db *gorm.DB) *SQLFollowRepository {
	return &SQLFollowRepository{db: db}
}

// RequestFollow upserts the pending request unless the pair is already following
func (r *SQLFollowRepository) RequestFollow(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return ErrSelfFollow
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		following, err := followExists(tx, requesterID, targetID)
		if err != nil {
			return err
		}
		if following {
			return ErrAlreadyFollowing
		}
		req := &models.FollowRequest{
			RequesterID: requesterID,
			TargetID:    targetID,
			Status:      models.RequestStatusPending,
			Timestamp:   time.Now().UnixMilli(),
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(req).Error
	})
}

// AcceptFollowRequest deletes the request and creates the edge in one transaction
func (r *SQLFollowRepository) AcceptFollowRequest(ctx context.Context, requesterID, targetID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("requester_id = ? AND target_id = ?", requesterID, targetID).Delete(&models.FollowRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRequestNotFound
		}
		edge := &models.Follow{
			FollowerID:  requesterID,
			FollowingID: targetID,
			Timestamp:   time.Now().UnixMilli(),
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(edge).Error
	})
}

// RejectFollowRequest deletes only the request
func (r *SQLFollowRepository) RejectFollowRequest(ctx context.Context, requesterID, targetID string) error {
	res := r.db.WithContext(ctx).Where("requester_id = ? AND target_id = ?", requesterID, targetID).Delete(&models.FollowRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *SQLFollowRepository) Unfollow(ctx context.Context, followerID, followedID string) error {
	res := r.db.WithContext(ctx).Where("follower_id = ? AND following_id = ?", followerID, followedID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// GetFollowStatus checks the edge before the request, so a stale request never hides an edge
func (r *SQLFollowRepository) GetFollowStatus(ctx context.Context, requesterID, targetID string) (models.FollowStatus, error) {
	db := r.db.WithContext(ctx)
	following, err := followExists(db, requesterID, targetID)
	if err != nil {
		return "", err
	}
	if following {
		return models.FollowStatusFollowing, nil
	}
	var count int64
	if err := db.Model(&models.FollowRequest{}).Where("requester_id = ? AND target_id = ?", requesterID, targetID).Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return models.FollowStatusRequested, nil
	}
	return models.FollowStatusNone, nil
}

func (r *SQLFollowRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return followExists(r.db.WithContext(ctx), followerID, followedID)
}

func (r *SQLFollowRepository) ListPendingRequests(ctx context.Context, targetID string) ([]models.FollowRequest, error) {
	var requests []models.FollowRequest
	err := r.db.WithContext(ctx).
		Where("target_id = ? AND status = ?", targetID, models.RequestStatusPending).
		Order("timestamp DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *SQLFollowRepository) ListFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Where("following_id = ?", userID).Order("timestamp DESC").Find(&follows).Error
	return follows, err
}

func (r *SQLFollowRepository) ListFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	var follows []models.Follow
	err := r.db.WithContext(ctx).Where("follower_id = ?", userID).Order("timestamp DESC").Find(&follows).Error
	return follows, err
}

func (r *SQLFollowRepository) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

func followExists(db *gorm.DB, followerID, followedID string) (bool, error) {
	var count int64
	if err := db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, followedID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
