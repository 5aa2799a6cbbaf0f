package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	SearchUsers(ctx context.Context, prefix string, limit int) ([]models.User, error)
}

// SQLUserRepository implements UserRepository on GORM
type SQLUserRepository struct {
	db *gorm.DB
}

// NewSQLUserRepository creates a new SQLUserRepository
func NewSQLUserRepository(db *gorm.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// CreateUser inserts a profile, refusing a username another profile already holds
func (r *SQLUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, user.Username, user.ID); err != nil {
			return err
		}
		return tx.Create(user).Error
	})
}

func (r *SQLUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, gormErr(err)
	}
	return &user, nil
}

// UpdateUser overwrites a profile; a rename must not collide with another user
func (r *SQLUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, user.Username, user.ID); err != nil {
			return err
		}
		res := tx.Model(&models.User{}).Where("id = ?", user.ID).Select("username", "email", "avatar_url").Updates(user)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *SQLUserRepository) DeleteUser(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchUsers returns users whose username starts with prefix, case-insensitively
func (r *SQLUserRepository) SearchUsers(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE LOWER(?) ESCAPE '\'`, likePrefix(prefix)).
		Order("username").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// likePrefix escapes LIKE wildcards in prefix and appends the trailing %
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func usernameFree(tx *gorm.DB, username, selfID string) error {
	var existing models.User
	err := tx.Where("username = ?", username).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != selfID {
		return ErrUsernameTaken
	}
	return nil
}
