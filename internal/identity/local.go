package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Credential is a locally stored login: bcrypt hash keyed by lowercased email.
type Credential struct {
	UID          string `gorm:"primaryKey;size:128"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LocalProvider keeps credentials in a SQL table.
type LocalProvider struct {
	db   *gorm.DB
	cost int
}

// NewLocalProvider creates a LocalProvider. A zero cost uses bcrypt.DefaultCost.
func NewLocalProvider(db *gorm.DB, cost int) *LocalProvider {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &LocalProvider{db: db, cost: cost}
}

// Migrate creates the credentials table
func (p *LocalProvider) Migrate() error {
	return p.db.AutoMigrate(&Credential{})
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, _ string) (string, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	cred := &Credential{UID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := emailFree(tx, email, ""); err != nil {
			return err
		}
		return tx.Create(cred).Error
	})
	if err != nil {
		return "", err
	}
	return cred.UID, nil
}

func (p *LocalProvider) VerifyPassword(ctx context.Context, email, password string) (string, error) {
	var cred Credential
	if err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return cred.UID, nil
}

func (p *LocalProvider) UpdatePassword(ctx context.Context, uid, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.update(ctx, uid, "password_hash", string(hash))
}

func (p *LocalProvider) UpdateEmail(ctx context.Context, uid, email string) error {
	email = normalizeEmail(email)
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := emailFree(tx, email, uid); err != nil {
			return err
		}
		return updateColumn(tx, uid, "email", email)
	})
}

func (p *LocalProvider) DeleteAccount(ctx context.Context, uid string) error {
	res := p.db.WithContext(ctx).Where("uid = ?", uid).Delete(&Credential{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (p *LocalProvider) update(ctx context.Context, uid, column string, value any) error {
	return updateColumn(p.db.WithContext(ctx), uid, column, value)
}

func updateColumn(db *gorm.DB, uid, column string, value any) error {
	res := db.Model(&Credential{}).Where("uid = ?", uid).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func emailFree(tx *gorm.DB, email, selfUID string) error {
	var existing Credential
	err := tx.Where("email = ?", email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.UID != selfUID {
		return ErrEmailInUse
	}
	return nil
}

// normalizeEmail matches Firebase Auth, which treats emails case-insensitively
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
