package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a profile document keyed by the identity provider's UID.
// The password never lives here; the identity provider owns credentials.
type User struct {
	ID        string    `json:"id" firestore:"id" gorm:"primaryKey;size:128"`
	Username  string    `json:"username" firestore:"username" gorm:"uniqueIndex;size:64"`
	Email     string    `json:"email" firestore:"email" gorm:"size:255"`
	AvatarURL string    `json:"avatar_url,omitempty" firestore:"avatarUrl"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// UserCompact is the public view of a user embedded in other responses
type UserCompact struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

type SignupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type SigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,username"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

// ResetPasswordRequest re-authenticates with the current password before setting a new one
type ResetPasswordRequest struct {
	Username        string `json:"username" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128"`
}

// Session identifies the caller of a request. It is rebuilt from the bearer
// token on every request and travels in the Echo context.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
