package repositories

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrUsernameTaken    = errors.New("username is already in use")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrRequestNotFound  = errors.New("follow request not found")
	ErrNotFollowing     = errors.New("follow relationship not found")
)

// gormErr maps GORM's not-found error onto ErrNotFound.
func gormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isFirestoreNotFound reports whether a Firestore call failed because the document is missing.
func isFirestoreNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
