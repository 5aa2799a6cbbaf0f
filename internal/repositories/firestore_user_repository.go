package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
)

const usersCollection = "users"

// FirestoreUserRepository implements UserRepository on the users collection
type FirestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository creates a new FirestoreUserRepository
func NewFirestoreUserRepository(client *firestore.Client) *FirestoreUserRepository {
	return &FirestoreUserRepository{client: client}
}

func (r *FirestoreUserRepository) users() *firestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

// CreateUser writes users/{id} after checking no other profile holds the username
func (r *FirestoreUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	ref := r.users().Doc(user.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := r.usernameFree(tx, user.Username, user.ID); err != nil {
			return err
		}
		return tx.Create(ref, user)
	})
}

func (r *FirestoreUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	snap, err := r.users().Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}

func (r *FirestoreUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	docs, err := r.users().Where("username", "==", username).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	var user models.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", docs[0].Ref.ID, err)
	}
	return &user, nil
}

// UpdateUser overwrites the editable profile fields of an existing user
func (r *FirestoreUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	ref := r.users().Doc(user.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isFirestoreNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		if err := r.usernameFree(tx, user.Username, user.ID); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "username", Value: user.Username},
			{Path: "email", Value: user.Email},
			{Path: "avatarUrl", Value: user.AvatarURL},
		})
	})
}

func (r *FirestoreUserRepository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.users().Doc(id).Delete(ctx, firestore.Exists)
	if isFirestoreNotFound(err) {
		return ErrNotFound
	}
	return err
}

// SearchUsers is a case-sensitive prefix range query on username
func (r *FirestoreUserRepository) SearchUsers(ctx context.Context, prefix string, limit int) ([]models.User, error) {
	docs, err := r.users().
		Where("username", ">=", prefix).
		Where("username", "<", prefix+"\uf8ff").
		OrderBy("username", firestore.Asc).
		Limit(limit).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		var u models.User
		if err := d.DataTo(&u); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", d.Ref.ID, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *FirestoreUserRepository) usernameFree(tx *firestore.Transaction, username, selfID string) error {
	docs, err := tx.Documents(r.users().Where("username", "==", username).Limit(1)).GetAll()
	if err != nil {
		return err
	}
	if len(docs) > 0 && docs[0].Ref.ID != selfID {
		return ErrUsernameTaken
	}
	return nil
}
