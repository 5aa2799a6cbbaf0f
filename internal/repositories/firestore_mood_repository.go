package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	moodsCollection = "moods"
	// fan-out limit for per-user feed queries
	maxConcurrentMoodQueries = 8
)

// FirestoreMoodRepository stores moods at users/{uid}/moods/{id}
type FirestoreMoodRepository struct {
	client *firestore.Client
}

// NewFirestoreMoodRepository creates a new FirestoreMoodRepository
func NewFirestoreMoodRepository(client *firestore.Client) *FirestoreMoodRepository {
	return &FirestoreMoodRepository{client: client}
}

func (r *FirestoreMoodRepository) moods(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(moodsCollection)
}

func (r *FirestoreMoodRepository) CreateMood(ctx context.Context, mood *models.MoodEvent) error {
	_, err := r.moods(mood.UserID).Doc(mood.ID).Set(ctx, mood)
	return err
}

// UpdateMood overwrites the whole document, which must already exist
func (r *FirestoreMoodRepository) UpdateMood(ctx context.Context, mood *models.MoodEvent) error {
	ref := r.moods(mood.UserID).Doc(mood.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			if isFirestoreNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		return tx.Set(ref, mood)
	})
}

func (r *FirestoreMoodRepository) DeleteMood(ctx context.Context, ownerID, id string) error {
	_, err := r.moods(ownerID).Doc(id).Delete(ctx, firestore.Exists)
	if isFirestoreNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *FirestoreMoodRepository) GetMood(ctx context.Context, ownerID, id string) (*models.MoodEvent, error) {
	snap, err := r.moods(ownerID).Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeMood(snap)
}

// FindMood locates a mood by id across every user with a collection group query
func (r *FirestoreMoodRepository) FindMood(ctx context.Context, id string) (*models.MoodEvent, error) {
	docs, err := r.client.CollectionGroup(moodsCollection).Where("id", "==", id).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return decodeMood(docs[0])
}

func (r *FirestoreMoodRepository) ListMoodsByUser(ctx context.Context, userID string) ([]models.MoodEvent, error) {
	docs, err := r.moods(userID).OrderBy("timestamp", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeMoods(docs)
}

// ListPublicMoodsByUsers queries each user's subcollection concurrently and
// merges the results. Sorting happens here so no composite index is needed.
func (r *FirestoreMoodRepository) ListPublicMoodsByUsers(ctx context.Context, userIDs []string) ([]models.MoodEvent, error) {
	var (
		mu  sync.Mutex
		all = []models.MoodEvent{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentMoodQueries)
	for _, uid := range userIDs {
		g.Go(func() error {
			docs, err := r.moods(uid).Where("public", "==", true).Documents(gctx).GetAll()
			if err != nil {
				return fmt.Errorf("list public moods of %s: %w", uid, err)
			}
			moods, err := decodeMoods(docs)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, moods...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp > all[j].Timestamp })
	return all, nil
}

func decodeMood(snap *firestore.DocumentSnapshot) (*models.MoodEvent, error) {
	var mood models.MoodEvent
	if err := snap.DataTo(&mood); err != nil {
		return nil, fmt.Errorf("decode mood %s: %w", snap.Ref.ID, err)
	}
	if mood.ID == "" {
		mood.ID = snap.Ref.ID
	}
	mood.Existed = true
	return &mood, nil
}

func decodeMoods(docs []*firestore.DocumentSnapshot) ([]models.MoodEvent, error) {
	moods := make([]models.MoodEvent, 0, len(docs))
	for _, d := range docs {
		m, err := decodeMood(d)
		if err != nil {
			return nil, err
		}
		moods = append(moods, *m)
	}
	return moods, nil
}
