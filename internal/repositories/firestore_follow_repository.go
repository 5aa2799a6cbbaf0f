package repositories

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
)

const (
	requestsCollection  = "requests"
	followersCollection = "followers"
	followingCollection = "following"
)

// FirestoreFollowRepository keeps the follow graph in per-user subcollections:
// users/{B}/requests/{A}, users/{B}/followers/{A} and users/{A}/following/{B}.
type FirestoreFollowRepository struct {
	client *firestore.Client
}

// NewFirestoreFollowRepository creates a new FirestoreFollowRepository
func NewFirestoreFollowRepository(client *firestore.Client) *FirestoreFollowRepository {
	return &FirestoreFollowRepository{client: client}
}

func (r *FirestoreFollowRepository) sub(userID, name string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(name)
}

func (r *FirestoreFollowRepository) requestRef(requesterID, targetID string) *firestore.DocumentRef {
	return r.sub(targetID, requestsCollection).Doc(requesterID)
}

func (r *FirestoreFollowRepository) followingRef(followerID, followedID string) *firestore.DocumentRef {
	return r.sub(followerID, followingCollection).Doc(followedID)
}

func (r *FirestoreFollowRepository) followerRef(followerID, followedID string) *firestore.DocumentRef {
	return r.sub(followedID, followersCollection).Doc(followerID)
}

// RequestFollow writes the pending request unless the requester already follows the target
func (r *FirestoreFollowRepository) RequestFollow(ctx context.Context, requesterID, targetID string) error {
	if requesterID == targetID {
		return ErrSelfFollow
	}
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		following, err := txExists(tx, r.followingRef(requesterID, targetID))
		if err != nil {
			return err
		}
		if following {
			return ErrAlreadyFollowing
		}
		return tx.Set(r.requestRef(requesterID, targetID), &models.FollowRequest{
			RequesterID: requesterID,
			Status:      models.RequestStatusPending,
			Timestamp:   time.Now().UnixMilli(),
		})
	})
}

// AcceptFollowRequest deletes the request and writes both edge documents atomically
func (r *FirestoreFollowRepository) AcceptFollowRequest(ctx context.Context, requesterID, targetID string) error {
	reqRef := r.requestRef(requesterID, targetID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		pending, err := txExists(tx, reqRef)
		if err != nil {
			return err
		}
		if !pending {
			return ErrRequestNotFound
		}
		edge := &models.FollowEdgeDoc{Timestamp: time.Now().UnixMilli()}
		if err := tx.Delete(reqRef); err != nil {
			return err
		}
		if err := tx.Set(r.followingRef(requesterID, targetID), edge); err != nil {
			return err
		}
		return tx.Set(r.followerRef(requesterID, targetID), edge)
	})
}

// RejectFollowRequest deletes only the request document
func (r *FirestoreFollowRepository) RejectFollowRequest(ctx context.Context, requesterID, targetID string) error {
	_, err := r.requestRef(requesterID, targetID).Delete(ctx, firestore.Exists)
	if isFirestoreNotFound(err) {
		return ErrRequestNotFound
	}
	return err
}

// Unfollow deletes both edge documents atomically
func (r *FirestoreFollowRepository) Unfollow(ctx context.Context, followerID, followedID string) error {
	fwdRef := r.followingRef(followerID, followedID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		following, err := txExists(tx, fwdRef)
		if err != nil {
			return err
		}
		if !following {
			return ErrNotFollowing
		}
		if err := tx.Delete(fwdRef); err != nil {
			return err
		}
		return tx.Delete(r.followerRef(followerID, followedID))
	})
}

// GetFollowStatus checks the following edge before the request document
func (r *FirestoreFollowRepository) GetFollowStatus(ctx context.Context, requesterID, targetID string) (models.FollowStatus, error) {
	following, err := docExists(ctx, r.followingRef(requesterID, targetID))
	if err != nil {
		return "", err
	}
	if following {
		return models.FollowStatusFollowing, nil
	}
	requested, err := docExists(ctx, r.requestRef(requesterID, targetID))
	if err != nil {
		return "", err
	}
	if requested {
		return models.FollowStatusRequested, nil
	}
	return models.FollowStatusNone, nil
}

func (r *FirestoreFollowRepository) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	return docExists(ctx, r.followingRef(followerID, followedID))
}

func (r *FirestoreFollowRepository) ListPendingRequests(ctx context.Context, targetID string) ([]models.FollowRequest, error) {
	docs, err := r.sub(targetID, requestsCollection).Where("status", "==", models.RequestStatusPending).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	requests := make([]models.FollowRequest, 0, len(docs))
	for _, d := range docs {
		var req models.FollowRequest
		if err := d.DataTo(&req); err != nil {
			return nil, fmt.Errorf("decode follow request %s: %w", d.Ref.ID, err)
		}
		req.RequesterID = d.Ref.ID
		req.TargetID = targetID
		requests = append(requests, req)
	}
	sort.SliceStable(requests, func(i, j int) bool { return requests[i].Timestamp > requests[j].Timestamp })
	return requests, nil
}

func (r *FirestoreFollowRepository) ListFollowers(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.listEdges(ctx, userID, followersCollection, func(other string) models.Follow {
		return models.Follow{FollowerID: other, FollowingID: userID}
	})
}

func (r *FirestoreFollowRepository) ListFollowing(ctx context.Context, userID string) ([]models.Follow, error) {
	return r.listEdges(ctx, userID, followingCollection, func(other string) models.Follow {
		return models.Follow{FollowerID: userID, FollowingID: other}
	})
}

func (r *FirestoreFollowRepository) ListFollowingIDs(ctx context.Context, userID string) ([]string, error) {
	refs, err := r.sub(userID, followingCollection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

func (r *FirestoreFollowRepository) listEdges(ctx context.Context, userID, name string, build func(other string) models.Follow) ([]models.Follow, error) {
	docs, err := r.sub(userID, name).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	follows := make([]models.Follow, 0, len(docs))
	for _, d := range docs {
		var edge models.FollowEdgeDoc
		if err := d.DataTo(&edge); err != nil {
			return nil, fmt.Errorf("decode %s edge %s: %w", name, d.Ref.ID, err)
		}
		f := build(d.Ref.ID)
		f.Timestamp = edge.Timestamp
		follows = append(follows, f)
	}
	sort.SliceStable(follows, func(i, j int) bool { return follows[i].Timestamp > follows[j].Timestamp })
	return follows, nil
}

func txExists(tx *firestore.Transaction, ref *firestore.DocumentRef) (bool, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if isFirestoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return snap.Exists(), nil
}

func docExists(ctx context.Context, ref *firestore.DocumentRef) (bool, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return snap.Exists(), nil
}
