package repositories

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/anonto42/unemployed-avengers/backend/internal/models"
)

const commentsCollection = "comments"

// FirestoreCommentRepository stores comments in the top-level comments collection
type FirestoreCommentRepository struct {
	client *firestore.Client
}

// NewFirestoreCommentRepository creates a new FirestoreCommentRepository
func NewFirestoreCommentRepository(client *firestore.Client) *FirestoreCommentRepository {
	return &FirestoreCommentRepository{client: client}
}

func (r *FirestoreCommentRepository) comments() *firestore.CollectionRef {
	return r.client.Collection(commentsCollection)
}

// CreateComment writes the comment. For a reply the parent's replyIds gets the
// new ID appended in the same transaction.
func (r *FirestoreCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ReplyIDs == nil {
		comment.ReplyIDs = []string{}
	}
	ref := r.comments().Doc(comment.ID)
	if comment.ParentID == "" {
		_, err := ref.Create(ctx, comment)
		return err
	}
	parentRef := r.comments().Doc(comment.ParentID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(parentRef)
		if err != nil {
			if isFirestoreNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		var parent models.Comment
		if err := snap.DataTo(&parent); err != nil {
			return fmt.Errorf("decode comment %s: %w", snap.Ref.ID, err)
		}
		if parent.MoodEventID != comment.MoodEventID {
			return ErrNotFound
		}
		if err := tx.Create(ref, comment); err != nil {
			return err
		}
		return tx.Update(parentRef, []firestore.Update{
			{Path: "replyIds", Value: firestore.ArrayUnion(comment.ID)},
		})
	})
}

func (r *FirestoreCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	snap, err := r.comments().Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeComment(snap)
}

// ListCommentsByMoodEvent returns top-level comments, oldest first
func (r *FirestoreCommentRepository) ListCommentsByMoodEvent(ctx context.Context, moodEventID string) ([]models.Comment, error) {
	docs, err := r.comments().Where("moodEventId", "==", moodEventID).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	all, err := decodeComments(docs)
	if err != nil {
		return nil, err
	}
	top := all[:0]
	for _, c := range all {
		if c.ParentID == "" {
			top = append(top, c)
		}
	}
	return top, nil
}

func (r *FirestoreCommentRepository) ListReplies(ctx context.Context, parentID string) ([]models.Comment, error) {
	docs, err := r.comments().Where("parentId", "==", parentID).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeComments(docs)
}

// DeleteComment removes the comment, its reply thread, and its ID from the parent's replyIds
func (r *FirestoreCommentRepository) DeleteComment(ctx context.Context, id string) error {
	ref := r.comments().Doc(id)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isFirestoreNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		var target models.Comment
		if err := snap.DataTo(&target); err != nil {
			return fmt.Errorf("decode comment %s: %w", id, err)
		}

		// every read happens before the first write
		doomed := []*firestore.DocumentRef{ref}
		frontier := []string{id}
		for len(frontier) > 0 {
			var next []string
			for _, pid := range frontier {
				children, err := tx.Documents(r.comments().Where("parentId", "==", pid)).GetAll()
				if err != nil {
					return err
				}
				for _, c := range children {
					doomed = append(doomed, c.Ref)
					next = append(next, c.Ref.ID)
				}
			}
			frontier = next
		}

		var parentRef *firestore.DocumentRef
		if target.ParentID != "" {
			parentRef = r.comments().Doc(target.ParentID)
			if _, err := tx.Get(parentRef); err != nil {
				if !isFirestoreNotFound(err) {
					return err
				}
				parentRef = nil
			}
		}

		for _, d := range doomed {
			if err := tx.Delete(d); err != nil {
				return err
			}
		}
		if parentRef != nil {
			return tx.Update(parentRef, []firestore.Update{
				{Path: "replyIds", Value: firestore.ArrayRemove(id)},
			})
		}
		return nil
	})
}

func decodeComment(snap *firestore.DocumentSnapshot) (*models.Comment, error) {
	var c models.Comment
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("decode comment %s: %w", snap.Ref.ID, err)
	}
	if c.ID == "" {
		c.ID = snap.Ref.ID
	}
	if c.ReplyIDs == nil {
		c.ReplyIDs = []string{}
	}
	return &c, nil
}

func decodeComments(docs []*firestore.DocumentSnapshot) ([]models.Comment, error) {
	comments := make([]models.Comment, 0, len(docs))
	for _, d := range docs {
		c, err := decodeComment(d)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].Timestamp < comments[j].Timestamp })
	return comments, nil
}
