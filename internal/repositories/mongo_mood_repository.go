package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/unemployed-avengers/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMoodRepository implements MoodRepository for MongoDB
type MongoMoodRepository struct {
	collection *mongo.Collection
}

// NewMongoMoodRepository creates a new MongoMoodRepository
func NewMongoMoodRepository(db *mongo.Database) *MongoMoodRepository {
	return &MongoMoodRepository{collection: db.Collection("moods")}
}

// EnsureIndexes creates the indexes the list queries rely on
func (r *MongoMoodRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "public", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

// CreateMood inserts a new mood event
func (r *MongoMoodRepository) CreateMood(ctx context.Context, mood *models.MoodEvent) error {
	_, err := r.collection.InsertOne(ctx, mood)
	return err
}

// UpdateMood replaces an existing mood owned by mood.UserID
func (r *MongoMoodRepository) UpdateMood(ctx context.Context, mood *models.MoodEvent) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": mood.ID, "user_id": mood.UserID}, mood)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMood deletes a mood by owner and ID
func (r *MongoMoodRepository) DeleteMood(ctx context.Context, ownerID, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoMoodRepository) GetMood(ctx context.Context, ownerID, id string) (*models.MoodEvent, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user_id": ownerID})
}

func (r *MongoMoodRepository) FindMood(ctx context.Context, id string) (*models.MoodEvent, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// ListMoodsByUser retrieves a user's whole history, newest first
func (r *MongoMoodRepository) ListMoodsByUser(ctx context.Context, userID string) ([]models.MoodEvent, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

// ListPublicMoodsByUsers retrieves public moods of the given users, newest first
func (r *MongoMoodRepository) ListPublicMoodsByUsers(ctx context.Context, userIDs []string) ([]models.MoodEvent, error) {
	if len(userIDs) == 0 {
		return []models.MoodEvent{}, nil
	}
	return r.find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}, "public": true})
}

func (r *MongoMoodRepository) findOne(ctx context.Context, filter bson.M) (*models.MoodEvent, error) {
	var mood models.MoodEvent
	err := r.collection.FindOne(ctx, filter).Decode(&mood)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	mood.Existed = true
	return &mood, nil
}

func (r *MongoMoodRepository) find(ctx context.Context, filter bson.M) ([]models.MoodEvent, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	moods := []models.MoodEvent{}
	if err = cursor.All(ctx, &moods); err != nil {
		return nil, err
	}
	return markExisted(moods), nil
}
