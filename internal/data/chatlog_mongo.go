package data

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tubesieve/tubesieve/internal/biz/domain"
	"github.com/tubesieve/tubesieve/internal/biz/repo"
)

// mongoChatLogRepo implements the chat log repository on MongoDB
type mongoChatLogRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoChatLogRepo connects to MongoDB and returns a chat log repository.
// Messages of every chat are stored in "<collection>_messages".
func NewMongoChatLogRepo(ctx context.Context, uri, database, collection string) (repo.ChatLogRepo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if database == "" {
		database = "tubesieve"
	}
	if collection == "" {
		collection = "chats"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	return newMongoChatLogRepo(client, client.Database(database).Collection(collection+"_messages")), nil
}

func newMongoChatLogRepo(client *mongo.Client, coll *mongo.Collection) *mongoChatLogRepo {
	r := &mongoChatLogRepo{client: client, collection: coll}
	r.ensureIndexes()
	return r
}

// ensureIndexes creates necessary indexes for performance
func (r *mongoChatLogRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "chat_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Str("component", "chatlog").Msg("Failed to create chat log indexes")
	}
}

// Append implements repo.ChatLogRepo
func (r *mongoChatLogRepo) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("failed to append message: %w", err)
	}
	return msg, nil
}

// List implements repo.ChatLogRepo
func (r *mongoChatLogRepo) List(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"chat_id": chatID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	reverseMessages(messages)
	return messages, nil
}

// Ping implements repo.ChatLogRepo
func (r *mongoChatLogRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (r *mongoChatLogRepo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
