package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"leadgate/internal/lead/models"
	"leadgate/pkg/platform/sentinel"
	"leadgate/pkg/requestcontext"
)

type leadDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Company   string    `bson:"company"`
	Email     *string   `bson:"email"`
	Phone     *string   `bson:"phone"`
	TeamSize  int       `bson:"team_size"`
	IPAddress string    `bson:"ip_address"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoStore persists leads in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// New constructs a MongoDB-backed lead store.
func New(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
}

// EnsureIndexes creates the ip_address index used by Count.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ip_address", Value: 1}},
		Options: options.Index().SetName("idx_lead_ip_address"),
	})
	if err != nil {
		return fmt.Errorf("ensure lead indexes: %w", err)
	}
	return nil
}

// Count returns the number of stored leads from ip.
func (s *MongoStore) Count(ctx context.Context, ip string) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"ip_address": ip})
	if err != nil {
		return 0, fmt.Errorf("count leads by ip: %w", err)
	}
	return int(n), nil
}

// Insert stores a lead.
func (s *MongoStore) Insert(ctx context.Context, sub models.NormalizedSubmission) (*models.Record, error) {
	rec := models.NewRecord(sub, requestcontext.Now(ctx))
	doc := leadDocument{
		ID:        rec.ID.String(),
		Name:      rec.Name,
		Company:   rec.Company,
		Email:     rec.Email,
		Phone:     rec.Phone,
		TeamSize:  rec.TeamSize,
		IPAddress: rec.IPAddress,
		CreatedAt: rec.CreatedAt,
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return rec, nil
}

// Health pings the primary.
func (s *MongoStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
