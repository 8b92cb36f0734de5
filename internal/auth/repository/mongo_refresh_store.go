package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	authdomain "github.com/blogsphere/backend/internal/auth/domain"
	"github.com/blogsphere/backend/internal/common/clock"
)

const (
	mongoDriver           = "mongo"
	refreshTokensCollName = "refresh_tokens"
)

type mongoRefreshRecord struct {
	UserID    string    `bson:"user_id"`
	TokenHash string    `bson:"token_hash"`
	ExpiresAt time.Time `bson:"expires_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoRefreshStore struct {
	coll  *mongo.Collection
	clock clock.Clock
}

func NewMongoRefreshStore(database *mongo.Database, clk clock.Clock) *MongoRefreshStore {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &MongoRefreshStore{
		coll:  database.Collection(refreshTokensCollName),
		clock: clk,
	}
}

// ConnectMongo opens a client and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique user and token indexes plus a TTL index
// that lets the server drop lapsed records on its own.
func (s *MongoRefreshStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
		},
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_token_hash"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create refresh token indexes: %w", err)
	}
	return nil
}

func (s *MongoRefreshStore) Upsert(ctx context.Context, record authdomain.RefreshRecord) (err error) {
	start := time.Now()
	defer func() { observe(mongoDriver, "upsert", start, err) }()

	_, err = s.coll.UpdateOne(
		ctx,
		bson.M{"user_id": record.UserID},
		bson.M{"$set": bson.M{
			"token_hash": record.TokenHash,
			"expires_at": record.ExpiresAt,
			"updated_at": record.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert refresh token: %w", err)
	}
	return nil
}

func (s *MongoRefreshStore) FindByValue(ctx context.Context, tokenHash string) (record authdomain.RefreshRecord, err error) {
	start := time.Now()
	defer func() { observe(mongoDriver, "find", start, err) }()

	var doc mongoRefreshRecord
	err = s.coll.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return authdomain.RefreshRecord{}, ErrRefreshTokenNotFound
		}
		return authdomain.RefreshRecord{}, fmt.Errorf("failed to find refresh token: %w", err)
	}

	return authdomain.RefreshRecord{
		UserID:    doc.UserID,
		TokenHash: doc.TokenHash,
		ExpiresAt: doc.ExpiresAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *MongoRefreshStore) DeleteByValue(ctx context.Context, tokenHash string) (err error) {
	start := time.Now()
	defer func() { observe(mongoDriver, "delete", start, err) }()

	if _, err = s.coll.DeleteOne(ctx, bson.M{"token_hash": tokenHash}); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

func (s *MongoRefreshStore) DeleteExpired(ctx context.Context) (deleted int64, err error) {
	start := time.Now()
	defer func() { observe(mongoDriver, "delete_expired", start, err) }()

	res, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": s.clock.Now()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return res.DeletedCount, nil
}
