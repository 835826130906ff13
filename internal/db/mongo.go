package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yigit/agencyportal/internal/config"
	"github.com/yigit/agencyportal/internal/pkg/logger"
)

// MongoDB holds the document store client and its database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to MongoDB, pings it and makes sure the document indexes exist
func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	timeout, err := time.ParseDuration(cfg.Mongo.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongo timeout: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m := &MongoDB{Client: client, Database: client.Database(cfg.Mongo.Database)}
	if err := m.ensureIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("Could not create document indexes")
	}
	return m, nil
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	_, err := m.Database.Collection("documents").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "applicationId", Value: 1}}},
		{Keys: bson.D{{Key: "agencyId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

// Ping reports whether the primary is reachable
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close disconnects the client
func (m *MongoDB) Close() error {
	if m.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
