package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/breakeven/internal/domain/models"
	"github.com/mamadbah2/breakeven/internal/repository"
)

const (
	configCollection   = "bep_configs"
	snapshotCollection = "bep_snapshots"
)

// MongoDBRepository stores one BepConfig document per restaurant and the weekly snapshots.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	now    func() time.Time
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{client: client, dbName: dbName, now: time.Now}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection(configCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "restaurant_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create config index: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// Load returns the configuration of a restaurant, or repository.ErrNotFound.
func (r *MongoDBRepository) Load(ctx context.Context, restaurantID string) (models.BepConfig, error) {
	var cfg models.BepConfig
	err := r.collection(configCollection).FindOne(ctx, bson.M{"restaurant_id": restaurantID}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.BepConfig{}, repository.ErrNotFound
	}
	if err != nil {
		return models.BepConfig{}, fmt.Errorf("failed to load config %s: %w", restaurantID, err)
	}
	return cfg, nil
}

// Save replaces the whole configuration document, creating it when missing.
// The filter pins the version the caller loaded: a stale save misses it, its
// upsert collides with the unique restaurant index and repository.ErrVersionConflict
// is returned.
func (r *MongoDBRepository) Save(ctx context.Context, cfg models.BepConfig) error {
	if cfg.RestaurantID == "" {
		return errors.New("restaurant id must not be empty")
	}

	_, err := r.collection(configCollection).ReplaceOne(ctx,
		versionFilter(cfg.RestaurantID, cfg.Version),
		nextVersion(cfg, r.now()),
		options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to save config %s: %w", cfg.RestaurantID, err)
	}
	return nil
}

// versionFilter matches the document at the expected version. Documents
// written before versioning have no version field and count as 0.
func versionFilter(restaurantID string, version int64) bson.M {
	filter := bson.M{"restaurant_id": restaurantID, "version": version}
	if version == 0 {
		filter["version"] = bson.M{"$in": bson.A{int64(0), nil}}
	}
	return filter
}

func nextVersion(cfg models.BepConfig, now time.Time) models.BepConfig {
	cfg.Version++
	cfg.UpdatedAt = now.UTC()
	return cfg
}

// SaveSnapshot appends a break-even snapshot.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.BreakEvenSnapshot) error {
	if _, err := r.collection(snapshotCollection).InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert break-even snapshot: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
