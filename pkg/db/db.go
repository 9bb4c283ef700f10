package db

import (
	"context"
	"fmt"
	"time"

	"hindinews/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore wraps the MongoDB client and the articles collection
type MongoStore struct {
	mongoClient *mongo.Client
	collection  *mongo.Collection
}

var (
	_ Store  = (*MongoStore)(nil)
	_ Lister = (*MongoStore)(nil)
)

// NewMongoStore connects, pings and ensures the unique indexes exist
func NewMongoStore(ctx context.Context, connectionString, databaseName, collectionName string) (*MongoStore, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := &MongoStore{
		mongoClient: mongoClient,
		collection:  mongoClient.Database(databaseName).Collection(tableName(collectionName)),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "source_url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (s *MongoStore) Close(ctx context.Context) error {
	return s.mongoClient.Disconnect(ctx)
}

func (s *MongoStore) Exists(ctx context.Context, sourceURL string) (bool, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{"source_url": sourceURL}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("query source_url: %w", err)
	}
	return n > 0, nil
}

// Insert adds a new document; the unique index rejects repeats
func (s *MongoStore) Insert(ctx context.Context, rec domain.ArticleRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if _, err := s.collection.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// List returns every article ordered by created_at
func (s *MongoStore) List(ctx context.Context) ([]domain.ArticleRecord, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.ArticleRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return records, nil
}
