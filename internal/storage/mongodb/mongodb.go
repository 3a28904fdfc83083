package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ObjectDocument represents a stored object in MongoDB
type ObjectDocument struct {
	ID        string    `bson:"_id"`
	Bucket    string    `bson:"bucket"`
	Path      string    `bson:"path"`
	Data      []byte    `bson:"data"`
	Size      int64     `bson:"size"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store implements types.ObjectStore using a MongoDB collection
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	bucket     string
}

// NewStore connects, pings, and ensures the (bucket, path) index.
func NewStore(ctx context.Context, uri, database, collection, bucket string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(collection)

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "bucket", Value: 1},
			{Key: "path", Value: 1},
		},
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &Store{
		client:     client,
		collection: coll,
		bucket:     bucket,
	}, nil
}

// docID scopes a path to the store's bucket.
func (m *Store) docID(path string) string {
	return m.bucket + ":" + path
}

// Exists checks if an object exists
func (m *Store) Exists(ctx context.Context, path string) (bool, error) {
	count, err := m.collection.CountDocuments(ctx, bson.M{"_id": m.docID(path)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", path, err)
	}
	return count > 0, nil
}

// List lists objects with the given prefix
func (m *Store) List(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"bucket": m.bucket}
	if prefix != "" {
		filter["path"] = bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "path", Value: 1}}).
		SetProjection(bson.M{"path": 1})

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	defer cursor.Close(ctx)

	var paths []string
	for cursor.Next(ctx) {
		var doc ObjectDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		paths = append(paths, doc.Path)
	}
	return paths, cursor.Err()
}

// Copy duplicates the document at src under dst, replacing any existing dst.
func (m *Store) Copy(ctx context.Context, src, dst string) error {
	var doc ObjectDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": m.docID(src)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("copy source %s not found", src)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	doc.ID = m.docID(dst)
	doc.Path = dst
	doc.UpdatedAt = time.Now()
	return m.replace(ctx, doc)
}

// Delete deletes an object. Missing documents are not an error.
func (m *Store) Delete(ctx context.Context, path string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": m.docID(path)}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// Put writes object data
func (m *Store) Put(ctx context.Context, path string, data []byte) error {
	return m.replace(ctx, ObjectDocument{
		ID:        m.docID(path),
		Bucket:    m.bucket,
		Path:      path,
		Data:      data,
		Size:      int64(len(data)),
		UpdatedAt: time.Now(),
	})
}

func (m *Store) replace(ctx context.Context, doc ObjectDocument) error {
	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", doc.Path, err)
	}
	return nil
}

// Close closes the MongoDB connection
func (m *Store) Close() error {
	return m.client.Disconnect(context.Background())
}
