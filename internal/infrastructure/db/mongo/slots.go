package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
)

const slotCollection = "admin_sessions"

// SlotStore is the MongoDB backend of the token store. Expired documents are
// hidden from reads and reaped by a TTL index.
type SlotStore struct {
	db   *mongo.Database
	coll *mongo.Collection
	now  func() time.Time
}

var _ tokenstore.Backend = (*SlotStore)(nil)

func NewSlotStore(db *mongo.Database) *SlotStore {
	return &SlotStore{db: db, coll: db.Collection(slotCollection), now: time.Now}
}

type slotDoc struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// EnsureIndexes creates the TTL index on expires_at.
func (s *SlotStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("create slot ttl index: %w", err)
	}
	return nil
}

// liveFilter matches key only while its slot has not expired at now.
func liveFilter(key string, now time.Time) bson.M {
	return bson.M{"_id": key, "expires_at": bson.M{"$gt": now}}
}

func newSlotDoc(key string, value []byte, ttl time.Duration, now time.Time) slotDoc {
	return slotDoc{Key: key, Value: value, ExpiresAt: now.Add(ttl), UpdatedAt: now}
}

func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc slotDoc
	err := s.coll.FindOne(ctx, liveFilter(key, s.now())).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, tokenstore.ErrMissing
	}
	if err != nil {
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return doc.Value, nil
}

func (s *SlotStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	doc := newSlotDoc(key, value, ttl, s.now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// Ping reports whether the database answers.
func (s *SlotStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}
