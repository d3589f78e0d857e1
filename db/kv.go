package db

import (
	"context"
	"errors"
	"time"

	"calufestas/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// slot is one stored value. Value keeps the exact bytes the caller wrote.
type slot struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	UpdatedAt time.Time  `bson:"updated_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// KV keeps slots as documents of one collection.
type KV struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewKV(coll *mongo.Collection) *KV {
	return &KV{coll: coll, now: time.Now}
}

// EnsureIndexes lets Mongo drop expired slots on its own.
func (k *KV) EnsureIndexes(ctx context.Context) error {
	_, err := k.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"expires_at": 1},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
	})
	return err
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var s slot
	err := k.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// the TTL monitor runs about once a minute
	if s.ExpiresAt != nil && !k.now().Before(*s.ExpiresAt) {
		return nil, storage.ErrNotFound
	}
	return s.Value, nil
}

func (k *KV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s := newSlot(key, value, ttl, k.now())
	_, err := k.coll.ReplaceOne(ctx, bson.M{"_id": key}, s, options.Replace().SetUpsert(true))
	return err
}

func (k *KV) Delete(ctx context.Context, key string) error {
	_, err := k.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func newSlot(key string, value []byte, ttl time.Duration, now time.Time) slot {
	s := slot{Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		s.ExpiresAt = &exp
	}
	return s
}
