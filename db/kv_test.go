package db

import (
	"context"
	"testing"
	"time"

	"calufestas/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestSlotDocument(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := newSlot("cart:s1", []byte(`[]`), 0, now)
	assert.Nil(t, s.ExpiresAt)

	raw, err := bson.Marshal(s)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "cart:s1", doc["_id"])
	_, hasExpiry := doc["expires_at"]
	assert.False(t, hasExpiry)

	s = newSlot("produtos", []byte(`[]`), time.Minute, now)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, now.Add(time.Minute), *s.ExpiresAt)

	var back slot
	raw, err = bson.Marshal(s)
	require.NoError(t, err)
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, []byte(`[]`), back.Value)
}

func newMockKV(mt *mtest.T, now time.Time) *KV {
	kv := NewKV(mt.Coll)
	kv.now = func() time.Time { return now }
	return kv
}

func slotDoc(key, value string, expires *time.Time) bson.D {
	doc := bson.D{
		{Key: "_id", Value: key},
		{Key: "value", Value: []byte(value)},
		{Key: "updated_at", Value: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	if expires != nil {
		doc = append(doc, bson.E{Key: "expires_at", Value: *expires})
	}
	return doc
}

func TestKVAgainstMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ns := "calufestas.slots"

	mt.Run("get returns stored bytes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotDoc("cart:s1", `[{"_id":"p1"}]`, nil)))

		got, err := newMockKV(mt, now).Get(context.Background(), "cart:s1")
		require.NoError(mt, err)
		assert.Equal(mt, `[{"_id":"p1"}]`, string(got))
	})

	mt.Run("get of a missing slot", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := newMockKV(mt, now).Get(context.Background(), "cart:nobody")
		assert.ErrorIs(mt, err, storage.ErrNotFound)
	})

	mt.Run("get skips a slot the ttl monitor has not removed yet", func(mt *mtest.T) {
		past := now.Add(-time.Second)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotDoc("produtos", `[]`, &past)))

		_, err := newMockKV(mt, now).Get(context.Background(), "produtos")
		assert.ErrorIs(mt, err, storage.ErrNotFound)
	})

	mt.Run("get keeps a slot that has not expired", func(mt *mtest.T) {
		later := now.Add(time.Minute)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, slotDoc("produtos", `[1]`, &later)))

		got, err := newMockKV(mt, now).Get(context.Background(), "produtos")
		require.NoError(mt, err)
		assert.Equal(mt, `[1]`, string(got))
	})

	mt.Run("get surfaces server errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad"}))

		_, err := newMockKV(mt, now).Get(context.Background(), "cart:s1")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, storage.ErrNotFound)
	})

	mt.Run("set upserts by key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "cart:s1"}}}},
		))

		require.NoError(mt, newMockKV(mt, now).Set(context.Background(), "cart:s1", []byte(`[]`), 0))
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
	})

	mt.Run("set reports write errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		assert.Error(mt, newMockKV(mt, now).Set(context.Background(), "cart:s1", []byte(`[]`), 0))
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, newMockKV(mt, now).Delete(context.Background(), "cart:s1"))
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "delete", evt.CommandName)
	})
}
