package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/groupcart/pkg/logger"
)

type fakeCollection struct {
	mu   sync.Mutex
	docs []interface{}
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, docs...)
	return &mongo.InsertManyResult{}, nil
}

func (f *fakeCollection) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func TestMongoRecorderFlushesOnClose(t *testing.T) {
	col := &fakeCollection{}
	r := newMongoRecorder(col, logger.Discard())

	for i := 0; i < 3; i++ {
		r.Record(context.Background(), Delivery{OrderID: "o1", Email: "a@example.com", Success: true})
	}
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.Equal(t, 3, col.count())
	d := col.docs[0].(Delivery)
	assert.False(t, d.At.IsZero())
}

func TestMongoRecorderIgnoresRecordsAfterClose(t *testing.T) {
	col := &fakeCollection{}
	r := newMongoRecorder(col, logger.Discard())
	require.NoError(t, r.Close())

	r.Record(context.Background(), Delivery{OrderID: "late"})
	assert.Equal(t, 0, col.count())
}

func TestMemoryRecorder(t *testing.T) {
	m := &Memory{}
	m.Record(context.Background(), Delivery{Email: "a@example.com"})
	m.Record(context.Background(), Delivery{Email: "b@example.com", Success: true})

	got := m.Records()
	require.Len(t, got, 2)
	assert.Equal(t, "b@example.com", got[1].Email)
}
