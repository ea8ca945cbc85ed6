package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 1024
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second

	deliveriesCollection = "invoice_deliveries"
)

// inserter is the subset of *mongo.Collection the writer needs.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoRecorder writes deliveries to MongoDB in the background.
// Records are dropped when the queue is full.
type MongoRecorder struct {
	col    inserter
	client *mongo.Client
	log    *slog.Logger
	queue  chan Delivery
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// NewMongoRecorder connects to uri and starts the drain loop.
func NewMongoRecorder(ctx context.Context, uri, db string, log *slog.Logger) (*MongoRecorder, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("audit: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit: mongo ping: %w", err)
	}

	col := client.Database(db).Collection(deliveriesCollection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	})

	r := newMongoRecorder(col, log)
	r.client = client
	return r, nil
}

func newMongoRecorder(col inserter, log *slog.Logger) *MongoRecorder {
	r := &MongoRecorder{
		col:   col,
		log:   log,
		queue: make(chan Delivery, mongoQueueSize),
		done:  make(chan struct{}),
	}
	r.wg.Add(1)
	go r.drainLoop()
	return r
}

// Record enqueues d without blocking.
func (r *MongoRecorder) Record(_ context.Context, d Delivery) {
	if d.At.IsZero() {
		d.At = time.Now().UTC()
	}
	select {
	case <-r.done:
		return
	default:
	}
	select {
	case r.queue <- d:
	default:
		r.log.Warn("audit: queue full, delivery record dropped", "order_id", d.OrderID, "email", d.Email)
	}
}

func (r *MongoRecorder) drainLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := r.col.InsertMany(ctx, batch); err != nil {
			r.log.Error("audit: insert deliveries", "error", err, "count", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case d := <-r.queue:
			batch = append(batch, d)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-r.done:
			for len(r.queue) > 0 {
				batch = append(batch, <-r.queue)
			}
			flush()
			return
		}
	}
}

// Close flushes pending records and disconnects. Safe to call twice.
func (r *MongoRecorder) Close() error {
	var err error
	r.closed.Do(func() {
		close(r.done)
		r.wg.Wait()
		if r.client != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = r.client.Disconnect(ctx)
		}
	})
	return err
}
