// Package audit records invoice delivery attempts.
//
// Every send attempt made by the invoice dispatcher produces one Delivery.
// In production the records go to MongoDB through an asynchronous batching
// writer so the dispatch path never waits on the audit store; without a
// configured URI the Nop recorder is used.
package audit

import (
	"context"
	"sync"
	"time"
)

// Delivery is one invoice send attempt.
type Delivery struct {
	OrderID   string    `bson:"order_id"   json:"orderId"`
	GroupID   string    `bson:"group_id"   json:"groupId"`
	Email     string    `bson:"email"      json:"email"`
	Success   bool      `bson:"success"    json:"success"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	RequestID string    `bson:"request_id,omitempty" json:"requestId,omitempty"`
	At        time.Time `bson:"at"         json:"at"`
}

// Recorder accepts delivery records. Record must not block on I/O.
type Recorder interface {
	Record(ctx context.Context, d Delivery)
	Close() error
}

// Nop discards every record.
type Nop struct{}

func (Nop) Record(context.Context, Delivery) {}
func (Nop) Close() error                     { return nil }

// Memory keeps records in a slice. Used by tests and the CLI dry runs.
type Memory struct {
	mu      sync.Mutex
	records []Delivery
}

func (m *Memory) Record(_ context.Context, d Delivery) {
	m.mu.Lock()
	m.records = append(m.records, d)
	m.mu.Unlock()
}

func (m *Memory) Close() error { return nil }

// Records returns a copy of everything recorded so far.
func (m *Memory) Records() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, len(m.records))
	copy(out, m.records)
	return out
}
