package mail

import (
	"context"
	"sync"
)

// Fake records messages in memory. FailFor makes sends to chosen
// recipients return an error.
type Fake struct {
	mu      sync.Mutex
	sent    []*Message
	FailFor map[string]error
}

func (f *Fake) Send(ctx context.Context, m *Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rcpt := range m.Recipients() {
		if err, ok := f.FailFor[rcpt]; ok {
			return err
		}
	}
	f.sent = append(f.sent, m)
	return nil
}

// Sent returns a copy of every delivered message.
func (f *Fake) Sent() []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Message, len(f.sent))
	copy(out, f.sent)
	return out
}

// SentTo returns the delivered messages addressed to rcpt.
func (f *Fake) SentTo(rcpt string) []*Message {
	var out []*Message
	for _, m := range f.Sent() {
		for _, r := range m.Recipients() {
			if r == rcpt {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
