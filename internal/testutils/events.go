package testutils

import (
	"context"
	"sync"

	"github.com/nfrund/quay/internal/pubsub"
)

// EventRecorder is a pubsub.Publisher that keeps every published message.
type EventRecorder struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

var _ pubsub.Publisher = (*EventRecorder)(nil)

func (r *EventRecorder) Publish(_ context.Context, msg pubsub.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *EventRecorder) Close() error { return nil }

// Messages returns the messages published so far.
func (r *EventRecorder) Messages() []pubsub.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pubsub.Message(nil), r.messages...)
}

// Topics returns the topics of the messages published so far, in order.
func (r *EventRecorder) Topics() []string {
	var out []string
	for _, msg := range r.Messages() {
		out = append(out, msg.Topic)
	}
	return out
}
