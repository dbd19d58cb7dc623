package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
)

// Event[T] names a topic whose payload is a JSON encoded T.
type Event[T any] struct {
	topicName string
}

// NewEvent creates a typed event for the topic.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{topicName: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", event.Name(), err)
	}
	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		UserID:  userID,
		Payload: data,
	})
}

// Decode reads the payload of a message published for event.
func Decode[T any](event Event[T], msg Message) (T, error) {
	var out T
	if msg.Topic != event.Name() {
		return out, fmt.Errorf("message topic %q is not %q", msg.Topic, event.Name())
	}
	if err := json.Unmarshal(msg.Payload, &out); err != nil {
		return out, fmt.Errorf("decoding %s: %w", event.Name(), err)
	}
	return out, nil
}
