package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nfrund/quay/internal/pubsub"
)

// Topics lists every audit topic.
func Topics() []string {
	return []string{
		MigrationsAppliedEvent.Name(),
		StaticCollectedEvent.Name(),
		UserLoggedInEvent.Name(),
		UserLoggedOutEvent.Name(),
		LoginFailedEvent.Name(),
		ProfileUpdatedEvent.Name(),
	}
}

// Subscribe writes one "audit" log line per event on every audit topic until
// ctx is cancelled or the bus closes.
func Subscribe(ctx context.Context, sub pubsub.Subscriber, logger *slog.Logger) error {
	handler := logHandler(logger)
	for _, topic := range Topics() {
		if err := sub.Subscribe(ctx, topic, handler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
	}
	return nil
}

func logHandler(logger *slog.Logger) pubsub.Handler {
	return func(ctx context.Context, msg pubsub.Message) error {
		var fields map[string]any
		if err := json.Unmarshal(msg.Payload, &fields); err != nil {
			return fmt.Errorf("decoding %s: %w", msg.Topic, err)
		}

		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		args := []any{"event", msg.Topic}
		if msg.UserID != "" {
			args = append(args, "user_id", msg.UserID)
		}
		for _, k := range keys {
			args = append(args, k, fields[k])
		}
		logger.InfoContext(ctx, "audit", args...)
		return nil
	}
}
