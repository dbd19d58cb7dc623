package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nfrund/quay/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// syncBuffer lets the subscriber goroutine and the test share the log output.
type syncBuffer struct {
	ch chan []byte
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.ch <- bytes.Clone(p)
	return len(p), nil
}

func TestSubscribeLogsEvents(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	defer bus.Close()

	out := &syncBuffer{ch: make(chan []byte, 8)}
	logger := slog.New(slog.NewJSONHandler(out, nil))
	require.NoError(t, Subscribe(context.Background(), bus, logger))

	Emit(context.Background(), bus, MigrationsAppliedEvent, "", MigrationsApplied{Applied: 2, App: "users", Name: "0002_user_last_login"})
	Emit(context.Background(), bus, UserLoggedInEvent, "01HZX", SessionEvent{RemoteIP: "192.0.2.1"})

	entries := map[string]map[string]any{}
	for len(entries) < 2 {
		select {
		case line := <-out.ch:
			var entry map[string]any
			require.NoError(t, json.Unmarshal(line, &entry))
			entries[entry["event"].(string)] = entry
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for audit log lines")
		}
	}

	migrated := entries["deploy.migrations_applied"]
	assert.Equal(t, "audit", migrated["msg"])
	assert.Equal(t, float64(2), migrated["applied"])
	assert.Equal(t, "0002_user_last_login", migrated["name"])
	assert.NotContains(t, migrated, "user_id")

	login := entries["accounts.user_logged_in"]
	assert.Equal(t, "01HZX", login["user_id"])
	assert.Equal(t, "192.0.2.1", login["remote_ip"])
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, pubsub.Message) error { return errors.New("bus down") }
func (failingPublisher) Close() error                                  { return nil }

func TestEmitSwallowsPublishErrors(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), failingPublisher{}, ProfileUpdatedEvent, "id", ProfileUpdated{Field: "name"})
	})
}

func TestLogHandlerRejectsBadPayload(t *testing.T) {
	err := logHandler(slog.Default())(context.Background(), pubsub.Message{Topic: "x", Payload: []byte("nope")})
	assert.Error(t, err)
}
