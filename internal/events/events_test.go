package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTestServer(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "workshop.auth.login", Subject(LoginSucceeded))
	assert.Equal(t, "workshop.workshops.deleted", Subject(WorkshopDeleted))
}

func TestNATSPublisher_Publish(t *testing.T) {
	ns := runTestServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("workshop.>", received)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	publisher, err := NewNATSPublisher(ns.ClientURL(), discardLogger())
	require.NoError(t, err)
	defer publisher.Close()

	publisher.Publish(context.Background(), Event{
		Type:       WorkshopCreated,
		ActorID:    "u1",
		Target:     "w1",
		Attributes: map[string]string{"subject": "Dev"},
	})

	select {
	case msg := <-received:
		assert.Equal(t, "workshop.workshops.created", msg.Subject)

		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, "u1", got.ActorID)
		assert.Equal(t, "w1", got.Target)
		assert.Equal(t, "Dev", got.Attributes["subject"])
		assert.False(t, got.OccurredAt.IsZero(), "OccurredAt should be filled in")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1", discardLogger())
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher()
	p.Publish(context.Background(), Event{Type: LoginSucceeded})
	p.Close()
}
