// Package events publishes audit events for authentication and workshop changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the service.
const (
	SubjectPrefix = "workshop"

	LoginSucceeded  = "auth.login"
	LoginFailed     = "auth.login_failed"
	LoginThrottled  = "auth.login_throttled"
	UserRegistered  = "auth.register"
	PasswordChanged = "auth.password_changed"
	UserLoggedOut   = "auth.logout"

	WorkshopCreated = "workshops.created"
	WorkshopUpdated = "workshops.updated"
	WorkshopDeleted = "workshops.deleted"
)

// Event is a single audit record.
type Event struct {
	Type       string            `json:"type"`
	ActorID    string            `json:"actor_id,omitempty"`
	Target     string            `json:"target,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Publisher delivers audit events. Publishing never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close()
}

// NATSPublisher sends events to NATS subjects under SubjectPrefix.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewNATSPublisher connects to url and returns a publisher using that connection.
func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(
		url,
		nats.Name("workshop-planner"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

// Subject returns the full NATS subject for an event type.
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

func (p *NATSPublisher) Publish(_ context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode audit event", "type", event.Type, "error", err)
		return
	}
	if err := p.conn.Publish(Subject(event.Type), data); err != nil {
		p.logger.Warn("Failed to publish audit event", "type", event.Type, "error", err)
	}
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that discards events.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) {}

func (noopPublisher) Close() {}
