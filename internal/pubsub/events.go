// Package pubsub provides a generic publish/subscribe broker used to fan out
// events from the log, watcher and external runner subsystems to the UI.
package pubsub

import (
	"context"
	"time"
)

// EventType names the kind of event being published.
type EventType string

const (
	LoggedEvent  EventType = "logged"  // A log entry was written
	ChangedEvent EventType = "changed" // Something on disk changed
	OutputEvent  EventType = "output"  // An external process produced output
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
