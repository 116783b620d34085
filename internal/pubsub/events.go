// Package pubsub provides a generic publish/subscribe event system.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// RecordChange is the payload published when a form successfully creates,
// updates or deletes a record. Record is nil for deletions.
type RecordChange struct {
	Collection string
	ID         string
	Record     map[string]any
}

// ForCollections matches record changes in any of the named collections.
func ForCollections(names ...string) Match[RecordChange] {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(e Event[RecordChange]) bool { return set[e.Payload.Collection] }
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
