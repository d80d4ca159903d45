package domain

import "context"

// EventRepository is the abstraction for the append-only engine event log.
type EventRepository interface {
	// AppendEvents serializes and stores the events, assigning each a
	// monotonic sequence number.
	AppendEvents(ctx context.Context, timestamp int64, events ...Event) error
	// ListEventsAfter returns up to limit records with sequence strictly
	// greater than the cursor, in sequence order.
	ListEventsAfter(ctx context.Context, cursor uint64, limit int) ([]*EventRecord, error)
}
