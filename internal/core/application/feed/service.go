package feed

import (
	"context"
	"fmt"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

// DefaultBatchSize bounds how many records a single pull returns.
const DefaultBatchSize = 100

// Service exposes the engine event log as a pull-based iterator. Consumers
// hold their own cursor (the last processed sequence number) and resume from
// it after a restart; the engine itself offers no push or subscribe primitive.
type Service struct {
	repoManager ports.RepoManager
	batchSize   int
}

func NewService(repoManager ports.RepoManager) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	return &Service{repoManager, DefaultBatchSize}, nil
}

// Entry couples a decoded event with the sequence number to resume from.
type Entry struct {
	Seq       uint64
	Timestamp int64
	Event     domain.Event
}

// Pull returns the next batch of events with sequence strictly greater than
// the cursor, together with the new cursor value. An unchanged cursor means
// the log has no newer entries.
func (s *Service) Pull(ctx context.Context, cursor uint64) ([]Entry, uint64, error) {
	records, err := s.repoManager.EventRepository().ListEventsAfter(
		ctx, cursor, s.batchSize,
	)
	if err != nil {
		return nil, cursor, err
	}

	entries := make([]Entry, 0, len(records))
	next := cursor
	for _, record := range records {
		event, err := domain.DecodeEvent(record)
		if err != nil {
			return nil, cursor, err
		}
		entries = append(entries, Entry{
			Seq:       record.Seq,
			Timestamp: record.Timestamp,
			Event:     event,
		})
		if record.Seq > next {
			next = record.Seq
		}
	}
	return entries, next, nil
}
