package inmemory

import (
	"context"
	"sync"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

type eventInmemoryStore struct {
	locker  sync.Mutex
	records []*domain.EventRecord
	nextSeq uint64
}

type eventRepositoryImpl struct {
	store *eventInmemoryStore
}

// NewEventRepositoryImpl returns a new inmemory EventRepository implementation.
func NewEventRepositoryImpl() domain.EventRepository {
	return &eventRepositoryImpl{
		store: &eventInmemoryStore{nextSeq: 1},
	}
}

func (r *eventRepositoryImpl) AppendEvents(
	_ context.Context, timestamp int64, events ...domain.Event,
) error {
	records := make([]*domain.EventRecord, 0, len(events))
	for _, event := range events {
		record, err := domain.NewEventRecord(event, timestamp)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	for _, record := range records {
		record.Seq = r.store.nextSeq
		r.store.nextSeq++
		r.store.records = append(r.store.records, record)
	}
	return nil
}

func (r *eventRepositoryImpl) ListEventsAfter(
	_ context.Context, cursor uint64, limit int,
) ([]*domain.EventRecord, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	records := make([]*domain.EventRecord, 0, limit)
	for _, record := range r.store.records {
		if record.Seq <= cursor {
			continue
		}
		copied := *record
		records = append(records, &copied)
		if len(records) >= limit {
			break
		}
	}
	return records, nil
}
