package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

const eventSeqSequence = "event_seq"

type eventRepositoryImpl struct {
	db *DbManager
}

func newEventRepositoryImpl(db *DbManager) domain.EventRepository {
	return eventRepositoryImpl{db}
}

func (r eventRepositoryImpl) AppendEvents(
	ctx context.Context, timestamp int64, events ...domain.Event,
) error {
	for _, event := range events {
		record, err := domain.NewEventRecord(event, timestamp)
		if err != nil {
			return err
		}

		record.Seq, err = r.db.nextInSequence(ctx, eventSeqSequence)
		if err != nil {
			return err
		}

		if tx, ok := r.db.tx(ctx); ok {
			err = r.db.store.TxInsert(tx, record.Seq, record)
		} else {
			err = r.db.store.Insert(record.Seq, record)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r eventRepositoryImpl) ListEventsAfter(
	ctx context.Context, cursor uint64, limit int,
) ([]*domain.EventRecord, error) {
	query := badgerhold.Where("Seq").Gt(cursor).SortBy("Seq").Limit(limit)

	var records []domain.EventRecord
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxFind(tx, &records, query)
	} else {
		err = r.db.store.Find(&records, query)
	}
	if err != nil {
		return nil, err
	}

	list := make([]*domain.EventRecord, 0, len(records))
	for i := range records {
		list = append(list, &records[i])
	}
	return list, nil
}
