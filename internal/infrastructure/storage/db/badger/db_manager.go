package dbbadger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

type ctxKey int

const txKey ctxKey = 0

// DbManager is the badger-backed implementation of the ledger storage. All
// repositories share a single badgerhold store so that one transaction can
// span RFQs, quotes, balances and the event log.
type DbManager struct {
	store *badgerhold.Store

	rfqRepository        domain.RFQRepository
	quoteRepository      domain.QuoteRepository
	settlementRepository domain.SettlementRepository
	eventRepository      domain.EventRepository
}

// NewDbManager opens (or creates if not existing) the badger store on disk.
// It expects a base data dir and an optional logger.
func NewDbManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	store, err := createDb(baseDbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	manager := &DbManager{store: store}
	manager.rfqRepository = newRFQRepositoryImpl(manager)
	manager.quoteRepository = newQuoteRepositoryImpl(manager)
	manager.settlementRepository = newSettlementRepositoryImpl(manager)
	manager.eventRepository = newEventRepositoryImpl(manager)
	return manager, nil
}

func (d *DbManager) RFQRepository() domain.RFQRepository {
	return d.rfqRepository
}

func (d *DbManager) QuoteRepository() domain.QuoteRepository {
	return d.quoteRepository
}

func (d *DbManager) SettlementRepository() domain.SettlementRepository {
	return d.settlementRepository
}

func (d *DbManager) EventRepository() domain.EventRepository {
	return d.eventRepository
}

// RunTransaction runs the handler within a single badger transaction carried
// through the context. A handler error discards the transaction, so no
// partial mutation ever reaches the store.
func (d *DbManager) RunTransaction(
	ctx context.Context, readOnly bool, handler func(ctx context.Context) error,
) error {
	tx := d.store.Badger().NewTransaction(!readOnly)
	defer tx.Discard()

	if err := handler(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	if readOnly {
		return nil
	}
	return tx.Commit()
}

func (d *DbManager) Close() {
	d.store.Close()
}

// tx returns the transaction carried by the context, if any.
func (d *DbManager) tx(ctx context.Context) (*badger.Txn, bool) {
	tx, ok := ctx.Value(txKey).(*badger.Txn)
	return tx, ok
}

// counter is the persisted sequence state for id and event-seq assignment.
type counter struct {
	Name string `badgerhold:"key"`
	Next uint64
}

func (d *DbManager) nextInSequence(ctx context.Context, name string) (uint64, error) {
	assign := func(tx *badger.Txn) (uint64, error) {
		var c counter
		if err := d.store.TxGet(tx, name, &c); err != nil {
			if err != badgerhold.ErrNotFound {
				return 0, err
			}
			c = counter{Name: name, Next: 1}
		}
		next := c.Next
		c.Next++
		if err := d.store.TxUpsert(tx, name, &c); err != nil {
			return 0, err
		}
		return next, nil
	}

	if tx, ok := d.tx(ctx); ok {
		return assign(tx)
	}

	var next uint64
	err := d.store.Badger().Update(func(tx *badger.Txn) error {
		var err error
		next, err = assign(tx)
		return err
	})
	return next, err
}

// JSONEncode is a custom JSON based encoder for badger.
func JSONEncode(value interface{}) ([]byte, error) {
	var buff bytes.Buffer
	if err := json.NewEncoder(&buff).Encode(value); err != nil {
		return nil, err
	}
	return buff.Bytes(), nil
}

// JSONDecode is a custom JSON based decoder for badger.
func JSONDecode(data []byte, value interface{}) error {
	return json.NewDecoder(bytes.NewBuffer(data)).Decode(value)
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          JSONEncode,
		Decoder:          JSONDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
