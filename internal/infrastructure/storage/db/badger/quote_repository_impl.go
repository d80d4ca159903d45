package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

// quoteBook is the persisted per-RFQ quote sequence. Keeping the whole
// ordered sequence in one record preserves commit order and lets a reveal
// update happen as a single write.
type quoteBook struct {
	RFQId  uint64 `badgerhold:"key"`
	Quotes []*domain.Quote
}

type quoteRepositoryImpl struct {
	db *DbManager
}

func newQuoteRepositoryImpl(db *DbManager) domain.QuoteRepository {
	return quoteRepositoryImpl{db}
}

func (r quoteRepositoryImpl) AddQuote(
	ctx context.Context, quote *domain.Quote,
) (int, error) {
	book, err := r.getBook(ctx, quote.RFQId)
	if err != nil {
		return -1, err
	}

	quote.Index = len(book.Quotes)
	book.Quotes = append(book.Quotes, quote)

	if err := r.upsertBook(ctx, book); err != nil {
		return -1, err
	}
	return quote.Index, nil
}

func (r quoteRepositoryImpl) GetQuotesForRFQ(
	ctx context.Context, rfqID uint64,
) ([]*domain.Quote, error) {
	book, err := r.getBook(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	return book.Quotes, nil
}

func (r quoteRepositoryImpl) UpdateQuotes(
	ctx context.Context, rfqID uint64,
	updateFn func(quotes []*domain.Quote) ([]*domain.Quote, error),
) error {
	book, err := r.getBook(ctx, rfqID)
	if err != nil {
		return err
	}

	updated, err := updateFn(book.Quotes)
	if err != nil {
		return err
	}

	book.Quotes = updated
	return r.upsertBook(ctx, book)
}

func (r quoteRepositoryImpl) AddSelection(
	ctx context.Context, selection *domain.Selection,
) error {
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxInsert(tx, selection.RFQId, selection)
	} else {
		err = r.db.store.Insert(selection.RFQId, selection)
	}
	if err == badgerhold.ErrKeyExists {
		return domain.ErrAlreadySelected
	}
	return err
}

func (r quoteRepositoryImpl) GetSelection(
	ctx context.Context, rfqID uint64,
) (*domain.Selection, error) {
	var selection domain.Selection
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxGet(tx, rfqID, &selection)
	} else {
		err = r.db.store.Get(rfqID, &selection)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrNoSelectionMade
		}
		return nil, err
	}
	return &selection, nil
}

func (r quoteRepositoryImpl) getBook(
	ctx context.Context, rfqID uint64,
) (*quoteBook, error) {
	var book quoteBook
	var err error
	if tx, ok := r.db.tx(ctx); ok {
		err = r.db.store.TxGet(tx, rfqID, &book)
	} else {
		err = r.db.store.Get(rfqID, &book)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return &quoteBook{RFQId: rfqID}, nil
		}
		return nil, err
	}
	return &book, nil
}

func (r quoteRepositoryImpl) upsertBook(ctx context.Context, book *quoteBook) error {
	if tx, ok := r.db.tx(ctx); ok {
		return r.db.store.TxUpsert(tx, book.RFQId, book)
	}
	return r.db.store.Upsert(book.RFQId, book)
}
