package relayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"

	"github.com/rfq-network/rfqd/internal/core/application/feed"
	"github.com/rfq-network/rfqd/internal/core/application/intent"
	"github.com/rfq-network/rfqd/internal/core/application/quote"
	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

// Service is the selection driver: it watches the event feed for revealed
// quotes and, after a quiet window, obtains a fresh oracle snapshot and a
// secure randomness draw before invoking the selection call. It never holds
// any engine-side lock while fetching; duplicate or concurrent attempts are
// made safe by the engine's own guards.
type Service struct {
	intentSvc   *intent.Service
	quoteSvc    *quote.Service
	feedSvc     *feed.Service
	priceSource ports.PriceSource
	randSource  ports.RandSource

	selectionDelay time.Duration
	pollInterval   time.Duration

	cursor  uint64
	limiter ratelimit.Limiter

	lock      sync.Mutex
	scheduled map[uint64]struct{}
}

// Options groups the selection driver configuration.
type Options struct {
	SelectionDelay time.Duration
	PollInterval   time.Duration
	// Cursor is the last processed event sequence, letting the driver resume
	// after a restart without replaying the whole log.
	Cursor uint64
}

func NewService(
	intentSvc *intent.Service, quoteSvc *quote.Service, feedSvc *feed.Service,
	priceSource ports.PriceSource, randSource ports.RandSource, opts Options,
) (*Service, error) {
	if intentSvc == nil || quoteSvc == nil || feedSvc == nil {
		return nil, fmt.Errorf("missing engine services")
	}
	if priceSource == nil {
		return nil, fmt.Errorf("missing price source")
	}
	if randSource == nil {
		return nil, fmt.Errorf("missing randomness source")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}

	return &Service{
		intentSvc:      intentSvc,
		quoteSvc:       quoteSvc,
		feedSvc:        feedSvc,
		priceSource:    priceSource,
		randSource:     randSource,
		selectionDelay: opts.SelectionDelay,
		pollInterval:   opts.PollInterval,
		cursor:         opts.Cursor,
		limiter:        ratelimit.New(1, ratelimit.Per(opts.PollInterval)),
		scheduled:      make(map[uint64]struct{}),
	}, nil
}

// Cursor returns the last processed event sequence, to be persisted by the
// caller across restarts.
func (s *Service) Cursor() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.cursor
}

// Start polls the event feed until the context is done.
func (s *Service) Start(ctx context.Context) error {
	log.Info("relayer: watching for revealed quotes")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.limiter.Take()

		if err := s.pollOnce(ctx); err != nil {
			log.WithError(err).Warn("relayer: failed to poll event feed")
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) error {
	s.lock.Lock()
	cursor := s.cursor
	s.lock.Unlock()

	entries, next, err := s.feedSvc.Pull(ctx, cursor)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if event, ok := entry.Event.(domain.QuoteRevealedEvent); ok {
			s.scheduleSelection(event.RFQId)
		}
	}

	s.lock.Lock()
	s.cursor = next
	s.lock.Unlock()
	return nil
}

// scheduleSelection defers the selection attempt by the quiet window so that
// slower makers get their reveals in. One timer per RFQ is enough: the draw
// covers every quote revealed by the time it fires.
func (s *Service) scheduleSelection(rfqID uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.scheduled[rfqID]; ok {
		return
	}
	s.scheduled[rfqID] = struct{}{}

	time.AfterFunc(s.selectionDelay, func() {
		s.runSelection(rfqID)
	})
}

// SelectNow performs the oracle snapshot, the randomness draw and the
// selection call for an RFQ.
func (s *Service) SelectNow(ctx context.Context, rfqID uint64) (*domain.Selection, error) {
	rfq, err := s.intentSvc.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.priceSource.TakeSnapshot(ctx, rfq.TokenIn, rfq.TokenOut)
	if err != nil {
		return nil, fmt.Errorf("taking oracle snapshot: %w", err)
	}
	// The snapshot carries a unit rate; the deviation filter compares output
	// amounts, so the reference is the rate applied to the RFQ's amountIn.
	snapshot.Price = referenceOut(rfq.AmountIn, snapshot.Price, snapshot.Decimals)

	draw, err := s.randSource.Draw(ctx)
	if err != nil {
		return nil, fmt.Errorf("drawing randomness: %w", err)
	}
	if !draw.IsSecure {
		return nil, domain.ErrInsecureRandomness
	}

	return s.quoteSvc.SelectBest(ctx, rfqID, draw, snapshot)
}

func (s *Service) runSelection(rfqID uint64) {
	defer func() {
		s.lock.Lock()
		delete(s.scheduled, rfqID)
		s.lock.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	selection, err := s.SelectNow(ctx, rfqID)
	if err != nil {
		switch err {
		case domain.ErrAlreadySelected:
			log.Debugf("relayer: RFQ %d already has a winner", rfqID)
		case domain.ErrNoValidQuotes:
			log.Warnf("relayer: no valid quotes for RFQ %d", rfqID)
		default:
			log.WithError(err).Warnf("relayer: selection failed for RFQ %d", rfqID)
		}
		return
	}

	log.Infof(
		"relayer: winner selected for RFQ %d (maker %s, quoteOut %s, index %d)",
		rfqID, selection.Maker, selection.QuoteOut, selection.WinnerIndex,
	)
}

// referenceOut scales a unit rate with the given decimals to the output
// amount implied for amountIn: amountIn · rate / 10^decimals.
func referenceOut(amountIn, rate *uint256.Int, decimals uint32) *uint256.Int {
	scale := new(uint256.Int).Exp(
		uint256.NewInt(10), uint256.NewInt(uint64(decimals)),
	)
	out := new(uint256.Int).Mul(amountIn, rate)
	return out.Div(out, scale)
}
