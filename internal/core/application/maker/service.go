package maker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
	"github.com/thanhpk/randstr"
	"go.uber.org/ratelimit"

	"github.com/rfq-network/rfqd/internal/core/application/feed"
	"github.com/rfq-network/rfqd/internal/core/application/intent"
	"github.com/rfq-network/rfqd/internal/core/application/quote"
	"github.com/rfq-network/rfqd/internal/core/domain"
)

// Service is the market-making bot: it watches the event feed for newly
// revealed RFQs, prices the ones it can serve and plays the quote
// commit/reveal protocol against the engine. The reveal is deferred by a
// fixed window; the engine itself is delay-agnostic and only enforces
// ordering and expiry.
type Service struct {
	intentSvc *intent.Service
	quoteSvc  *quote.Service
	feedSvc   *feed.Service
	pricing   *PricingEngine

	account      string
	revealDelay  time.Duration
	pollInterval time.Duration
	maxPosition  *uint256.Int
	supported    map[string]struct{}

	cursor  uint64
	limiter ratelimit.Limiter

	lock         sync.Mutex
	activeQuotes map[uint64]pendingQuote
}

type pendingQuote struct {
	quoteOut *uint256.Int
	salt     domain.Salt
}

// Options groups the maker bot configuration.
type Options struct {
	Account      string
	RevealDelay  time.Duration
	PollInterval time.Duration
	SpreadBps    uint64
	MaxPosition  *uint256.Int
	// SupportedPairs lists the "tokenIn/tokenOut" pairs the maker serves.
	SupportedPairs []string
	// Cursor is the last processed event sequence, letting the bot resume
	// after a restart without replaying the whole log.
	Cursor uint64
}

func NewService(
	intentSvc *intent.Service, quoteSvc *quote.Service, feedSvc *feed.Service,
	pricing *PricingEngine, opts Options,
) (*Service, error) {
	if intentSvc == nil || quoteSvc == nil || feedSvc == nil {
		return nil, fmt.Errorf("missing engine services")
	}
	if pricing == nil {
		return nil, fmt.Errorf("missing pricing engine")
	}
	if opts.Account == "" {
		return nil, fmt.Errorf("missing maker account")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}

	supported := make(map[string]struct{})
	for _, pair := range opts.SupportedPairs {
		supported[pair] = struct{}{}
	}

	return &Service{
		intentSvc:    intentSvc,
		quoteSvc:     quoteSvc,
		feedSvc:      feedSvc,
		pricing:      pricing,
		account:      opts.Account,
		revealDelay:  opts.RevealDelay,
		pollInterval: opts.PollInterval,
		maxPosition:  opts.MaxPosition,
		supported:    supported,
		cursor:       opts.Cursor,
		limiter:      ratelimit.New(1, ratelimit.Per(opts.PollInterval)),
		activeQuotes: make(map[uint64]pendingQuote),
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
	log.Infof("maker: watching for revealed RFQs as %s", s.account)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		s.limiter.Take()

		if err := s.pollOnce(ctx); err != nil {
			log.WithError(err).Warn("maker: failed to poll event feed")
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
		if event, ok := entry.Event.(domain.RFQRevealedEvent); ok {
			s.processRFQ(ctx, event)
		}
	}

	s.lock.Lock()
	s.cursor = next
	s.lock.Unlock()
	return nil
}

func (s *Service) processRFQ(ctx context.Context, event domain.RFQRevealedEvent) {
	rfq, err := s.intentSvc.GetRFQ(ctx, event.Id)
	if err != nil {
		log.WithError(err).Warnf("maker: failed to fetch RFQ %d", event.Id)
		return
	}

	if !s.shouldQuote(rfq) {
		log.Debugf("maker: skipping RFQ %d, not supported or not profitable", rfq.Id)
		return
	}

	quoteOut, err := s.pricing.QuoteOut(rfq.TokenIn, rfq.TokenOut, rfq.AmountIn)
	if err != nil {
		log.WithError(err).Debugf("maker: cannot price RFQ %d", rfq.Id)
		return
	}

	if err := s.submitQuote(ctx, rfq.Id, quoteOut); err != nil {
		log.WithError(err).Warnf("maker: failed to quote RFQ %d", rfq.Id)
	}
}

func (s *Service) shouldQuote(rfq *domain.RFQ) bool {
	if !rfq.IsRevealed() || rfq.IsExpired() {
		return false
	}
	if _, ok := s.supported[pairKey(rfq.TokenIn, rfq.TokenOut)]; !ok {
		return false
	}
	if s.maxPosition != nil && rfq.AmountIn.Gt(s.maxPosition) {
		return false
	}
	s.lock.Lock()
	_, alreadyQuoting := s.activeQuotes[rfq.Id]
	s.lock.Unlock()
	return !alreadyQuoting
}

// submitQuote commits a sealed quote with a random salt and schedules its
// reveal after the configured delay.
func (s *Service) submitQuote(
	ctx context.Context, rfqID uint64, quoteOut *uint256.Int,
) error {
	salt := domain.SaltFromBytes(randstr.Bytes(32))
	commitment := domain.QuoteCommitment(quoteOut, salt)

	index, err := s.quoteSvc.CommitQuote(ctx, rfqID, s.account, commitment)
	if err != nil {
		return err
	}

	s.lock.Lock()
	s.activeQuotes[rfqID] = pendingQuote{quoteOut: quoteOut, salt: salt}
	s.lock.Unlock()

	log.Infof("maker: committed quote %d for RFQ %d", index, rfqID)

	time.AfterFunc(s.revealDelay, func() {
		s.reveal(rfqID)
	})
	return nil
}

func (s *Service) reveal(rfqID uint64) {
	s.lock.Lock()
	pending, ok := s.activeQuotes[rfqID]
	delete(s.activeQuotes, rfqID)
	s.lock.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.quoteSvc.RevealQuote(
		ctx, rfqID, s.account, pending.quoteOut, pending.salt,
	); err != nil {
		log.WithError(err).Warnf("maker: failed to reveal quote for RFQ %d", rfqID)
		return
	}
	log.Infof("maker: revealed quote for RFQ %d", rfqID)
}
