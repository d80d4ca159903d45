package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"

	"github.com/rfq-network/rfqd/internal/core/application/pubsub"
	"github.com/rfq-network/rfqd/internal/core/domain"
	"github.com/rfq-network/rfqd/internal/core/ports"
)

// Service owns the quote ledger: sealed maker quotes and the winner-selection
// decision for each RFQ. It depends on the intent ledger for validity windows
// but never mutates it.
type Service struct {
	repoManager     ports.RepoManager
	pubsubSvc       *pubsub.Service
	maxDeviationBps uint64
}

func NewService(
	repoManager ports.RepoManager, pubsubSvc *pubsub.Service,
	maxDeviationBps uint64,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if maxDeviationBps == 0 || maxDeviationBps > domain.MaxSlippageBps {
		return nil, fmt.Errorf(
			"max deviation must be in range (0, %d] bps", domain.MaxSlippageBps,
		)
	}
	return &Service{repoManager, pubsubSvc, maxDeviationBps}, nil
}

// CommitQuote appends a sealed quote to the RFQ's sequence and returns its
// index. The referenced RFQ must be revealed and not expired.
func (s *Service) CommitQuote(
	ctx context.Context, rfqID uint64, maker string, commitment domain.Commitment,
) (int, error) {
	quote, err := domain.NewQuote(rfqID, maker, commitment)
	if err != nil {
		return -1, err
	}

	var event domain.QuoteCommittedEvent
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			rfq, err := s.repoManager.RFQRepository().GetRFQ(ctx, rfqID)
			if err != nil {
				return err
			}
			if !rfq.IsRevealed() {
				return domain.ErrRFQNotRevealed
			}
			if rfq.IsExpired() {
				return domain.ErrRFQExpired
			}

			index, err := s.repoManager.QuoteRepository().AddQuote(ctx, quote)
			if err != nil {
				return err
			}
			event = domain.QuoteCommittedEvent{
				RFQId:      rfqID,
				Maker:      maker,
				Commitment: commitment.String(),
				Index:      index,
			}
			return s.repoManager.EventRepository().AppendEvents(
				ctx, time.Now().Unix(), event,
			)
		},
	); err != nil {
		return -1, err
	}

	s.pubsubSvc.PublishEvent(event)

	log.Debugf("quote: commitment %d stored for RFQ %d", event.Index, rfqID)
	return event.Index, nil
}

// RevealQuote discloses a maker's quote by matching the preimage against any
// of the caller's own unrevealed commitments for the RFQ.
func (s *Service) RevealQuote(
	ctx context.Context, rfqID uint64, maker string,
	quoteOut *uint256.Int, salt domain.Salt,
) error {
	event := domain.QuoteRevealedEvent{
		RFQId:    rfqID,
		Maker:    maker,
		QuoteOut: quoteOut.Clone(),
	}
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			if err := s.repoManager.QuoteRepository().UpdateQuotes(
				ctx, rfqID, func(quotes []*domain.Quote) ([]*domain.Quote, error) {
					if _, err := domain.RevealQuote(quotes, maker, quoteOut, salt); err != nil {
						return nil, err
					}
					return quotes, nil
				},
			); err != nil {
				return err
			}
			return s.repoManager.EventRepository().AppendEvents(
				ctx, time.Now().Unix(), event,
			)
		},
	); err != nil {
		return err
	}

	s.pubsubSvc.PublishEvent(event)

	log.Debugf("quote: revealed for RFQ %d by %s", rfqID, maker)
	return nil
}

// SelectBest runs the oracle-deviation filter and the verifiable-random draw
// over the RFQ's revealed quotes and stores the write-once selection. The
// snapshot and draw are consumed as given; concurrent or duplicate attempts
// are made safe by the AlreadySelected guard, not by any caller-side lock.
func (s *Service) SelectBest(
	ctx context.Context, rfqID uint64,
	rng domain.RandomDraw, snapshot domain.PriceSnapshot,
) (*domain.Selection, error) {
	var (
		selection *domain.Selection
		event     domain.BestQuoteSelectedEvent
	)
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			if _, err := s.repoManager.RFQRepository().GetRFQ(ctx, rfqID); err != nil {
				return err
			}
			if _, err := s.repoManager.QuoteRepository().GetSelection(
				ctx, rfqID,
			); err == nil {
				return domain.ErrAlreadySelected
			} else if err != domain.ErrNoSelectionMade {
				return err
			}

			quotes, err := s.repoManager.QuoteRepository().GetQuotesForRFQ(ctx, rfqID)
			if err != nil {
				return err
			}

			selection, err = domain.SelectWinner(
				rfqID, quotes, rng, snapshot, s.maxDeviationBps,
			)
			if err != nil {
				return err
			}

			if err := s.repoManager.QuoteRepository().AddSelection(
				ctx, selection,
			); err != nil {
				return err
			}
			event = domain.BestQuoteSelectedEvent{
				RFQId:       rfqID,
				Maker:       selection.Maker,
				QuoteOut:    selection.QuoteOut.Clone(),
				WinnerIndex: selection.WinnerIndex,
			}
			return s.repoManager.EventRepository().AppendEvents(
				ctx, time.Now().Unix(), event,
			)
		},
	); err != nil {
		return nil, err
	}

	s.pubsubSvc.PublishEvent(event)

	log.Debugf(
		"quote: winner selected for RFQ %d (maker %s, index %d)",
		rfqID, selection.Maker, selection.WinnerIndex,
	)
	return selection, nil
}

// GetQuotes returns the RFQ's quotes in commit order.
func (s *Service) GetQuotes(ctx context.Context, rfqID uint64) ([]*domain.Quote, error) {
	return s.repoManager.QuoteRepository().GetQuotesForRFQ(ctx, rfqID)
}

// GetSelection returns the selection for the RFQ, or ErrNoSelectionMade.
func (s *Service) GetSelection(ctx context.Context, rfqID uint64) (*domain.Selection, error) {
	return s.repoManager.QuoteRepository().GetSelection(ctx, rfqID)
}
