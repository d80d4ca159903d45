package intent

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

// Service owns the intent ledger: the RFQ commit → reveal lifecycle.
type Service struct {
	repoManager ports.RepoManager
	pubsubSvc   *pubsub.Service
}

func NewService(
	repoManager ports.RepoManager, pubsubSvc *pubsub.Service,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	return &Service{repoManager, pubsubSvc}, nil
}

// CommitRFQ registers a new hidden trade intent and returns its assigned id.
func (s *Service) CommitRFQ(
	ctx context.Context,
	owner, tokenIn, tokenOut string, expiry int64, commitment domain.Commitment,
) (uint64, error) {
	rfq, err := domain.NewRFQ(owner, tokenIn, tokenOut, expiry, commitment)
	if err != nil {
		return 0, err
	}

	var event domain.RFQCommittedEvent
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			id, err := s.repoManager.RFQRepository().AddRFQ(ctx, rfq)
			if err != nil {
				return err
			}
			event = domain.RFQCommittedEvent{
				Id:       id,
				Owner:    owner,
				TokenIn:  tokenIn,
				TokenOut: tokenOut,
				Status:   rfq.Status,
				Expiry:   expiry,
			}
			return s.repoManager.EventRepository().AppendEvents(
				ctx, time.Now().Unix(), event,
			)
		},
	); err != nil {
		return 0, err
	}

	s.pubsubSvc.PublishEvent(event)

	log.Debugf(
		"intent: RFQ %d committed by %s (%s -> %s)",
		event.Id, owner, tokenIn, tokenOut,
	)
	return event.Id, nil
}

// RevealRFQ discloses the trade parameters of a committed intent. The caller
// must be the RFQ owner and the preimage must match the stored commitment.
func (s *Service) RevealRFQ(
	ctx context.Context, caller string, id uint64,
	amountIn *uint256.Int, maxSlippageBps uint64, salt domain.Salt,
) error {
	event := domain.RFQRevealedEvent{
		Id:             id,
		AmountIn:       amountIn.Clone(),
		MaxSlippageBps: maxSlippageBps,
	}
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			if err := s.repoManager.RFQRepository().UpdateRFQ(
				ctx, id, func(rfq *domain.RFQ) (*domain.RFQ, error) {
					if err := rfq.Reveal(caller, amountIn, maxSlippageBps, salt); err != nil {
						return nil, err
					}
					return rfq, nil
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

	log.Debugf("intent: RFQ %d revealed", id)
	return nil
}

// GetRFQ returns the RFQ with the given id.
func (s *Service) GetRFQ(ctx context.Context, id uint64) (*domain.RFQ, error) {
	return s.repoManager.RFQRepository().GetRFQ(ctx, id)
}

// ListRFQs returns all RFQs ordered by id.
func (s *Service) ListRFQs(ctx context.Context) ([]*domain.RFQ, error) {
	return s.repoManager.RFQRepository().GetAllRFQs(ctx)
}
