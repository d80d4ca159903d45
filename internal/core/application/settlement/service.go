package settlement

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

// Service owns the settlement ledger: custodial balances and the atomic
// fulfillment of selected RFQs. It reads the intent and quote ledgers by
// value only and never mutates them.
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

// Fund credits an account's custodial balance after custody of the external
// asset has been taken.
func (s *Service) Fund(
	ctx context.Context, account, token string, amount *uint256.Int,
) error {
	if amount.IsZero() {
		return domain.ErrZeroAmount
	}

	event := domain.FundedEvent{
		Account: account, Token: token, Amount: amount.Clone(),
	}
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			if err := s.repoManager.SettlementRepository().UpdateBalances(
				ctx, []domain.BalanceKey{{Account: account, Token: token}},
				func(balances []*domain.Balance) error {
					balances[0].Add(amount)
					return nil
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

	log.Debugf("settlement: funded %s %s for %s", amount, token, account)
	return nil
}

// Withdraw debits an account's custodial balance, releasing custody of the
// external asset.
func (s *Service) Withdraw(
	ctx context.Context, account, token string, amount *uint256.Int,
) error {
	if amount.IsZero() {
		return domain.ErrZeroAmount
	}

	event := domain.WithdrawnEvent{
		Account: account, Token: token, Amount: amount.Clone(),
	}
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			if err := s.repoManager.SettlementRepository().UpdateBalances(
				ctx, []domain.BalanceKey{{Account: account, Token: token}},
				func(balances []*domain.Balance) error {
					return balances[0].Sub(amount)
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

	log.Debugf("settlement: withdrawn %s %s for %s", amount, token, account)
	return nil
}

// Fulfill executes the atomic four-way balance swap for a selected RFQ and
// sets the write-once fulfilled marker. All guards run before any mutation,
// and the whole adjustment is applied inside a single transaction: a failure
// partway leaves every balance untouched.
func (s *Service) Fulfill(ctx context.Context, rfqID uint64) error {
	var event domain.FillCommittedEvent
	if err := s.repoManager.RunTransaction(
		ctx, false, func(ctx context.Context) error {
			rfq, err := s.repoManager.RFQRepository().GetRFQ(ctx, rfqID)
			if err != nil {
				return err
			}
			if !rfq.IsRevealed() {
				return domain.ErrRFQNotRevealed
			}

			selection, err := s.repoManager.QuoteRepository().GetSelection(ctx, rfqID)
			if err != nil {
				return err
			}

			fulfillment, err := s.repoManager.SettlementRepository().GetFulfillment(ctx, rfqID)
			if err != nil {
				return err
			}
			if fulfillment != nil {
				return domain.ErrAlreadyFulfilled
			}

			taker, maker := rfq.Owner, selection.Maker
			amountIn, quoteOut := rfq.AmountIn, selection.QuoteOut

			keys := []domain.BalanceKey{
				{Account: taker, Token: rfq.TokenIn},
				{Account: taker, Token: rfq.TokenOut},
				{Account: maker, Token: rfq.TokenOut},
				{Account: maker, Token: rfq.TokenIn},
			}
			if err := s.repoManager.SettlementRepository().UpdateBalances(
				ctx, keys, func(balances []*domain.Balance) error {
					takerIn, takerOut, makerOut, makerIn := balances[0], balances[1], balances[2], balances[3]

					if !takerIn.Covers(amountIn) {
						return domain.ErrInsufficientTakerBalance
					}
					if !makerOut.Covers(quoteOut) {
						return domain.ErrInsufficientMakerBalance
					}

					if err := takerIn.Sub(amountIn); err != nil {
						return err
					}
					takerOut.Add(quoteOut)
					if err := makerOut.Sub(quoteOut); err != nil {
						return err
					}
					makerIn.Add(amountIn)
					return nil
				},
			); err != nil {
				return err
			}

			if err := s.repoManager.SettlementRepository().AddFulfillment(
				ctx, &domain.Fulfillment{RFQId: rfqID, Timestamp: time.Now().Unix()},
			); err != nil {
				return err
			}

			event = domain.FillCommittedEvent{
				RFQId:    rfqID,
				Taker:    taker,
				Maker:    maker,
				AmountIn: amountIn.Clone(),
				QuoteOut: quoteOut.Clone(),
			}
			return s.repoManager.EventRepository().AppendEvents(
				ctx, time.Now().Unix(), event,
			)
		},
	); err != nil {
		return err
	}

	s.pubsubSvc.PublishEvent(event)

	log.Infof(
		"settlement: RFQ %d filled (taker %s, maker %s)",
		rfqID, event.Taker, event.Maker,
	)
	return nil
}

// GetBalance returns the custodial balance for (account, token).
func (s *Service) GetBalance(
	ctx context.Context, account, token string,
) (*domain.Balance, error) {
	return s.repoManager.SettlementRepository().GetOrCreateBalance(ctx, account, token)
}

// GetBalances returns all custodial balances held for an account.
func (s *Service) GetBalances(
	ctx context.Context, account string,
) ([]*domain.Balance, error) {
	return s.repoManager.SettlementRepository().GetBalancesForAccount(ctx, account)
}

// IsFulfilled returns whether the RFQ has settled.
func (s *Service) IsFulfilled(ctx context.Context, rfqID uint64) (bool, error) {
	fulfillment, err := s.repoManager.SettlementRepository().GetFulfillment(ctx, rfqID)
	if err != nil {
		return false, err
	}
	return fulfillment != nil, nil
}
