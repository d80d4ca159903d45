package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

var revealintent = cli.Command{
	Name:  "reveal-intent",
	Usage: "reveal the hidden fields of a committed intent",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the intent owner, defaults to the configured account",
		},
		&cli.Uint64Flag{
			Name:  "rfq_id",
			Usage: "the id returned by commit-intent",
		},
		&cli.StringFlag{
			Name:  "amount_in",
			Usage: "the committed input amount, defaults to the stored one",
		},
		&cli.StringFlag{
			Name:  "max_slippage_bps",
			Usage: "the committed slippage tolerance, defaults to the stored one",
		},
		&cli.StringFlag{
			Name:  "salt",
			Usage: "the committed salt, defaults to the stored one",
		},
	},
	Action: revealIntentAction,
}

func revealIntentAction(ctx *cli.Context) error {
	owner, err := getAccount(ctx)
	if err != nil {
		return err
	}
	id := ctx.Uint64("rfq_id")

	rawAmount := ctx.String("amount_in")
	rawSlippage := ctx.String("max_slippage_bps")
	rawSalt := ctx.String("salt")
	if rawAmount == "" || rawSlippage == "" || rawSalt == "" {
		state, err := getState()
		if err != nil {
			return err
		}
		if rawAmount == "" {
			rawAmount = state[fmt.Sprintf("rfq-%d-amount", id)]
		}
		if rawSlippage == "" {
			rawSlippage = state[fmt.Sprintf("rfq-%d-slippage", id)]
		}
		if rawSalt == "" {
			rawSalt = state[fmt.Sprintf("rfq-%d-salt", id)]
		}
	}

	amountIn, err := parseAmount(rawAmount)
	if err != nil {
		return err
	}
	maxSlippageBps, err := strconv.ParseUint(rawSlippage, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid max_slippage_bps %s: %w", rawSlippage, err)
	}
	salt, err := domain.SaltFromHex(rawSalt)
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.intent.RevealRFQ(
		context.Background(), owner, id, amountIn, maxSlippageBps, salt,
	); err != nil {
		return err
	}

	fmt.Println("intent is revealed")
	return nil
}
