package main

import (
	"context"
	"fmt"
	"time"

	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

var commitintent = cli.Command{
	Name:  "commit-intent",
	Usage: "register a hidden trade intent",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the intent owner, defaults to the configured account",
		},
		&cli.StringFlag{
			Name:  "token_in",
			Usage: "the token the owner sells",
		},
		&cli.StringFlag{
			Name:  "token_out",
			Usage: "the token the owner buys",
		},
		&cli.StringFlag{
			Name:  "amount_in",
			Usage: "the hidden input amount, in base units",
		},
		&cli.Uint64Flag{
			Name:  "max_slippage_bps",
			Usage: "the hidden slippage tolerance, in basis points",
		},
		&cli.DurationFlag{
			Name:  "expires_in",
			Usage: "how long the intent stays actionable",
			Value: time.Hour,
		},
		&cli.StringFlag{
			Name:  "salt",
			Usage: "32-byte hex salt, generated when omitted",
		},
	},
	Action: commitIntentAction,
}

func commitIntentAction(ctx *cli.Context) error {
	owner, err := getAccount(ctx)
	if err != nil {
		return err
	}
	amountIn, err := parseAmount(ctx.String("amount_in"))
	if err != nil {
		return err
	}

	salt := domain.SaltFromBytes(randstr.Bytes(32))
	if raw := ctx.String("salt"); raw != "" {
		if salt, err = domain.SaltFromHex(raw); err != nil {
			return err
		}
	}

	maxSlippageBps := ctx.Uint64("max_slippage_bps")
	commitment := domain.IntentCommitment(amountIn, maxSlippageBps, salt)
	expiry := time.Now().Add(ctx.Duration("expires_in")).Unix()

	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := svc.intent.CommitRFQ(
		context.Background(), owner,
		ctx.String("token_in"), ctx.String("token_out"), expiry, commitment,
	)
	if err != nil {
		return err
	}

	// Keep the reveal material around so `reveal-intent` can default to it.
	if err := setState(map[string]string{
		fmt.Sprintf("rfq-%d-salt", id):     salt.String(),
		fmt.Sprintf("rfq-%d-amount", id):   amountIn.Dec(),
		fmt.Sprintf("rfq-%d-slippage", id): fmt.Sprintf("%d", maxSlippageBps),
	}); err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"rfq_id":     id,
		"commitment": commitment.String(),
		"salt":       salt.String(),
	})

	return nil
}
