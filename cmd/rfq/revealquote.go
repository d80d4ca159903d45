package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

var revealquote = cli.Command{
	Name:  "reveal-quote",
	Usage: "reveal a sealed quote",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the quoting maker, defaults to the configured account",
		},
		&cli.Uint64Flag{
			Name:  "rfq_id",
			Usage: "the RFQ the quote was committed to",
		},
		&cli.StringFlag{
			Name:  "quote_out",
			Usage: "the committed output amount, defaults to the stored one",
		},
		&cli.StringFlag{
			Name:  "salt",
			Usage: "the committed salt, defaults to the stored one",
		},
	},
	Action: revealQuoteAction,
}

func revealQuoteAction(ctx *cli.Context) error {
	maker, err := getAccount(ctx)
	if err != nil {
		return err
	}
	id := ctx.Uint64("rfq_id")

	rawOut := ctx.String("quote_out")
	rawSalt := ctx.String("salt")
	if rawOut == "" || rawSalt == "" {
		state, err := getState()
		if err != nil {
			return err
		}
		if rawOut == "" {
			rawOut = state[fmt.Sprintf("quote-%d-out", id)]
		}
		if rawSalt == "" {
			rawSalt = state[fmt.Sprintf("quote-%d-salt", id)]
		}
	}

	quoteOut, err := parseAmount(rawOut)
	if err != nil {
		return err
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

	if err := svc.quote.RevealQuote(
		context.Background(), id, maker, quoteOut, salt,
	); err != nil {
		return err
	}

	fmt.Println("quote is revealed")
	return nil
}
