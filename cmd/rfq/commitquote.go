package main

import (
	"context"
	"fmt"

	"github.com/thanhpk/randstr"
	"github.com/urfave/cli/v2"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

var commitquote = cli.Command{
	Name:  "commit-quote",
	Usage: "append a sealed quote to a revealed RFQ",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the quoting maker, defaults to the configured account",
		},
		&cli.Uint64Flag{
			Name:  "rfq_id",
			Usage: "the RFQ being quoted",
		},
		&cli.StringFlag{
			Name:  "quote_out",
			Usage: "the hidden output amount, in base units",
		},
		&cli.StringFlag{
			Name:  "salt",
			Usage: "32-byte hex salt, generated when omitted",
		},
	},
	Action: commitQuoteAction,
}

func commitQuoteAction(ctx *cli.Context) error {
	maker, err := getAccount(ctx)
	if err != nil {
		return err
	}
	id := ctx.Uint64("rfq_id")
	quoteOut, err := parseAmount(ctx.String("quote_out"))
	if err != nil {
		return err
	}

	salt := domain.SaltFromBytes(randstr.Bytes(32))
	if raw := ctx.String("salt"); raw != "" {
		if salt, err = domain.SaltFromHex(raw); err != nil {
			return err
		}
	}

	commitment := domain.QuoteCommitment(quoteOut, salt)

	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	index, err := svc.quote.CommitQuote(
		context.Background(), id, maker, commitment,
	)
	if err != nil {
		return err
	}

	// Keep the reveal material around so `reveal-quote` can default to it.
	if err := setState(map[string]string{
		fmt.Sprintf("quote-%d-salt", id): salt.String(),
		fmt.Sprintf("quote-%d-out", id):  quoteOut.Dec(),
	}); err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"rfq_id":     id,
		"index":      index,
		"commitment": commitment.String(),
		"salt":       salt.String(),
	})

	return nil
}
