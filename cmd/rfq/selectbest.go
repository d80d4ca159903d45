package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

var selectbest = cli.Command{
	Name:  "select-best",
	Usage: "run the winner selection over an RFQ's revealed quotes",
	Description: "The oracle reference and the randomness are consumed as " +
		"given. ref_price is the reference OUTPUT amount for the RFQ's full " +
		"input, in the same base units as the quotes. The selection is " +
		"write-once: a second invocation fails.",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "rfq_id",
			Usage: "the RFQ to select a winner for",
		},
		&cli.StringFlag{
			Name:  "ref_price",
			Usage: "the oracle reference output amount, in base units",
		},
		&cli.Uint64Flag{
			Name:  "snapshot_id",
			Usage: "the oracle snapshot identifier recorded with the selection",
		},
		&cli.UintFlag{
			Name:  "decimals",
			Usage: "the fixed-point scale of the oracle snapshot",
			Value: 18,
		},
		&cli.StringFlag{
			Name:  "rng",
			Usage: "the verifiable randomness value, as a decimal integer",
		},
		&cli.BoolFlag{
			Name:  "insecure",
			Usage: "mark the randomness as insecure, the selection will refuse it",
		},
	},
	Action: selectBestAction,
}

func selectBestAction(ctx *cli.Context) error {
	refPrice, err := parseAmount(ctx.String("ref_price"))
	if err != nil {
		return err
	}
	rngValue, err := parseAmount(ctx.String("rng"))
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	rng := domain.RandomDraw{
		Value:          rngValue,
		IsSecure:       !ctx.Bool("insecure"),
		EpochTimestamp: now,
	}
	snapshot := domain.PriceSnapshot{
		SnapshotID: ctx.Uint64("snapshot_id"),
		Price:      refPrice,
		Decimals:   uint32(ctx.Uint("decimals")),
		Timestamp:  now,
	}

	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	selection, err := svc.quote.SelectBest(
		context.Background(), ctx.Uint64("rfq_id"), rng, snapshot,
	)
	if err != nil {
		return err
	}

	printRespJSON(selection)

	return nil
}
