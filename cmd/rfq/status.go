package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/rfq-network/rfqd/internal/core/domain"
)

var status = cli.Command{
	Name:  "status",
	Usage: "print an RFQ with its quotes, selection and fulfillment",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "rfq_id",
			Usage: "the RFQ to inspect",
		},
	},
	Action: statusAction,
}

func statusAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	id := ctx.Uint64("rfq_id")
	bg := context.Background()

	rfq, err := svc.intent.GetRFQ(bg, id)
	if err != nil {
		return err
	}
	quotes, err := svc.quote.GetQuotes(bg, id)
	if err != nil {
		return err
	}
	selection, err := svc.quote.GetSelection(bg, id)
	if err != nil && err != domain.ErrNoSelectionMade {
		return err
	}
	fulfilled, err := svc.settlement.IsFulfilled(bg, id)
	if err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"rfq":       rfq,
		"quotes":    quotes,
		"selection": selection,
		"fulfilled": fulfilled,
	})

	return nil
}
