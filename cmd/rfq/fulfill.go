package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var fulfill = cli.Command{
	Name:  "fulfill",
	Usage: "settle an RFQ atomically against its selected quote",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "rfq_id",
			Usage: "the RFQ to settle",
		},
	},
	Action: fulfillAction,
}

func fulfillAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.settlement.Fulfill(
		context.Background(), ctx.Uint64("rfq_id"),
	); err != nil {
		return err
	}

	fmt.Println("RFQ is fulfilled")
	return nil
}
