package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var listrfqs = cli.Command{
	Name:   "list-rfqs",
	Usage:  "list all registered RFQs",
	Action: listRFQsAction,
}

func listRFQsAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	rfqs, err := svc.intent.ListRFQs(context.Background())
	if err != nil {
		return err
	}

	printRespJSON(rfqs)

	return nil
}
