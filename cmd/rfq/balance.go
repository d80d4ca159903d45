package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var balance = cli.Command{
	Name:  "balance",
	Usage: "print an account's custodial balances",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the account to inspect, defaults to the configured account",
		},
	},
	Action: balanceAction,
}

func balanceAction(ctx *cli.Context) error {
	account, err := getAccount(ctx)
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	balances, err := svc.settlement.GetBalances(context.Background(), account)
	if err != nil {
		return err
	}

	printRespJSON(balances)

	return nil
}
