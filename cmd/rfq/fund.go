package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var fund = cli.Command{
	Name:  "fund",
	Usage: "credit an account's custodial balance",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the account to credit, defaults to the configured account",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "the token to credit",
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "the amount to credit, in base units",
		},
	},
	Action: fundAction,
}

func fundAction(ctx *cli.Context) error {
	account, err := getAccount(ctx)
	if err != nil {
		return err
	}
	amount, err := parseAmount(ctx.String("amount"))
	if err != nil {
		return err
	}

	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.settlement.Fund(
		context.Background(), account, ctx.String("token"), amount,
	); err != nil {
		return err
	}

	fmt.Println("balance is funded")
	return nil
}
