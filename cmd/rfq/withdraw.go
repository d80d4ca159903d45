package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
)

var withdraw = cli.Command{
	Name:  "withdraw",
	Usage: "debit an account's custodial balance",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "account",
			Usage: "the account to debit, defaults to the configured account",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "the token to debit",
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "the amount to debit, in base units",
		},
	},
	Action: withdrawAction,
}

func withdrawAction(ctx *cli.Context) error {
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

	if err := svc.settlement.Withdraw(
		context.Background(), account, ctx.String("token"), amount,
	); err != nil {
		return err
	}

	fmt.Println("balance is withdrawn")
	return nil
}
