package main

import (
	"github.com/urfave/cli/v2"
)

var configCmd = cli.Command{
	Name:  "config",
	Usage: "manage the CLI state",
	Subcommands: []*cli.Command{
		{
			Name:  "init",
			Usage: "store the default acting account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "account",
					Usage: "the account used as owner or maker when --account is omitted",
				},
			},
			Action: configInitAction,
		},
		{
			Name:   "show",
			Usage:  "print the current CLI state",
			Action: configShowAction,
		},
	},
}

func configInitAction(ctx *cli.Context) error {
	return setState(map[string]string{
		"account": ctx.String("account"),
	})
}

func configShowAction(ctx *cli.Context) error {
	state, err := getState()
	if err != nil {
		return err
	}

	printRespJSON(state)

	return nil
}
