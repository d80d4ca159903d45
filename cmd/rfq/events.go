package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var events = cli.Command{
	Name:  "events",
	Usage: "pull engine events from the ordered log",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:  "cursor",
			Usage: "return events with sequence strictly greater than this",
		},
	},
	Action: eventsAction,
}

func eventsAction(ctx *cli.Context) error {
	svc, cleanup, err := getServices(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, cursor, err := svc.feed.Pull(
		context.Background(), ctx.Uint64("cursor"),
	)
	if err != nil {
		return err
	}

	printRespJSON(map[string]interface{}{
		"events": entries,
		"cursor": cursor,
	})

	return nil
}
