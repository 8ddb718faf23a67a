package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"tremote/internal/client"
)

type QueueCommand struct {
	env commandEnv
}

func NewQueueCommand(env commandEnv) *QueueCommand {
	return &QueueCommand{env: env}
}

func (c *QueueCommand) Run(args []string) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return errors.New("usage: queue top|up|down|bottom <id>...")
	}
	dir := client.QueueDirection(strings.ToLower(strings.TrimSpace(rest[0])))
	switch dir {
	case client.QueueTop, client.QueueUp, client.QueueDown, client.QueueBottom:
	default:
		return fmt.Errorf("unknown queue direction %q", rest[0])
	}

	ctx, stop := commandContext()
	defer stop()
	api, _, err := c.env.connect()
	if err != nil {
		return err
	}
	ids, err := resolveIDs(ctx, api, rest[1:])
	if err != nil {
		return err
	}
	if err := api.QueueMove(ctx, dir, ids); err != nil {
		return err
	}
	fmt.Fprintf(c.env.stdout, "%s moved %s\n", pluralTorrents(len(ids)), dir)
	return nil
}
