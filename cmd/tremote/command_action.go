package main

import (
	"context"
	"flag"
	"fmt"
)

// ActionCommand applies one daemon action to a set of torrent ids. Commands
// that take a modifier expose it as a single boolean flag.
type ActionCommand struct {
	env       commandEnv
	name      string
	verb      string
	flagName  string
	flagUsage string
	run       func(ctx context.Context, client commandClient, ids []int, flag bool) error
}

func (c *ActionCommand) Run(args []string) error {
	fs := flag.NewFlagSet(c.name, flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	var modifier bool
	if c.flagName != "" {
		fs.BoolVar(&modifier, c.flagName, false, c.flagUsage)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()
	api, _, err := c.env.connect()
	if err != nil {
		return err
	}
	ids, err := resolveIDs(ctx, api, fs.Args())
	if err != nil {
		return err
	}
	if err := c.run(ctx, api, ids, modifier); err != nil {
		return err
	}
	fmt.Fprintf(c.env.stdout, "%s %s\n", pluralTorrents(len(ids)), c.verb)
	return nil
}

func NewStartCommand(env commandEnv) *ActionCommand {
	return &ActionCommand{
		env:       env,
		name:      "start",
		verb:      "started",
		flagName:  "now",
		flagUsage: "bypass the download queue",
		run: func(ctx context.Context, client commandClient, ids []int, now bool) error {
			if now {
				return client.TorrentStartNow(ctx, ids)
			}
			return client.TorrentStart(ctx, ids)
		},
	}
}

func NewStopCommand(env commandEnv) *ActionCommand {
	return &ActionCommand{
		env:  env,
		name: "stop",
		verb: "stopped",
		run: func(ctx context.Context, client commandClient, ids []int, _ bool) error {
			return client.TorrentStop(ctx, ids)
		},
	}
}

func NewVerifyCommand(env commandEnv) *ActionCommand {
	return &ActionCommand{
		env:  env,
		name: "verify",
		verb: "queued for verification",
		run: func(ctx context.Context, client commandClient, ids []int, _ bool) error {
			return client.TorrentVerify(ctx, ids)
		},
	}
}

func NewReannounceCommand(env commandEnv) *ActionCommand {
	return &ActionCommand{
		env:  env,
		name: "reannounce",
		verb: "reannounced",
		run: func(ctx context.Context, client commandClient, ids []int, _ bool) error {
			return client.TorrentReannounce(ctx, ids)
		},
	}
}

func NewRemoveCommand(env commandEnv) *ActionCommand {
	return &ActionCommand{
		env:       env,
		name:      "remove",
		verb:      "removed",
		flagName:  "delete-data",
		flagUsage: "also delete downloaded files",
		run: func(ctx context.Context, client commandClient, ids []int, deleteData bool) error {
			return client.TorrentRemove(ctx, ids, deleteData)
		},
	}
}
