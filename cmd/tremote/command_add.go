package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"tremote/internal/client"
)

type AddCommand struct {
	env commandEnv
}

func NewAddCommand(env commandEnv) *AddCommand {
	return &AddCommand{env: env}
}

func (c *AddCommand) Run(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	paused := fs.Bool("paused", false, "add without starting")
	dir := fs.String("dir", "", "download directory on the daemon host")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sources := fs.Args()
	if len(sources) == 0 {
		return errors.New("a torrent URL, magnet link, info hash or .torrent file is required")
	}

	ctx, stop := commandContext()
	defer stop()
	api, _, err := c.env.connect()
	if err != nil {
		return err
	}

	var errs []error
	for _, source := range sources {
		req, err := addRequestFor(source, *paused, *dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		added, err := api.TorrentAdd(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
			continue
		}
		if added.Duplicate {
			fmt.Fprintf(c.env.stdout, "%d\t%s\t(already added)\n", added.ID, added.Name)
			continue
		}
		fmt.Fprintf(c.env.stdout, "%d\t%s\n", added.ID, added.Name)
	}
	return errors.Join(errs...)
}

// addRequestFor reads local .torrent files and passes everything else to the
// daemon as a URL.
func addRequestFor(source string, paused bool, dir string) (client.AddRequest, error) {
	source = strings.TrimSpace(source)
	req := client.AddRequest{Paused: paused, DownloadDir: dir}
	if strings.HasSuffix(strings.ToLower(source), ".torrent") && !strings.Contains(source, "://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return client.AddRequest{}, err
		}
		req.Metainfo = data
		return req, nil
	}
	req.URL = source
	return req, nil
}
