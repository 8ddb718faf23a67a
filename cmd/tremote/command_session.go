package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"tremote/internal/logging"
	"tremote/internal/types"
)

type SessionCommand struct {
	env commandEnv
}

func NewSessionCommand(env commandEnv) *SessionCommand {
	return &SessionCommand{env: env}
}

type sessionReport struct {
	Session   *types.Session      `json:"session"`
	Stats     *types.SessionStats `json:"stats"`
	FreeSpace *types.FreeSpace    `json:"free_space,omitempty"`
}

func (c *SessionCommand) Run(args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()
	api, cfg, err := c.env.connect()
	if err != nil {
		return err
	}

	var report sessionReport
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		session, err := api.SessionGet(groupCtx)
		report.Session = session
		return err
	})
	group.Go(func() error {
		stats, err := api.SessionStats(groupCtx)
		report.Stats = stats
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}

	if dir := strings.TrimSpace(report.Session.DownloadDir); dir != "" {
		space, err := api.FreeSpace(ctx, dir)
		if err != nil {
			// Older daemons lack free-space.
			newCLILogger(c.env.stderr, cfg).Debug("free space unavailable", logging.F("path", dir), logging.F("error", err))
		} else {
			report.FreeSpace = space
		}
	}

	if *asJSON {
		enc := json.NewEncoder(c.env.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printSessionReport(c.env.stdout, report)
	return nil
}

func printSessionReport(output io.Writer, report sessionReport) {
	s := report.Session
	st := report.Stats
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintf(writer, "Version:\t%s (rpc %d)\n", s.Version, s.RPCVersion)
	fmt.Fprintf(writer, "Download dir:\t%s\n", s.DownloadDir)
	if report.FreeSpace != nil {
		fmt.Fprintf(writer, "Free space:\t%s\n", humanize.Bytes(uint64(max(report.FreeSpace.SizeBytes, 0))))
	}
	fmt.Fprintf(writer, "Peer port:\t%d\n", s.PeerPort)
	fmt.Fprintf(writer, "Speed limits:\t%s down, %s up\n",
		limitLabel(s.SpeedLimitDownOn, s.SpeedLimitDown), limitLabel(s.SpeedLimitUpOn, s.SpeedLimitUp))
	fmt.Fprintf(writer, "Alt speed:\t%s (%d kB/s down, %d kB/s up)\n", onOff(s.AltSpeedEnabled), s.AltSpeedDown, s.AltSpeedUp)
	fmt.Fprintf(writer, "Blocklist:\t%s (%d rules)\n", onOff(s.BlocklistEnabled), s.BlocklistSize)
	fmt.Fprintf(writer, "Torrents:\t%d (%d active, %d paused)\n", st.TorrentCount, st.ActiveTorrentCount, st.PausedTorrentCount)
	fmt.Fprintf(writer, "Speed:\t%s down, %s up\n", rateCell(st.DownloadSpeed), rateCell(st.UploadSpeed))
	fmt.Fprintf(writer, "This session:\t%s\n", transferLabel(st.CurrentStats))
	fmt.Fprintf(writer, "All time:\t%s\n", transferLabel(st.CumulativeStats))
	_ = writer.Flush()
}

func transferLabel(t types.TransferStats) string {
	active := time.Duration(t.SecondsActive) * time.Second
	return fmt.Sprintf("%s down, %s up, active %s",
		humanize.Bytes(uint64(max(t.DownloadedBytes, 0))),
		humanize.Bytes(uint64(max(t.UploadedBytes, 0))),
		active.String())
}

func limitLabel(enabled bool, kbps int) string {
	if !enabled {
		return "unlimited"
	}
	return fmt.Sprintf("%d kB/s", kbps)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

type AltSpeedCommand struct {
	env commandEnv
}

func NewAltSpeedCommand(env commandEnv) *AltSpeedCommand {
	return &AltSpeedCommand{env: env}
}

func (c *AltSpeedCommand) Run(args []string) error {
	fs := flag.NewFlagSet("alt-speed", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := commandContext()
	defer stop()
	api, _, err := c.env.connect()
	if err != nil {
		return err
	}

	var enabled bool
	switch strings.ToLower(strings.TrimSpace(fs.Arg(0))) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	case "", "toggle":
		session, err := api.SessionGet(ctx)
		if err != nil {
			return err
		}
		enabled = !session.AltSpeedEnabled
	default:
		return errors.New("usage: alt-speed [on|off|toggle]")
	}
	if err := api.SetAltSpeed(ctx, enabled); err != nil {
		return err
	}
	fmt.Fprintf(c.env.stdout, "alt speed %s\n", onOff(enabled))
	return nil
}

type PortTestCommand struct {
	env commandEnv
}

func NewPortTestCommand(env commandEnv) *PortTestCommand {
	return &PortTestCommand{env: env}
}

func (c *PortTestCommand) Run(args []string) error {
	fs := flag.NewFlagSet("port-test", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx, stop := commandContext()
	defer stop()
	api, _, err := c.env.connect()
	if err != nil {
		return err
	}
	open, err := api.PortTest(ctx)
	if err != nil {
		return err
	}
	if open {
		fmt.Fprintln(c.env.stdout, "port is open")
		return nil
	}
	fmt.Fprintln(c.env.stdout, "port is closed")
	return nil
}

type BlocklistCommand struct {
	env commandEnv
}

func NewBlocklistCommand(env commandEnv) *BlocklistCommand {
	return &BlocklistCommand{env: env}
}

func (c *BlocklistCommand) Run(args []string) error {
	fs := flag.NewFlagSet("blocklist-update", flag.ContinueOnError)
	fs.SetOutput(c.env.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ctx, stop := commandContext()
	defer stop()
	api, _, err := c.env.connect()
	if err != nil {
		return err
	}
	size, err := api.BlocklistUpdate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.env.stdout, "blocklist has %d rules\n", size)
	return nil
}
