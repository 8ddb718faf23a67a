package main

import (
	"fmt"
	"os"
)

const usageText = `tremote is a terminal remote for the Transmission daemon.

Usage:
  tremote <command> [flags] [args]

Commands:
  ui                 run the terminal UI (default)
  ls                 list transfers
  add                add a torrent by URL, magnet link or info hash
  start              start transfers
  stop               stop transfers
  verify             verify local data
  reannounce         ask trackers for more peers
  remove             remove transfers
  queue              move transfers in the queue (top|up|down|bottom)
  session            show daemon session and statistics
  alt-speed          toggle alternative speed limits (on|off)
  port-test          check whether the peer port is reachable
  blocklist-update   refresh the daemon blocklist
  config             print configuration (effective or defaults)
  version            print the build version
  help               show help

Flags:
  -h, --help   show help

Environment:
  TREMOTE_URL         daemon URL, overrides [daemon] url
  TREMOTE_LOG_LEVEL   debug|info|warn|error

Examples:
  tremote ls --filter active --sort ratio --reverse
  tremote add --paused magnet:?xt=urn:btih:...
  tremote remove --delete-data 4 7
  tremote config --format toml --default
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"ui"}
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}
