// Command rfddiscuss prints an RFD's assembled discussion timeline and runs
// the line anchor matcher from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(openDeps).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(open depsOpener) *cli.App {
	return &cli.App{
		Name:  "rfddiscuss",
		Usage: "Inspect RFD discussions assembled from GitHub",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"RFDPANEL_CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			discussionCommand(open),
			matchCommand(),
		},
	}
}
