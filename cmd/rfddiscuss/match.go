package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

func matchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Pick the block a comment on a source line attaches to",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "line",
				Usage: "Source line of the comment; omit for a comment without a line",
			},
			&cli.StringSliceFlag{
				Name:  "candidate",
				Usage: "Line-tagged block as `REF=LINE`; LINE may be empty or invalid",
			},
		},
		Action: func(c *cli.Context) error {
			candidates, err := parseCandidates(c.StringSlice("candidate"))
			if err != nil {
				return err
			}

			var target *int
			if c.IsSet("line") {
				line := c.Int("line")
				target = &line
			}

			match, ok := application.MatchAnchor(target, candidates)
			if !ok {
				fmt.Fprintln(c.App.Writer, "no match")
				return nil
			}

			fmt.Fprintf(c.App.Writer, "%s (line %s)\n", match.Ref, match.Line)
			return nil
		},
	}
}

func parseCandidates(raw []string) ([]model.AnchorCandidate, error) {
	candidates := make([]model.AnchorCandidate, 0, len(raw))
	for _, r := range raw {
		ref, line, ok := strings.Cut(r, "=")
		if !ok || ref == "" {
			return nil, fmt.Errorf("invalid candidate %q: expected REF=LINE", r)
		}
		candidates = append(candidates, model.AnchorCandidate{Ref: ref, Line: line})
	}
	return candidates, nil
}
