package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	httphandler "github.com/ericfisherdev/rfdpanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

func discussionCommand(open depsOpener) *cli.Command {
	return &cli.Command{
		Name:      "discussion",
		Usage:     "Print the discussion timeline of an RFD",
		ArgsUsage: "NUMBER",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the timeline as JSON",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Re-fetch from GitHub even if the cache is fresh",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("missing required argument: RFD number")
			}
			number, err := strconv.Atoi(c.Args().First())
			if err != nil || number <= 0 {
				return fmt.Errorf("invalid RFD number %q", c.Args().First())
			}

			d, err := open(c)
			if err != nil {
				return err
			}
			defer func() { _ = d.close() }()

			if c.Bool("refresh") {
				if err := d.discussions.RefreshRFD(c.Context, number); err != nil {
					return err
				}
			}

			page, err := d.discussions.GetRFDDiscussion(c.Context, number)
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(httphandler.NewDiscussionPageResponse(page))
			}

			printDiscussion(c.App.Writer, page)
			return nil
		},
	}
}

func printDiscussion(w io.Writer, page *application.RFDDiscussion) {
	fmt.Fprintf(w, "%s: %s [%s]\n", page.RFD.Label(), page.RFD.Title, page.RFD.State)
	if page.PR == nil {
		fmt.Fprintln(w, "No discussion pull request.")
		return
	}

	fmt.Fprintf(w, "Discussion: %s (fetched %s", page.PR, stamp(page.FetchedAt))
	if page.Stale {
		fmt.Fprint(w, ", stale")
	}
	fmt.Fprintln(w, ")")

	anchors := make(map[int64]model.ThreadAnchor, len(page.Anchors))
	for _, a := range page.Anchors {
		anchors[a.ThreadRootID] = a
	}

	for _, d := range page.Discussions {
		fmt.Fprintln(w)
		switch d.Kind {
		case model.DiscussionKindReview:
			fmt.Fprintf(w, "%s  review   %s  %s\n", stamp(d.CreatedAt), d.Review.Author, d.Review.State)
			printBody(w, d.Review.Body, "    ")
			for _, t := range d.Threads {
				printThread(w, t, anchors[t.RootID])
			}
		case model.DiscussionKindIssueComment:
			fmt.Fprintf(w, "%s  comment  %s\n", stamp(d.CreatedAt), d.IssueComment.Author)
			printBody(w, d.IssueComment.Body, "    ")
		}
	}
}

func printThread(w io.Writer, t model.CommentThread, anchor model.ThreadAnchor) {
	root := t.Root()
	fmt.Fprintf(w, "    thread %d on %s: %s\n", t.RootID, root.Path, describeAnchor(anchor))
	for _, c := range t.Comments {
		fmt.Fprintf(w, "      %s:\n", c.Author)
		printBody(w, c.Body, "        ")
	}
}

func describeAnchor(a model.ThreadAnchor) string {
	switch a.Status {
	case model.AnchorStatusAnchored:
		return fmt.Sprintf("line %d -> %s (line %d)", a.TargetLine, a.Ref, a.AnchorLine)
	case model.AnchorStatusUnanchored:
		return fmt.Sprintf("line %d, no block at or above it", a.TargetLine)
	case model.AnchorStatusOutdated:
		return "outdated"
	default:
		return "other file"
	}
}

func printBody(w io.Writer, body, indent string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(w, "%s%s\n", indent, strings.TrimRight(line, "\r"))
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "pending"
	}
	return t.UTC().Format(time.RFC3339)
}
