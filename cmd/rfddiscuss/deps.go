package main

import (
	"github.com/urfave/cli/v2"

	githubadapter "github.com/ericfisherdev/rfdpanel/internal/adapter/driven/github"
	"github.com/ericfisherdev/rfdpanel/internal/adapter/driven/rfdapi"
	sqliteadapter "github.com/ericfisherdev/rfdpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/rfdpanel/internal/application"
	"github.com/ericfisherdev/rfdpanel/internal/config"
)

// deps are the services a command needs, plus a release func.
type deps struct {
	discussions *application.DiscussionService
	close       func() error
}

type depsOpener func(c *cli.Context) (*deps, error)

// openDeps wires the same adapters as the server, sharing its snapshot cache.
func openDeps(c *cli.Context) (*deps, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	db, err := sqliteadapter.Open(c.Context, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	discussions := application.NewDiscussionService(
		rfdapi.NewClient(cfg.RFDAPIURL, cfg.RFDAPIToken, cfg.RFDAPIRPS),
		githubadapter.NewClient(cfg.GitHubToken),
		sqliteadapter.NewDiscussionRepo(db),
		cfg.CacheTTL,
	)

	return &deps{discussions: discussions, close: db.Close}, nil
}
