package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"patina/internal/feed"
	"patina/internal/vcs"
)

func feedCmd() *cli.Command {
	flags := append(limitFlags(),
		&cli.StringFlag{
			Name:     "repo",
			Usage:    "Git repository to fetch file snapshots from",
			Required: true,
		},
	)
	return &cli.Command{
		Name:      "feed",
		Usage:     "Analyze a pre-crawled JSON commit feed",
		ArgsUsage: "<commits.json>",
		Flags:     flags,
		Action:    runFeedCmd,
	}
}

func runFeedCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one feed file argument")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	commits, err := feed.Load(c.Args().First())
	if err != nil {
		return err
	}

	repo, err := vcs.Open(c.String("repo"))
	if err != nil {
		return fmt.Errorf("failed to open snapshot repository: %w", err)
	}

	return runPipeline(c, cfg, commits, repo)
}
