package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"patina/internal/progress"
	"patina/internal/vcs"
)

func analyzeCmd() *cli.Command {
	flags := append(limitFlags(),
		&cli.IntFlag{
			Name:  "history-limit",
			Usage: "Cap the raw history walk (0 = full history)",
		},
	)
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"an"},
		Usage:     "Analyze the fix history of a local git repository",
		ArgsUsage: "[path]",
		Flags:     flags,
		Action:    runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	path := "."
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}

	repo, err := vcs.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	spinner := progress.NewSpinner("Reading commit history...")
	commits, err := repo.Commits(c.Context, c.Int("history-limit"))
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("failed to read history: %w", err)
	}
	spinner.FinishSuccess()

	if len(commits) == 0 {
		color.Yellow("No commits found")
		return nil
	}

	return runPipeline(c, cfg, commits, repo)
}
