package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"patina/internal/output"
	"patina/internal/progress"
	"patina/pkg/analyzer/selector"
	"patina/pkg/analyzer/trend"
	"patina/pkg/config"
	"patina/pkg/models"
)

// limitFlags are the per-run cap flags shared by analyze and feed.
func limitFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "max-commits",
			Usage: "Maximum candidate fix commits to analyze",
		},
		&cli.IntFlag{
			Name:  "max-files",
			Usage: "Maximum changed files to inspect per commit",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Number of top patterns in the summary",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent commit workers (1 = sequential)",
		},
		&cli.IntFlag{
			Name:  "sample",
			Usage: "Retain N per-file results for illustrative output",
		},
	}
}

// loadConfig resolves configuration: file, environment, then explicit
// CLI flags, in increasing precedence. Invalid values are fatal before
// any analysis starts.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("max-commits") {
		cfg.Limits.MaxCommits = c.Int("max-commits")
	}
	if c.IsSet("max-files") {
		cfg.Limits.MaxFilesPerCommit = c.Int("max-files")
	}
	if c.IsSet("top") {
		cfg.Limits.TopPatterns = c.Int("top")
	}
	if c.IsSet("workers") {
		cfg.Limits.Workers = c.Int("workers")
	}
	if c.IsSet("sample") {
		cfg.Limits.SampleSize = c.Int("sample")
	}

	return cfg, cfg.Validate()
}

// runPipeline executes selection, aggregation, and finalization over
// an in-memory commit feed, then renders the summary.
func runPipeline(c *cli.Context, cfg *config.Config, commits []models.Commit, snaps trend.Snapshots) error {
	candidates, skipped := selector.Select(commits, cfg.Limits.MaxCommits, cfg.Keywords)
	if len(candidates) == 0 {
		return renderSummary(c, emptySummary(skipped))
	}

	tracker := progress.NewTracker("Analyzing fix commits...", len(candidates))
	a := trend.New(
		trend.WithMaxFilesPerCommit(cfg.Limits.MaxFilesPerCommit),
		trend.WithWorkers(cfg.Limits.Workers),
		trend.WithSampleSize(cfg.Limits.SampleSize),
		trend.WithExcludePrefixes(cfg.Exclude.Prefixes),
		trend.WithTick(tracker.Tick),
	)

	state, err := a.Run(c.Context, candidates, snaps)
	if err != nil {
		tracker.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	tracker.FinishSuccess()

	summary := trend.Finalize(state, cfg.Limits.TopPatterns)
	summary.SkippedCommits = skipped
	summary.CandidatesTotal = len(candidates)
	if len(commits) > 0 {
		summary.FixCommitRatio = float64(len(candidates)) / float64(len(commits))
	}

	return renderSummary(c, summary)
}

func emptySummary(skipped int) *models.AnalysisSummary {
	return &models.AnalysisSummary{
		SkippedCommits: skipped,
		TopPatterns:    []models.TopPattern{},
		MonthlyTrend:   []models.MonthlyBucket{},
	}
}

func renderSummary(c *cli.Context, summary *models.AnalysisSummary) error {
	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewReport(summary))
}
