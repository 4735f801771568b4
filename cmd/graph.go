package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/masmgr/hglineage/internal/aggregation"
	"github.com/masmgr/hglineage/internal/burst"
	"github.com/masmgr/hglineage/internal/coupling"
	"github.com/masmgr/hglineage/internal/hg"
	"github.com/masmgr/hglineage/internal/output"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// GraphCmd returns the graph command.
func GraphCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringSliceFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to a root repository (can be specified multiple times)",
			Value:   cli.NewStringSlice("."),
		},
	)

	return &cli.Command{
		Name:    "graph",
		Aliases: []string{"g"},
		Usage:   "Resolve repositories and their sub-repositories into a change graph",
		Flags:   flags,
		Action:  graphAction,
	}
}

func graphAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		repoPaths := c.StringSlice("repo")
		if len(repoPaths) > 1 && c.String("output") != "" {
			return fmt.Errorf("--output accepts a single --repo, got %d", len(repoPaths))
		}

		repos, err := ctx.Resolver.ResolveAll(c.Context, repoPaths...)
		if err != nil {
			return fmt.Errorf("failed to resolve: %w", err)
		}

		diags := ctx.Resolver.Diagnostics()
		calculator := aggregation.NewChangeSetMetricsCalculator()
		burstCalc := burst.NewCalculator(ctx.Config.Burst.WindowDays)
		analyzer := coupling.NewAnalyzer(ctx.Config.Coupling)
		for i, repo := range repos {
			if len(repo.ChangeSets) == 0 {
				color.Yellow("No change sets found in %s.", repoPaths[i])
				continue
			}

			summary := aggregation.Summarize(repo.ChangeSets)
			burstCalc.Compute(summary.SubRepos)

			report := &output.GraphReport{
				RepoPath:        repoPaths[i],
				GeneratedAt:     time.Now(),
				Summary:         summary,
				Items:           calculator.CalculateAll(repo.ChangeSets),
				SubRepositories: ctx.Resolver.SubRepositories(),
				Couplings:       analyzer.Analyze(repo.ChangeSets).Couplings,
				Diagnostics:     diags.Items(),
			}
			if err := writeGraphReport(ctx, c, report); err != nil {
				return err
			}
		}

		ctx.Logger.Info("graph resolved",
			zap.Int("roots", len(repos)),
			zap.Int("subrepos", len(ctx.Resolver.SubRepositories())),
			zap.Int("warnings", diags.Count(hg.SeverityWarning)),
			zap.Int("errors", diags.Count(hg.SeverityError)))
		return nil
	})
}
