package cmd

import (
	"fmt"
	"time"

	"github.com/masmgr/hglineage/internal/hg"
	"github.com/masmgr/hglineage/internal/output"
	"github.com/urfave/cli/v2"
)

// SubstateCmd returns the substate command.
func SubstateCmd() *cli.Command {
	flags := append(commonFlags(),
		repoFlag(),
		&cli.StringFlag{
			Name:     "rev",
			Usage:    "Revision (\"12\") or range (\"10:20\") to diff",
			Required: true,
		},
	)

	return &cli.Command{
		Name:    "substate",
		Aliases: []string{"s"},
		Usage:   "Show the merged sub-repository transitions of a revision",
		Flags:   flags,
		Action:  substateAction,
	}
}

func substateAction(c *cli.Context) error {
	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		repoPath := c.String("repo")
		rev := c.String("rev")

		diff, err := ctx.Source.Diff(c.Context, repoPath, rev)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", hg.CompositeStateFile, err)
		}

		report := &output.SubstateReport{
			RepoPath:    repoPath,
			Rev:         rev,
			GeneratedAt: time.Now(),
			Transitions: hg.MergeSubStates(hg.ParseSubStates(diff)),
		}
		return writeSubstateReport(ctx, c, report)
	})
}
