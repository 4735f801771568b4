package cmd

import (
	"fmt"
	"time"

	"github.com/masmgr/hglineage/internal/aggregation"
	"github.com/masmgr/hglineage/internal/hg"
	"github.com/masmgr/hglineage/internal/output"
	"github.com/masmgr/hglineage/internal/resolver"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// RangeCmd returns the range command.
func RangeCmd() *cli.Command {
	flags := append(commonFlags(),
		repoFlag(),
		&cli.StringFlag{
			Name:  "from",
			Usage: "Lower bound change set hash (exclusive)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Upper bound change set hash (inclusive)",
		},
		&cli.StringFlag{
			Name:    "tag",
			Aliases: []string{"t"},
			Usage:   "List the change sets since the previous tag on the same branch",
		},
		&cli.StringFlag{
			Name:  "ancestors",
			Usage: "List every ancestor of a change set hash, deepest first",
		},
		&cli.StringFlag{
			Name:    "subrepo",
			Aliases: []string{"s"},
			Usage:   "Query a resolved sub-repository instead of the root",
		},
	)

	return &cli.Command{
		Name:    "range",
		Aliases: []string{"rg"},
		Usage:   "List the change sets between two hashes, since the previous tag, or the ancestors of one",
		Flags:   flags,
		Action:  rangeAction,
	}
}

// rangeQuery holds the validated bounds of a range request.
type rangeQuery struct {
	From        string
	To          string
	Tag         string
	AncestorsOf string
}

func parseRangeQuery(from, to, tag, ancestorsOf string) (rangeQuery, error) {
	switch {
	case ancestorsOf != "" && (tag != "" || from != "" || to != ""):
		return rangeQuery{}, fmt.Errorf("--ancestors cannot be combined with --tag or --from/--to")
	case ancestorsOf != "":
		return rangeQuery{AncestorsOf: ancestorsOf}, nil
	case tag != "" && (from != "" || to != ""):
		return rangeQuery{}, fmt.Errorf("--tag cannot be combined with --from/--to")
	case tag != "":
		return rangeQuery{Tag: tag}, nil
	case from == "" || to == "":
		return rangeQuery{}, fmt.Errorf("either --tag, --ancestors or both --from and --to are required")
	default:
		return rangeQuery{From: from, To: to}, nil
	}
}

// run evaluates the query against repo.
func (q rangeQuery) run(repo *hg.Repository) []*hg.ChangeSet {
	switch {
	case q.AncestorsOf != "":
		return resolver.Ancestors(repo, repo.ChangeSetByHash(q.AncestorsOf))
	case q.Tag != "":
		return resolver.ChangeSetsBetweenTags(repo, q.Tag)
	default:
		return resolver.ChangeSetsBetween(repo, q.From, q.To)
	}
}

func rangeAction(c *cli.Context) error {
	query, err := parseRangeQuery(c.String("from"), c.String("to"), c.String("tag"), c.String("ancestors"))
	if err != nil {
		return err
	}

	return executeWithContext(c, func(ctx *CommandContext, c *cli.Context) error {
		repoPath := c.String("repo")
		root, err := ctx.Resolver.Resolve(c.Context, repoPath)
		if err != nil {
			return fmt.Errorf("failed to resolve: %w", err)
		}

		target := root
		if name := c.String("subrepo"); name != "" {
			target = ctx.Resolver.SubRepository(name)
			if target == nil {
				return fmt.Errorf("sub-repository %q was not resolved from %s", name, repoPath)
			}
		}

		changeSets := query.run(target)
		ctx.Logger.Debug("range evaluated",
			zap.String("repository", target.Name),
			zap.String("from", query.From),
			zap.String("to", query.To),
			zap.String("tag", query.Tag),
			zap.String("ancestors", query.AncestorsOf),
			zap.Int("changesets", len(changeSets)))

		report := &output.RangeReport{
			RepoPath:    repoPath,
			Repository:  target.Name,
			From:        query.From,
			To:          query.To,
			Tag:         query.Tag,
			AncestorsOf: query.AncestorsOf,
			GeneratedAt: time.Now(),
			Items:       aggregation.NewChangeSetMetricsCalculator().CalculateAll(changeSets),
		}
		return writeRangeReport(ctx, c, report)
	})
}
