package cmd

import (
	"fmt"

	"github.com/masmgr/hglineage/config"
	"github.com/masmgr/hglineage/internal/gitsource"
	"github.com/masmgr/hglineage/internal/hg"
	"github.com/masmgr/hglineage/internal/logging"
	"github.com/masmgr/hglineage/internal/output"
	"github.com/masmgr/hglineage/internal/resolver"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// CommandContext holds common state for command execution.
type CommandContext struct {
	Config   *config.Config
	Logger   *zap.Logger
	Source   hg.TextSource
	Resolver *resolver.Resolver
}

// NewCommandContext loads configuration and builds the logger, the text
// source and a resolver from it.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging, c.Bool("verbose"))
	if err != nil {
		return nil, err
	}

	source, err := newSource(cfg.Source)
	if err != nil {
		return nil, err
	}

	r := resolver.New(source,
		resolver.WithLogger(logger),
		resolver.WithFilters(cfg.Filters.Include, cfg.Filters.Exclude),
		resolver.WithConcurrency(cfg.Resolve.Concurrency),
	)

	logger.Debug("command context ready",
		zap.String("backend", cfg.Source.Backend),
		zap.Int("concurrency", cfg.Resolve.Concurrency))

	return &CommandContext{
		Config:   cfg,
		Logger:   logger,
		Source:   source,
		Resolver: r,
	}, nil
}

// Close flushes the logger.
func (ctx *CommandContext) Close() {
	_ = ctx.Logger.Sync()
}

// OutputOptions creates OutputOptions from configuration and CLI flags.
func (ctx *CommandContext) OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:     getOutputFormat(ctx.Config.Output.Format),
		Top:        ctx.Config.Output.Top,
		OutputPath: c.String("output"),
	}
}

func newSource(cfg config.SourceConfig) (hg.TextSource, error) {
	switch cfg.Backend {
	case config.BackendHg:
		return hg.NewCLISource(cfg.HgExecutable), nil
	case config.BackendGit:
		return gitsource.New(cfg.GitBranch), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Backend)
	}
}

// executeWithContext runs fn with a prepared CommandContext.
func executeWithContext(c *cli.Context, fn func(ctx *CommandContext, c *cli.Context) error) error {
	ctx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	defer ctx.Close()
	return fn(ctx, c)
}
