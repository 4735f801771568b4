package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/masmgr/hglineage/internal/output"
)

func writeGraphReport(ctx *CommandContext, c *cli.Context, report *output.GraphReport) error {
	opts := ctx.OutputOptions(c)
	writer := output.NewGraphReportWriter(opts.Format)
	return writer.Write(report, opts)
}

func writeRangeReport(ctx *CommandContext, c *cli.Context, report *output.RangeReport) error {
	opts := ctx.OutputOptions(c)
	writer := output.NewRangeReportWriter(opts.Format)
	return writer.Write(report, opts)
}

func writeSubstateReport(ctx *CommandContext, c *cli.Context, report *output.SubstateReport) error {
	opts := ctx.OutputOptions(c)
	writer := output.NewSubstateReportWriter(opts.Format)
	return writer.Write(report, opts)
}
