package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slidedeck/internal/reorg"
)

func newReorganizeCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "reorganize <plan.hcl>",
		Short: "Apply an HCL reorganization plan to the registry and content",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := reorg.LoadPlanFile(args[0])
			if err != nil {
				return err
			}
			reg, content, err := a.openRegistry(ctx)
			if err != nil {
				return err
			}
			r := reorg.New(reg, content,
				reorg.WithLogger(a.logger),
				reorg.WithRecorder(a.metrics),
				reorg.WithTracer(a.tracer))
			var rep reorg.Report
			if dryRun {
				rep, err = r.Preview(ctx, plan)
			} else {
				rep, err = r.Apply(ctx, plan)
			}
			if err != nil {
				return err
			}
			printReport(a, rep, dryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and show the changes without applying them")
	return cmd
}

func printReport(a *app, rep reorg.Report, dryRun bool) {
	verb := "applied"
	if dryRun {
		verb = "would apply"
	}
	fmt.Fprintf(a.stdout, "%s: %d records, %d moves, %d removed\n", verb, len(rep.Records), len(rep.Moves), len(rep.Removed))
	for _, mv := range rep.Moves {
		fmt.Fprintf(a.stdout, "  move %s -> %s\n", mv.From, mv.To)
	}
	for _, r := range rep.Removed {
		fmt.Fprintf(a.stdout, "  remove %s\n", r)
	}
	for _, key := range rep.Pruned {
		fmt.Fprintf(a.stdout, "  pruned %s\n", key)
	}
	for _, w := range rep.Warnings {
		fmt.Fprintf(a.stdout, "warning: %s\n", w)
	}
}
