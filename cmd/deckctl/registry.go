package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"slidedeck/internal/registry"
	"slidedeck/internal/section"
	"slidedeck/pkg/domain"
)

func newRegistryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and seed the slide registry",
	}
	cmd.AddCommand(newRegistryListCmd(a), newRegistryImportCmd(a), newRegistryExportCmd(a))
	return cmd
}

func newRegistryListCmd(a *app) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry records in deck order",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			records, err := reg.List(cmd.Context())
			if err != nil {
				return err
			}
			if activeOnly {
				records = domain.ActiveRecords(records)
			}
			printRecords(a, records, a.cfg.Palette())
			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only list active records")
	return cmd
}

func printRecords(a *app, records []domain.SlideRecord, p section.Palette) {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDINAL\tSLUG\tTITLE\tSECTION\tACTIVE\tCONTENT")
	for _, r := range records {
		label := r.SectionLabel()
		styled := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color(label))).Render(p.Display(label))
		active := "yes"
		if !r.Active {
			active = "no"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Ordinal, r.Slug, r.Title, styled, active, r.ContentRef)
	}
	_ = tw.Flush()
	fmt.Fprintf(a.stdout, "%d records, %d active\n", len(records), countActive(records))
}

func newRegistryImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Replace the registry with the records of a YAML seed file",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			records, err := registry.ReadSeed(f)
			if err != nil {
				return err
			}
			reg, _, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			if err := reg.ReplaceAll(cmd.Context(), records); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "imported %d records (%d active)\n", len(records), countActive(records))
			return nil
		},
	}
}

func newRegistryExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the registry as a YAML seed",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := a.openRegistry(cmd.Context())
			if err != nil {
				return err
			}
			records, err := reg.List(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" {
				return registry.WriteSeed(a.stdout, records)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := registry.WriteSeed(f, records); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}
