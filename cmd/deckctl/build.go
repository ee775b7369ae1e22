package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slidedeck/internal/assembler"
	"slidedeck/internal/blob"
	"slidedeck/internal/watch"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		assets       []string
		watchContent bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble the active slides into a new deck generation",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.build(ctx, assets); err != nil {
				return err
			}
			if !watchContent {
				return nil
			}
			_, content, err := a.openRegistry(ctx)
			if err != nil {
				return err
			}
			root := blob.LocalRoot(content)
			if root == "" {
				return usageError{errors.New("--watch requires the fs content driver")}
			}
			w, err := watch.New(root, func(ctx context.Context) error {
				return a.build(ctx, assets)
			}, watch.WithLogger(a.logger))
			if err != nil {
				return fmt.Errorf("watch %s: %w", root, err)
			}
			return w.Run(ctx)
		},
	}
	cmd.Flags().StringArrayVar(&assets, "asset", nil, "content key of a static asset to copy next to the slides (repeatable)")
	cmd.Flags().BoolVar(&watchContent, "watch", false, "rebuild when content changes (fs driver only)")
	return cmd
}

func (a *app) build(ctx context.Context, extraAssets []string) error {
	reg, content, err := a.openRegistry(ctx)
	if err != nil {
		return err
	}
	out, err := a.openOutput(ctx)
	if err != nil {
		return err
	}
	frags, err := a.fragments()
	if err != nil {
		return err
	}
	asm := assembler.New(reg, assembler.BlobLoader{Store: content}, out,
		assembler.WithPalette(a.cfg.Palette()),
		assembler.WithLogger(a.logger),
		assembler.WithRecorder(a.metrics),
		assembler.WithTracer(a.tracer),
		assembler.WithConcurrency(a.cfg.Deck.Concurrency),
		assembler.WithPrefix(a.cfg.Output.Prefix))
	assets := append(append([]string(nil), a.cfg.Deck.Assets...), extraAssets...)
	res, err := asm.Assemble(ctx, frags, assembler.AssembleOptions{
		Title:    a.cfg.Deck.Title,
		Subtitle: a.cfg.Deck.Subtitle,
		Assets:   assets,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "generation %s: %d slides, %d assets\n", res.Generation, len(res.Artifacts), len(res.Assets))
	for _, w := range res.Warnings {
		fmt.Fprintf(a.stdout, "warning: %s\n", w)
	}
	for _, w := range res.AssetWarnings {
		fmt.Fprintf(a.stdout, "warning: %s\n", w)
	}
	url, err := out.PresignURL(ctx, res.TOC.Key, blob.SignedURLOptions{})
	switch {
	case err == nil:
		fmt.Fprintf(a.stdout, "toc: %s\n", url)
	case errors.Is(err, blob.ErrUnsupported):
		fmt.Fprintf(a.stdout, "toc: %s\n", res.TOC.Key)
	default:
		return fmt.Errorf("toc url: %w", err)
	}
	return nil
}

// fragments returns the default fragments with any configured overrides.
func (a *app) fragments() (assembler.Fragments, error) {
	frags := assembler.DefaultFragments()
	if p := a.cfg.Deck.HeadFragment; p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return frags, fmt.Errorf("read head fragment: %w", err)
		}
		frags.Head = string(b)
	}
	if p := a.cfg.Deck.BodyFragment; p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return frags, fmt.Errorf("read body fragment: %w", err)
		}
		frags.Body = string(b)
	}
	return frags, nil
}
