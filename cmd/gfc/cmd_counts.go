package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/gfcedit/format"
	"github.com/dhamidi/gfcedit/workspace"
)

func newCountsCmd(opts *globalOptions) *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "counts <file.gfc>...",
		Short: "Count instances per class, directly and including subtypes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.NewEncoder(outFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ws, err := opts.openWorkspace()
			if err != nil {
				return err
			}

			docs := make([]*workspace.Document, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					doc, err := ws.ScanFile(path)
					if err != nil {
						return err
					}
					docs[i] = doc
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			threshold := float32(ws.Config().SuggestThreshold)
			for _, doc := range docs {
				if err := enc.Encode(format.DocumentReport(doc, threshold)); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "text", "output format (text, json)")

	return cmd
}
