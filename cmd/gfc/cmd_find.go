package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gfcedit/format"
	"github.com/dhamidi/gfcedit/gfc"
)

func newFindCmd(opts *globalOptions) *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "find <file.gfc> <#id>",
		Short: "Print the location of the line defining an instance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := gfc.ParseIndex(args[1])
			if !ok {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid instance id %q", args[1])
				}
				id = n
			}

			enc, err := format.NewEncoder(outFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ws, err := opts.openWorkspace()
			if err != nil {
				return err
			}
			doc, err := ws.ScanFile(args[0])
			if err != nil {
				return err
			}
			loc, ok := format.Locate(doc, id)
			if !ok {
				return fmt.Errorf("%s: #%d: %w", doc.Path, id, gfc.ErrNoInstance)
			}
			return enc.Encode(&format.Report{Path: doc.Path, Definition: loc})
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "text", "output format (text, json)")

	return cmd
}
