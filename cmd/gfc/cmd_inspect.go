package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gfcedit/format"
	"github.com/dhamidi/gfcedit/workspace"
)

func newInspectCmd(opts *globalOptions) *cobra.Command {
	var (
		outFormat string
		offset    int
		id        int
	)

	cmd := &cobra.Command{
		Use:   "inspect <file.gfc> (--offset N | --id N)",
		Short: "Show the properties of one instance against its schema class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byOffset := cmd.Flags().Changed("offset")
			byID := cmd.Flags().Changed("id")
			if byOffset == byID {
				return errors.New("exactly one of --offset or --id is required")
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

			var in *workspace.Inspection
			if byID {
				in, err = ws.InspectID(doc.Path, id)
			} else {
				in, err = ws.Inspect(doc.Path, offset)
			}
			if err != nil {
				return err
			}
			return enc.Encode(&format.Report{Path: doc.Path, Inspection: in})
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().IntVarP(&offset, "offset", "o", 0, "byte offset on the instance's line")
	cmd.Flags().IntVar(&id, "id", 0, "instance id")

	return cmd
}
