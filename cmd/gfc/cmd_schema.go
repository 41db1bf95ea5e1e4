package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gfcedit/express"
	"github.com/dhamidi/gfcedit/format"
	"github.com/dhamidi/gfcedit/workspace"
)

func newSchemaCmd(opts *globalOptions) *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "schema [file.exp]",
		Short: "List the classes, supertypes and attributes of a schema",
		Long:  "List the classes of the given schema file, or of the configured or discovered schema when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.NewEncoder(outFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var path string
			var schema *express.Schema
			if len(args) == 1 {
				path = args[0]
				schema, err = express.ParseFile(path)
				if err != nil {
					return err
				}
			} else {
				ws, err := opts.openWorkspace()
				if err != nil {
					return err
				}
				snap := ws.Schema()
				if !snap.Loaded() {
					return workspace.ErrNoSchema
				}
				path, schema = snap.Path, snap.Schema
			}

			if err := enc.Encode(&format.Report{Schema: format.NewSchemaReport(path, schema)}); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "text", "output format (text, json)")

	return cmd
}
