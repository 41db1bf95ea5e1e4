package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gfcedit/workspace"
)

func newLSPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := opts.schema
			if schema != "" {
				if abs, err := filepath.Abs(schema); err == nil {
					schema = abs
				}
			}
			server := workspace.NewLSPServer(version, schema)
			return server.RunStdio()
		},
	}
}
