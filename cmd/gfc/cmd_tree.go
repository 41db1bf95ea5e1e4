package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gfcedit/census"
	"github.com/dhamidi/gfcedit/format"
)

func newTreeCmd(opts *globalOptions) *cobra.Command {
	var (
		outFormat string
		all       bool
		instances bool
		root      string
	)

	cmd := &cobra.Command{
		Use:   "tree <file.gfc>",
		Short: "Print the class tree with (direct/inclusive) counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.openWorkspace()
			if err != nil {
				return err
			}
			doc, err := ws.ScanFile(args[0])
			if err != nil {
				return err
			}

			h := doc.Schema.Hierarchy
			treeOpts := census.TreeOptions{HideEmpty: !all && ws.Config().HideEmpty}
			if root != "" {
				name, ok := h.Resolve(root)
				if !ok {
					return fmt.Errorf("unknown class %q", root)
				}
				treeOpts.Root = name
			}
			report := &format.Report{Tree: doc.Census.Tree(h, treeOpts)}

			switch outFormat {
			case "text":
				enc := format.NewTextEncoder(cmd.OutOrStdout())
				enc.Instances = instances
				return enc.Encode(report)
			case "json":
				report.Path = doc.Path
				return format.NewJSONEncoder(cmd.OutOrStdout()).Encode(report)
			default:
				return fmt.Errorf("unknown format: %s (expected text or json)", outFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "text", "output format (text, json)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include classes without instances")
	cmd.Flags().BoolVarP(&instances, "instances", "i", false, "list instances below their class")
	cmd.Flags().StringVarP(&root, "root", "r", "", "only print the subtree of this class")

	return cmd
}
