package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("gfc")

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "gfc",
		Short:        "Inspect GFC data files against their EXPRESS schema",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.verboseSet = cmd.Flags().Changed("verbose")
			opts.logFileSet = cmd.Flags().Changed("log-file")
			opts.configureLogging(nil)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.schema, "schema", "s", "", "schema (.exp) file, overrides configuration and discovery")
	flags.StringVarP(&opts.config, "config", "c", "", "config file (.kdl or .toml), default .gfcedit.kdl or gfcedit.toml in the current directory")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newSchemaCmd(opts))
	rootCmd.AddCommand(newCountsCmd(opts))
	rootCmd.AddCommand(newTreeCmd(opts))
	rootCmd.AddCommand(newInspectCmd(opts))
	rootCmd.AddCommand(newFindCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))
	rootCmd.AddCommand(newUICmd(opts))
	rootCmd.AddCommand(newMCPCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
