package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhamidi/gfcedit/format"
	"github.com/dhamidi/gfcedit/workspace"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "watch <file.gfc>",
		Short: "Print counts again whenever the data file or the schema changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := format.NewEncoder(outFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ws, err := opts.openWorkspace()
			if err != nil {
				return err
			}
			threshold := float32(ws.Config().SuggestThreshold)

			var mu sync.Mutex
			ws.OnRecount(func(doc *workspace.Document) {
				if doc.Path != path {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if err := enc.Encode(format.DocumentReport(doc, threshold)); err != nil {
					log.Errorf("encode: %s", err)
				}
			})

			watcher, err := workspace.NewFileWatcher(ws.Config().Debounce())
			if err != nil {
				return err
			}
			defer watcher.Stop()

			if err := watcher.Watch(path, func(p string) {
				if _, err := ws.ScanFile(p); err != nil {
					log.Warningf("%s", err)
				}
			}); err != nil {
				return err
			}
			if ws.Schema().Loaded() {
				if err := ws.WatchSchema(watcher); err != nil {
					return err
				}
			}
			watcher.Start()

			if _, err := ws.ScanFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s, press Ctrl-C to stop\n", path)

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "text", "output format (text, json)")

	return cmd
}
