package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chaz8081/sargam-writer/internal/transcribe"
	"github.com/chaz8081/sargam-writer/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var opts outputOptions

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Transcribe every new audio file dropped into DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd, ctx); err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pipeline := transcribe.New()
			store := ctx.openHistory()
			defer store.Close()

			w := watch.New(args[0], cfg.Watch.Extensions, func(path string) {
				tr, err := pipeline.Transcribe(path)
				record(sigCtx, store, tr, err, path)
				emit(cmd, tr, err, opts, true)
			})
			return w.Run(sigCtx)
		},
	}

	opts.bind(cmd)
	return cmd
}
