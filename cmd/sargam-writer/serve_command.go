package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chaz8081/sargam-writer/internal/server"
	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transcription HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			opts := server.Options{
				AllowedOrigins: cfg.Server.AllowedOrigins,
				MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
			}
			if store := ctx.openHistory(); store != nil {
				defer store.Close()
				opts.History = store
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(transcribe.New(), opts).ListenAndServe(sigCtx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	return cmd
}
