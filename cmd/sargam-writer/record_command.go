package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/sargam-writer/internal/audio"
	"github.com/chaz8081/sargam-writer/internal/report"
	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var opts outputOptions
	var seconds float64
	var savePath string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture a melody from the microphone and transcribe it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if seconds <= 0 {
				return fmt.Errorf("--seconds must be > 0, got %g", seconds)
			}
			if err := opts.resolve(cmd, ctx); err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()

			recorder, err := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.Channels)
			if err != nil {
				return fmt.Errorf("%w\n\nEnsure microphone access is granted to this terminal", err)
			}
			defer recorder.Close()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			d := time.Duration(seconds * float64(time.Second))
			fmt.Fprintf(cmd.ErrOrStderr(), "Recording for %s (Ctrl+C to stop early)...\n", d)
			w, err := recorder.Capture(sigCtx, d)
			if err != nil {
				return err
			}
			slog.Info("captured audio", "duration", w.Duration().Round(time.Millisecond))

			if savePath != "" {
				if err := audio.WriteWAV(savePath, w); err != nil {
					return err
				}
				slog.Info("saved capture", "path", savePath)
			}

			stderr := cmd.ErrOrStderr()
			prog := newProgress(stderr, report.ShouldColorize(stderr))
			prog.begin("microphone")
			tr, err := transcribe.New(transcribe.WithObserver(prog.observe)).Process(w, "microphone")
			store := ctx.openHistory()
			defer store.Close()
			record(cmd.Context(), store, tr, err, "microphone")
			if !emit(cmd, tr, err, opts, false) {
				return errFailures
			}
			return nil
		},
	}

	opts.bind(cmd)
	cmd.Flags().Float64VarP(&seconds, "seconds", "s", 5, "Capture length in seconds")
	cmd.Flags().StringVarP(&savePath, "save", "o", "", "Also write the capture to this WAV file")
	return cmd
}
