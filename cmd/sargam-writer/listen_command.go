package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/chaz8081/sargam-writer/internal/audio"
	"github.com/chaz8081/sargam-writer/internal/config"
	"github.com/chaz8081/sargam-writer/internal/history"
	"github.com/chaz8081/sargam-writer/internal/hotkey"
	"github.com/chaz8081/sargam-writer/internal/inject"
	"github.com/chaz8081/sargam-writer/internal/report"
	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

func newListenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Transcribe melodies captured while the hotkey is active and type the notation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return listen(cmd, ctx, cfg)
		},
	}
}

// acquireInstanceLock takes an exclusive lock at path so only one listener
// owns the global hotkey.
func acquireInstanceLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another sargam-writer listener is already running")
	}
	return lock, nil
}

func listen(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) error {
	lockPath := filepath.Join(config.DefaultDataDir(), "listen.lock")
	lock, err := acquireInstanceLock(lockPath)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	printBanner(cmd, cfg)

	recorder, err := audio.NewRecorder(cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		return fmt.Errorf("%w\n\nEnsure microphone access is granted to this terminal", err)
	}
	slog.Info("audio recorder ready")

	pipeline := transcribe.New()
	store := ctx.openHistory()
	defer store.Close()
	injector := inject.NewInjector(cfg.Inject.Method)
	listener := hotkey.NewListener(cfg.Hotkey.Keys, cfg.Hotkey.Mode)
	combo := strings.Join(cfg.Hotkey.Keys, "+")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go listener.Start()
	slog.Info("ready", "hotkey", combo, "mode", cfg.Hotkey.Mode, "inject", injector.Method())

	events := listener.Events()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				slog.Info("hotkey listener stopped")
				return recorder.Close()
			}

			switch ev.Type {
			case hotkey.EventCaptureStart:
				if err := recorder.Start(); err != nil {
					slog.Error("failed to start capture", "error", err)
					continue
				}
				slog.Info("capturing")

			case hotkey.EventCaptureStop:
				w := recorder.Stop()
				if w == nil {
					continue
				}
				if d := w.Duration().Seconds(); d < cfg.Audio.MinDuration {
					slog.Info("capture too short, skipping", "duration", fmt.Sprintf("%.1fs", d))
					continue
				}
				go transcribeAndInject(cmd, pipeline, store, injector, w, cfg.Output.Collapse)
			}

		case sig := <-sigCh:
			slog.Info("shutting down", "signal", sig)
			if recorder.IsRecording() {
				recorder.Stop()
			}
			_ = recorder.Close()
			_ = store.Close()
			_ = lock.Unlock()
			// Exit directly to avoid gohook's C cleanup crash.
			// The OS reclaims the event hook on process exit.
			os.Exit(0)
		}
	}
}

// transcribeAndInject runs off the event loop so the hotkey stays
// responsive while a phrase is analyzed.
func transcribeAndInject(cmd *cobra.Command, p *transcribe.Pipeline, store *history.Store, inj *inject.Injector, w *audio.Waveform, collapse bool) {
	start := time.Now()
	tr, err := p.Process(w, "microphone")
	record(context.Background(), store, tr, err, "microphone")
	if err != nil {
		report.WriteFailure(cmd.ErrOrStderr(), err, false)
		return
	}

	text := tr.Render(collapse)
	slog.Info("transcribed", "elapsed", time.Since(start).Round(time.Millisecond), "notation", text)
	fmt.Fprintln(cmd.OutOrStdout(), text)

	if err := inj.Inject(text + " "); err != nil {
		slog.Error("notation injection failed", "error", err)
	}
}

// printBanner displays the startup configuration summary.
func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, "=== sargam-writer ===")
	fmt.Fprintf(out, "  Hotkey:  %s (%s mode)\n", strings.Join(cfg.Hotkey.Keys, "+"), cfg.Hotkey.Mode)
	fmt.Fprintf(out, "  Audio:   %dHz, %dch, min %.1fs\n", cfg.Audio.SampleRate, cfg.Audio.Channels, cfg.Audio.MinDuration)
	fmt.Fprintf(out, "  Inject:  %s\n", cfg.Inject.Method)
	fmt.Fprintf(out, "  Log:     %s\n", cfg.LogLevel)
	fmt.Fprintln(out, "=====================")
}
