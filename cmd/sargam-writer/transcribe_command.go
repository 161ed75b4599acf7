package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chaz8081/sargam-writer/internal/report"
	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

// errFailures is returned when at least one input could not be transcribed.
// The individual failures have already been printed.
var errFailures = errors.New("one or more files failed")

type outputOptions struct {
	format   string
	collapse bool
	expect   string
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Output format: text or table (default from config)")
	cmd.Flags().BoolVar(&o.collapse, "collapse", false, "Merge repeated consecutive symbols")
	cmd.Flags().StringVar(&o.expect, "expect", "", "Reference notation to score against, e.g. \"Sa Re Ga\"")
}

// resolve fills unset flags from the config.
func (o *outputOptions) resolve(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if o.format == "" {
		o.format = cfg.Output.Format
	}
	if !cmd.Flags().Changed("collapse") {
		o.collapse = cfg.Output.Collapse
	}
	switch o.format {
	case "text", "table":
	default:
		return fmt.Errorf("--format must be text or table, got %q", o.format)
	}
	return nil
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var opts outputOptions

	cmd := &cobra.Command{
		Use:   "transcribe FILE...",
		Short: "Transcribe WAV or MP3 files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.resolve(cmd, ctx); err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			prog := newProgress(stderr, report.ShouldColorize(stderr))
			pipeline := transcribe.New(transcribe.WithObserver(prog.observe))
			store := ctx.openHistory()
			defer store.Close()

			failed := 0
			for _, path := range args {
				prog.begin(path)
				tr, err := pipeline.Transcribe(path)
				record(cmd.Context(), store, tr, err, path)
				if !emit(cmd, tr, err, opts, len(args) > 1) {
					failed++
				}
			}
			if failed > 0 {
				return errFailures
			}
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}

// emit prints one result or failure and reports whether it succeeded.
func emit(cmd *cobra.Command, tr *transcribe.Transcription, err error, opts outputOptions, header bool) bool {
	out := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if err != nil {
		report.WriteFailure(stderr, err, report.ShouldColorize(stderr))
		return false
	}
	if werr := report.WriteResult(out, tr, opts.format, opts.collapse, header); werr != nil {
		report.WriteFailure(stderr, werr, false)
		return false
	}
	if strings.TrimSpace(opts.expect) != "" {
		res := transcribe.ComputeSER(opts.expect, tr.Render(opts.collapse))
		report.WriteScore(out, res, report.ShouldColorize(out))
	}
	return true
}
