package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

// progress shows a spinner with the current pipeline state on a terminal.
// On any other writer it does nothing.
type progress struct {
	w       io.Writer
	enabled bool
	source  string
	bar     *progressbar.ProgressBar
}

func newProgress(w io.Writer, enabled bool) *progress {
	return &progress{w: w, enabled: enabled}
}

// begin labels the next run.
func (p *progress) begin(source string) {
	p.source = filepath.Base(source)
}

// observe is a transcribe.Observer.
func (p *progress) observe(_ string, s transcribe.State) {
	if !p.enabled {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	p.bar.Describe(fmt.Sprintf("%s: %s", p.source, s))
	_ = p.bar.Add(1)
	if s.Terminal() {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
