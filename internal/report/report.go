// Package report formats transcriptions and failures for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/chaz8081/sargam-writer/internal/transcribe"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// Segment is a run of identical consecutive symbols.
type Segment struct {
	Start, End float64 // seconds, times of the first and last frame
	Frames     int
	Event      transcribe.Event // first event of the run
}

// Segments groups the events of tr into runs of the same symbol. Without
// collapse every event is its own segment.
func Segments(tr *transcribe.Transcription, collapse bool) []Segment {
	var segs []Segment
	for _, ev := range tr.Events {
		if collapse && len(segs) > 0 && segs[len(segs)-1].Event.Symbol == ev.Symbol {
			last := &segs[len(segs)-1]
			last.End = ev.Time
			last.Frames++
			continue
		}
		segs = append(segs, Segment{Start: ev.Time, End: ev.Time, Frames: 1, Event: ev})
	}
	return segs
}

// Table renders one row per segment: index, time, frequency, note name,
// swara, symbol, confidence and frame count.
func Table(tr *transcribe.Transcription, collapse bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Time", "Hz", "Note", "Swara", "Symbol", "Conf", "Frames"})

	for i, seg := range Segments(tr, collapse) {
		ev := seg.Event
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			formatSpan(seg),
			fmt.Sprintf("%.1f", ev.Hz),
			ev.Note.String(),
			ev.Class.String(),
			ev.Symbol.String(),
			fmt.Sprintf("%.2f", ev.Confidence),
			strconv.Itoa(seg.Frames),
		})
	}

	right := []int{1, 2, 3, 7, 8}
	configs := make([]table.ColumnConfig, 0, len(right))
	for _, n := range right {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func formatSpan(seg Segment) string {
	if seg.Frames == 1 {
		return fmt.Sprintf("%.3fs", seg.Start)
	}
	return fmt.Sprintf("%.3f-%.3fs", seg.Start, seg.End)
}

// Failure formats err as "<Kind>: <message>".
func Failure(err error) string {
	return transcribe.KindOf(err).String() + ": " + err.Error()
}

// WriteResult prints the notation for one source in the requested format.
// A header naming the source is added when more than one file is printed.
func WriteResult(w io.Writer, tr *transcribe.Transcription, format string, collapse, header bool) error {
	if header {
		if _, err := fmt.Fprintf(w, "== %s ==\n", tr.Source); err != nil {
			return err
		}
	}
	out := tr.Render(collapse)
	if format == "table" {
		out = Table(tr, collapse)
	}
	_, err := fmt.Fprintln(w, out)
	return err
}

// WriteFailure prints a failure line, in red when colorize is set.
func WriteFailure(w io.Writer, err error, colorize bool) {
	line := Failure(err)
	if colorize {
		line = ansiRed + line + ansiReset
	}
	fmt.Fprintln(w, line)
}

// WriteScore prints the symbol error rate against an expected transcription.
func WriteScore(w io.Writer, res transcribe.SERResult, colorize bool) {
	line := fmt.Sprintf("SER %.1f%% (S=%d I=%d D=%d, %d reference symbols)",
		res.SER*100, res.Substitutions, res.Insertions, res.Deletions, res.RefSymbols)
	if colorize && res.SER == 0 {
		line = ansiGreen + line + ansiReset
	}
	fmt.Fprintln(w, line)
}

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
