package sargam

import (
	"fmt"
	"strings"
)

// ReferenceOctave is the madhya saptak: notes in octave 4 carry no marker.
const ReferenceOctave = 4

// Marker is the octave prefix of a Symbol. Every octave below the reference
// collapses onto Low and every octave above onto High.
type Marker int

const (
	MarkerNone Marker = iota
	MarkerLow
	MarkerHigh
)

// Prefix returns the marker as written in notation.
func (m Marker) Prefix() string {
	switch m {
	case MarkerLow:
		return "."
	case MarkerHigh:
		return "'"
	default:
		return ""
	}
}

// MarkerFor returns the marker for an octave number.
func MarkerFor(octave int) Marker {
	switch {
	case octave < ReferenceOctave:
		return MarkerLow
	case octave > ReferenceOctave:
		return MarkerHigh
	default:
		return MarkerNone
	}
}

// Symbol is a swara with its octave marker, e.g. ".Dha".
type Symbol struct {
	Class  Class
	Marker Marker
}

func (s Symbol) String() string {
	return s.Marker.Prefix() + s.Class.String()
}

// Annotate pairs classes with the octaves of notes position by position.
// The two slices must come from the same ToNoteNames call; a length mismatch
// is a programming error and panics.
func Annotate(classes []Class, notes []NoteName) []Symbol {
	if len(classes) != len(notes) {
		panic(fmt.Sprintf("sargam: annotate: %d classes for %d notes", len(classes), len(notes)))
	}

	symbols := make([]Symbol, len(classes))
	for i, c := range classes {
		symbols[i] = Symbol{Class: c, Marker: MarkerFor(notes[i].Octave)}
	}
	return symbols
}

// Render joins symbols with single spaces.
func Render(symbols []Symbol) string {
	tokens := make([]string, len(symbols))
	for i, s := range symbols {
		tokens[i] = s.String()
	}
	return strings.Join(tokens, " ")
}

// ParseSymbol parses a single notation token such as "'Pa".
func ParseSymbol(token string) (Symbol, error) {
	var sym Symbol
	switch {
	case strings.HasPrefix(token, "."):
		sym.Marker = MarkerLow
		token = token[1:]
	case strings.HasPrefix(token, "'"):
		sym.Marker = MarkerHigh
		token = token[1:]
	}

	c, ok := ParseClass(token)
	if !ok {
		return Symbol{}, fmt.Errorf("sargam: unknown swara %q", token)
	}
	sym.Class = c
	return sym, nil
}

// Parse splits whitespace-separated notation into symbols.
func Parse(text string) ([]Symbol, error) {
	fields := strings.Fields(text)
	symbols := make([]Symbol, 0, len(fields))
	for _, f := range fields {
		s, err := ParseSymbol(f)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, nil
}

// Collapse merges runs of identical consecutive symbols. Frame-level
// transcriptions repeat a held note once per analysis frame.
func Collapse(symbols []Symbol) []Symbol {
	out := make([]Symbol, 0, len(symbols))
	for i, s := range symbols {
		if i > 0 && s == symbols[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}
