package sargam

import "github.com/chaz8081/sargam-writer/internal/pitch"

// Convert runs the whole conversion over a pitch track. An empty or
// all-unvoiced track yields empty slices rather than an error.
func Convert(estimates []pitch.Estimate) ([]NoteName, []Class, []Symbol) {
	notes := ToNoteNames(estimates)
	classes := ToClasses(notes)
	return notes, classes, Annotate(classes, notes)
}
