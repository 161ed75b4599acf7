// Package sargam converts pitch estimates into octave-marked Sargam symbols:
//
//	frequency -> NoteName -> Class -> Symbol
//
// Every step is a pure function over fixed tables.
package sargam

import (
	"math"
	"strconv"

	"github.com/chaz8081/sargam-writer/internal/pitch"
)

// PitchClass is a Western note ignoring octave, C = 0 through B = 11.
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func (p PitchClass) String() string {
	if p < 0 || int(p) >= len(pitchClassNames) {
		return "?"
	}
	return pitchClassNames[p]
}

// Reference tuning: A4 = 440 Hz = MIDI note 69.
const (
	referenceHz   = 440.0
	referenceMIDI = 69
)

// NoteName is a pitch class in a specific octave, e.g. A4.
type NoteName struct {
	Class  PitchClass
	Octave int
}

func (n NoteName) String() string {
	return n.Class.String() + strconv.Itoa(n.Octave)
}

// NoteFromFrequency quantizes hz to the nearest equal-tempered semitone.
// Exact half-semitone ties round to even.
func NoteFromFrequency(hz float64) NoteName {
	semitone := int(math.RoundToEven(12*math.Log2(hz/referenceHz))) + referenceMIDI
	return NoteName{
		Class:  PitchClass(floorMod(semitone, 12)),
		Octave: floorDiv(semitone, 12) - 1,
	}
}

// ToNoteNames names every voiced estimate, dropping unvoiced frames (and
// voiced frames without a usable frequency) and preserving order.
func ToNoteNames(estimates []pitch.Estimate) []NoteName {
	notes := make([]NoteName, 0, len(estimates))
	for _, e := range estimates {
		if !e.HasPitch() {
			continue
		}
		notes = append(notes, NoteFromFrequency(e.Hz))
	}
	return notes
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
