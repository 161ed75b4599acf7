package sargam

import (
	"math"
	"reflect"
	"testing"

	"github.com/chaz8081/sargam-writer/internal/pitch"
)

func voiced(hz ...float64) []pitch.Estimate {
	out := make([]pitch.Estimate, len(hz))
	for i, f := range hz {
		out[i] = pitch.Estimate{Frame: i, Hz: f, Voiced: true}
	}
	return out
}

func TestNoteFromFrequency(t *testing.T) {
	tests := []struct {
		hz   float64
		want NoteName
	}{
		{440.0, NoteName{A, 4}},
		{220.0, NoteName{A, 3}},
		{880.0, NoteName{A, 5}},
		{261.63, NoteName{C, 4}},
		{329.63, NoteName{E, 4}},
		{65.41, NoteName{C, 2}},
		{2093.0, NoteName{C, 7}},
		{123.47, NoteName{B, 2}},
		{466.16, NoteName{ASharp, 4}},
		{27.5, NoteName{A, 0}},
		{16.35, NoteName{C, 0}},
		{8.18, NoteName{C, -1}},
	}

	for _, tt := range tests {
		if got := NoteFromFrequency(tt.hz); got != tt.want {
			t.Errorf("NoteFromFrequency(%.2f) = %s, want %s", tt.hz, got, tt.want)
		}
	}
}

func TestNoteFromFrequencyAnalysisRange(t *testing.T) {
	for hz := 65.01; hz < 2093; hz *= 1.0023 {
		n := NoteFromFrequency(hz)
		if n.Octave < 2 || n.Octave > 7 {
			t.Fatalf("NoteFromFrequency(%.3f) octave = %d, want 2..7", hz, n.Octave)
		}
		if n.Class < C || n.Class > B {
			t.Fatalf("NoteFromFrequency(%.3f) class = %d, out of range", hz, n.Class)
		}
	}
}

func TestNoteFromFrequencyQuartertone(t *testing.T) {
	// 45 cents above A4 still rounds to A4, 55 cents above rounds to A#4.
	if got := NoteFromFrequency(440 * math.Pow(2, 0.45/12)); got != (NoteName{A, 4}) {
		t.Errorf("A4+45c = %s, want A4", got)
	}
	if got := NoteFromFrequency(440 * math.Pow(2, 0.55/12)); got != (NoteName{ASharp, 4}) {
		t.Errorf("A4+55c = %s, want A#4", got)
	}
}

func TestNoteNameString(t *testing.T) {
	if got := (NoteName{CSharp, 5}).String(); got != "C#5" {
		t.Errorf("String() = %q, want %q", got, "C#5")
	}
	if got := (NoteName{C, -1}).String(); got != "C-1" {
		t.Errorf("String() = %q, want %q", got, "C-1")
	}
}

func TestToNoteNamesDropsUnvoiced(t *testing.T) {
	estimates := []pitch.Estimate{
		{Frame: 0, Hz: 261.63, Voiced: true},
		pitch.Unvoiced(1, 0.1),
		{Frame: 2, Hz: 329.63, Voiced: true},
		pitch.Unvoiced(3, 0.2),
	}

	got := ToNoteNames(estimates)
	want := []NoteName{{C, 4}, {E, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToNoteNames() = %v, want %v", got, want)
	}
}

func TestToNoteNamesSkipsUnusableFrequencies(t *testing.T) {
	tests := []struct {
		name string
		hz   float64
	}{
		{"zero", 0},
		{"negative", -440},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimates := []pitch.Estimate{
				{Frame: 0, Hz: 261.63, Voiced: true},
				{Frame: 1, Hz: tt.hz, Voiced: true},
				{Frame: 2, Hz: 329.63, Voiced: true},
			}
			notes, _, symbols := Convert(estimates)
			if want := []NoteName{{C, 4}, {E, 4}}; !reflect.DeepEqual(notes, want) {
				t.Errorf("notes = %v, want %v", notes, want)
			}
			if got := Render(symbols); got != "Sa Ga" {
				t.Errorf("symbols = %q, want %q", got, "Sa Ga")
			}
		})
	}
}

func TestClassOfIsTotal(t *testing.T) {
	want := map[PitchClass]Class{
		C: Sa, CSharp: Re, D: Re, DSharp: Ga, E: Ga, F: Ma,
		FSharp: Ma, G: Pa, GSharp: Dha, A: Dha, ASharp: Ni, B: Ni,
	}
	for p := C; p <= B; p++ {
		if got := ClassOf(p); got != want[p] {
			t.Errorf("ClassOf(%s) = %s, want %s", p, got, want[p])
		}
	}
}

// Pitch classes outside the twelve-entry table fall back to Sa on purpose;
// this is a lossy default, not a bug.
func TestClassOfUnknownDefaultsToSa(t *testing.T) {
	for _, p := range []PitchClass{-1, 12, 42} {
		if got := ClassOf(p); got != Sa {
			t.Errorf("ClassOf(%d) = %s, want Sa", p, got)
		}
	}
}

func TestToClassesAligned(t *testing.T) {
	notes := []NoteName{{A, 3}, {A, 4}, {G, 5}, {F, 4}}
	got := ToClasses(notes)
	want := []Class{Dha, Dha, Pa, Ma}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToClasses() = %v, want %v", got, want)
	}
}

func TestMarkerFor(t *testing.T) {
	tests := []struct {
		octave int
		want   Marker
	}{
		{4, MarkerNone},
		{3, MarkerLow},
		{2, MarkerLow},
		{0, MarkerLow},
		{5, MarkerHigh},
		{7, MarkerHigh},
	}
	for _, tt := range tests {
		if got := MarkerFor(tt.octave); got != tt.want {
			t.Errorf("MarkerFor(%d) = %v, want %v", tt.octave, got, tt.want)
		}
	}
}

func TestAnnotateSingleLevelMarkers(t *testing.T) {
	notes := []NoteName{{A, 4}, {A, 3}, {A, 2}, {A, 5}, {A, 6}}
	got := Render(Annotate(ToClasses(notes), notes))
	want := "Dha .Dha .Dha 'Dha 'Dha"
	if got != want {
		t.Errorf("Render(Annotate()) = %q, want %q", got, want)
	}
}

func TestAnnotateLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Annotate() with mismatched lengths should panic")
		}
	}()
	Annotate([]Class{Sa}, nil)
}

func TestConvertScenarios(t *testing.T) {
	tests := []struct {
		name      string
		estimates []pitch.Estimate
		want      string
	}{
		{"A4", voiced(440.0), "Dha"},
		{"A3", voiced(220.0), ".Dha"},
		{"A5", voiced(880.0), "'Dha"},
		{
			name: "C4 unvoiced E4",
			estimates: []pitch.Estimate{
				{Frame: 0, Hz: 261.63, Voiced: true},
				pitch.Unvoiced(1, 0),
				{Frame: 2, Hz: 329.63, Voiced: true},
			},
			want: "Sa Ga",
		},
		{"empty", nil, ""},
		{"all unvoiced", []pitch.Estimate{pitch.Unvoiced(0, 0)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, classes, symbols := Convert(tt.estimates)
			if len(notes) != pitch.CountVoiced(tt.estimates) {
				t.Errorf("len(notes) = %d, want %d", len(notes), pitch.CountVoiced(tt.estimates))
			}
			if len(classes) != len(notes) || len(symbols) != len(classes) {
				t.Errorf("lengths notes=%d classes=%d symbols=%d, want equal", len(notes), len(classes), len(symbols))
			}
			if got := Render(symbols); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertDeterministic(t *testing.T) {
	estimates := voiced(65.5, 110, 196, 261.63, 293.66, 440, 587.33, 1046.5, 2000)
	_, _, first := Convert(estimates)
	_, _, second := Convert(estimates)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Convert() not deterministic: %v vs %v", first, second)
	}
}

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		in      string
		want    Symbol
		wantErr bool
	}{
		{"Sa", Symbol{Sa, MarkerNone}, false},
		{".Dha", Symbol{Dha, MarkerLow}, false},
		{"'Pa", Symbol{Pa, MarkerHigh}, false},
		{"Do", Symbol{}, true},
		{".", Symbol{}, true},
		{"''Sa", Symbol{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSymbol(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSymbol(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSymbol(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && got.String() != tt.in {
			t.Errorf("ParseSymbol(%q).String() = %q", tt.in, got.String())
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(" .Sa  Re\t'Pa ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if Render(got) != ".Sa Re 'Pa" {
		t.Errorf("Render(Parse()) = %q", Render(got))
	}
	if _, err := Parse("Sa Xa"); err == nil {
		t.Error("Parse() should fail on unknown swara")
	}
}

func TestCollapse(t *testing.T) {
	in, err := Parse("Sa Sa Sa Re Re .Re Re Sa")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := Render(Collapse(in)); got != "Sa Re .Re Re Sa" {
		t.Errorf("Collapse() = %q, want %q", got, "Sa Re .Re Re Sa")
	}
	if got := Collapse(nil); len(got) != 0 {
		t.Errorf("Collapse(nil) = %v, want empty", got)
	}
}
