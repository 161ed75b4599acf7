package sargam

// Class is one of the seven Sargam swaras.
type Class int

const (
	Sa Class = iota
	Re
	Ga
	Ma
	Pa
	Dha
	Ni
)

var classNames = [...]string{"Sa", "Re", "Ga", "Ma", "Pa", "Dha", "Ni"}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "?"
	}
	return classNames[c]
}

// westernToSargam collapses the twelve pitch classes onto seven swaras;
// chromatic neighbours share a class.
var westernToSargam = map[PitchClass]Class{
	C:      Sa,
	CSharp: Re,
	D:      Re,
	DSharp: Ga,
	E:      Ga,
	F:      Ma,
	FSharp: Ma,
	G:      Pa,
	GSharp: Dha,
	A:      Dha,
	ASharp: Ni,
	B:      Ni,
}

// ClassOf maps a pitch class to its swara. Anything outside the table maps
// to Sa rather than failing.
func ClassOf(p PitchClass) Class {
	if c, ok := westernToSargam[p]; ok {
		return c
	}
	return Sa
}

// ToClasses maps each note's pitch class, ignoring octave. The result is
// position-aligned with notes.
func ToClasses(notes []NoteName) []Class {
	classes := make([]Class, len(notes))
	for i, n := range notes {
		classes[i] = ClassOf(n.Class)
	}
	return classes
}

// ParseClass returns the swara named s.
func ParseClass(s string) (Class, bool) {
	for i, name := range classNames {
		if name == s {
			return Class(i), true
		}
	}
	return Sa, false
}
