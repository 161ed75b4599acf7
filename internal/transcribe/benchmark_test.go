package transcribe

import (
	"testing"

	"github.com/chaz8081/sargam-writer/internal/audio"
)

// benchMelody is a synthetic phrase and its collapsed reference notation.
type benchMelody struct {
	Label      string
	Notes      []float64 // Hz, each held for noteSeconds
	Reference  string
	SampleRate int
}

const noteSeconds = 0.5

var benchMelodies = []benchMelody{
	{
		Label:      "aroha_22k",
		Notes:      []float64{261.63, 293.66, 329.63, 349.23, 392.00, 440.00, 493.88, 523.25},
		Reference:  "Sa Re Ga Ma Pa Dha Ni 'Sa",
		SampleRate: 22050,
	},
	{
		Label:      "mandra_44k",
		Notes:      []float64{196.00, 220.00, 246.94, 261.63},
		Reference:  ".Pa .Dha .Ni Sa",
		SampleRate: 44100,
	},
}

func (m benchMelody) waveform() *audio.Waveform {
	var samples []float32
	for _, hz := range m.Notes {
		samples = tone(samples, hz, m.SampleRate, noteSeconds)
	}
	return &audio.Waveform{Samples: samples, SampleRate: m.SampleRate}
}

func BenchmarkPipelineProcess(b *testing.B) {
	p := New()

	for _, m := range benchMelodies {
		m := m // capture
		w := m.waveform()
		durationS := w.Duration().Seconds()

		b.Run(m.Label, func(b *testing.B) {
			// Report audio duration as a custom metric
			b.ReportMetric(durationS*1000, "audio-ms")

			var lastText string
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tr, err := p.Process(w, m.Label)
				if err != nil {
					b.Fatalf("Process: %v", err)
				}
				lastText = tr.Render(true)
			}
			b.StopTimer()

			// Compute and report RTF and SER after the benchmark loop
			elapsed := b.Elapsed()
			rtf := (elapsed.Seconds() / float64(b.N)) / durationS
			b.ReportMetric(rtf, "rtf")

			ser := ComputeSER(m.Reference, lastText)
			b.ReportMetric(ser.SER, "ser")
		})
	}
}
