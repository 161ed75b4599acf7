package pitch

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

var halfSemitone = math.Pow(2, 1.0/24)

// YIN estimates the fundamental frequency of each frame with the YIN
// cumulative-mean-normalized difference function. The lag correlation is
// computed with a real FFT, so the cost per frame is O(n log n).
type YIN struct {
	FMin, FMax float64
	// Threshold is the absolute dip a lag must reach in the normalized
	// difference function to count as periodic.
	Threshold float64
	// SilenceRMS gates frames quieter than this level as unvoiced.
	SilenceRMS float64
}

// NewYIN returns a tracker for the C2..C7 analysis range.
func NewYIN() *YIN {
	return &YIN{
		FMin:       FMin,
		FMax:       FMax,
		Threshold:  0.1,
		SilenceRMS: 0.01,
	}
}

// geometry holds the frame layout for one sample rate.
type geometry struct {
	minLag, maxLag int
	window         int // samples integrated per lag
	frame          int // window + maxLag + 1
	hop            int
	fftSize        int
}

func (y *YIN) geometry(sampleRate int) geometry {
	sr := float64(sampleRate)
	minLag := int(math.Floor(sr / y.FMax))
	if minLag < 2 {
		minLag = 2
	}
	maxLag := int(math.Ceil(sr / y.FMin))
	window := nextPow2(maxLag + 1)
	frame := window + maxLag + 1
	return geometry{
		minLag:  minLag,
		maxLag:  maxLag,
		window:  window,
		frame:   frame,
		hop:     window / 4,
		fftSize: nextPow2(frame),
	}
}

// Track implements Tracker. Input shorter than one frame is zero-padded and
// yields a single estimate.
func (y *YIN) Track(samples []float32, sampleRate int) ([]Estimate, error) {
	if len(samples) == 0 || sampleRate <= 0 {
		return nil, ErrEmptyWaveform
	}

	g := y.geometry(sampleRate)
	frames := 1
	if len(samples) > g.frame {
		frames = 1 + (len(samples)-g.frame)/g.hop
	}

	fft := fourier.NewFFT(g.fftSize)
	x := make([]float64, g.fftSize)
	head := make([]float64, g.fftSize)
	headCoeff := make([]complex128, g.fftSize/2+1)
	xCoeff := make([]complex128, g.fftSize/2+1)
	corr := make([]float64, g.fftSize)
	cum := make([]float64, g.frame+1)
	cmnd := make([]float64, g.maxLag+1)

	estimates := make([]Estimate, 0, frames)
	for i := 0; i < frames; i++ {
		start := i * g.hop
		t := float64(start+g.window/2) / float64(sampleRate)

		for k := range x {
			x[k] = 0
			if k < g.frame && start+k < len(samples) {
				x[k] = float64(samples[start+k])
			}
		}

		rms := math.Sqrt(floats.Dot(x[:g.window], x[:g.window]) / float64(g.window))
		if rms < y.SilenceRMS {
			estimates = append(estimates, Unvoiced(i, t))
			continue
		}

		// corr[tau] = sum_{j<window} x[j]*x[j+tau]; frame fits in fftSize
		// so the circular correlation never wraps for tau <= maxLag.
		for k := range head {
			head[k] = 0
		}
		copy(head, x[:g.window])
		fft.Coefficients(headCoeff, head)
		fft.Coefficients(xCoeff, x)
		for k := range xCoeff {
			xCoeff[k] = cmplx.Conj(headCoeff[k]) * xCoeff[k]
		}
		fft.Sequence(corr, xCoeff)
		floats.Scale(1/float64(g.fftSize), corr)

		cum[0] = 0
		for k := 0; k < g.frame; k++ {
			cum[k+1] = cum[k] + x[k]*x[k]
		}
		energy := func(lag int) float64 { return cum[lag+g.window] - cum[lag] }

		cmnd[0] = 1
		running := 0.0
		e0 := energy(0)
		for tau := 1; tau <= g.maxLag; tau++ {
			d := e0 + energy(tau) - 2*corr[tau]
			if d < 0 {
				d = 0
			}
			running += d
			if running == 0 {
				cmnd[tau] = 1
				continue
			}
			cmnd[tau] = d * float64(tau) / running
		}

		estimates = append(estimates, y.pick(cmnd, g, i, t, sampleRate))
	}

	return estimates, nil
}

// pick finds the first lag whose normalized difference dips under the
// threshold, follows it to the bottom of the dip, and refines the period by
// parabolic interpolation.
func (y *YIN) pick(cmnd []float64, g geometry, frame int, t float64, sampleRate int) Estimate {
	best := -1
	for tau := g.minLag; tau <= g.maxLag; tau++ {
		if cmnd[tau] < y.Threshold {
			for tau+1 <= g.maxLag && cmnd[tau+1] < cmnd[tau] {
				tau++
			}
			best = tau
			break
		}
	}
	if best < 0 {
		return Unvoiced(frame, t)
	}

	period := float64(best)
	if best > 1 && best < g.maxLag {
		s0, s1, s2 := cmnd[best-1], cmnd[best], cmnd[best+1]
		if denom := s0 - 2*s1 + s2; denom != 0 {
			shift := 0.5 * (s0 - s2) / denom
			if math.Abs(shift) <= 1 {
				period += shift
			}
		}
	}

	// Interpolation can land a few cents outside a range-edge note, so the
	// bounds get half a semitone of slack.
	hz := float64(sampleRate) / period
	if hz < y.FMin/halfSemitone || hz > y.FMax*halfSemitone {
		return Unvoiced(frame, t)
	}

	return Estimate{
		Frame:      frame,
		Time:       t,
		Hz:         hz,
		Voiced:     true,
		Confidence: math.Max(0, math.Min(1, 1-cmnd[best])),
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
