package spectrum

import (
	"fmt"
	"math"
)

// Goertzel evaluates one DFT term over all samples processed since Reset.
// It is used to measure the level of a test tone after filtering.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
	count      int
}

// NewGoertzel creates a meter for frequency in [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("goertzel: sample rate must be > 0: %v", sampleRate)
	}
	if !(frequency >= 0) || frequency > sampleRate/2 {
		return nil, fmt.Errorf("goertzel: frequency must be between 0 and sampleRate/2: %v", frequency)
	}

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0, g.s1 = 0, 0
	g.count = 0
}

// ProcessSample feeds one sample.
func (g *Goertzel) ProcessSample(x float64) {
	s := x + g.coeff*g.s0 - g.s1
	g.s1 = g.s0
	g.s0 = s
	g.count++
}

// ProcessBlock feeds a block of samples.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1, coeff := g.s0, g.s1, g.coeff
	for _, x := range input {
		s0, s1 = x+coeff*s0-s1, s0
	}

	g.s0, g.s1 = s0, s1
	g.count += len(input)
}

// Power returns |X|^2 of the tracked DFT term.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X| of the tracked DFT term.
func (g *Goertzel) Magnitude() float64 {
	p := g.Power()
	if p <= 0 {
		return 0
	}

	return math.Sqrt(p)
}

// Amplitude estimates the peak amplitude of a sine at the tracked frequency,
// 2|X|/N. It is exact when the block holds a whole number of periods.
func (g *Goertzel) Amplitude() float64 {
	if g.count == 0 {
		return 0
	}

	return 2 * g.Magnitude() / float64(g.count)
}

// Frequency returns the tracked frequency.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// ToneLevelDB measures the level in dB of a sine at frequency in input,
// relative to a full-scale sine.
func ToneLevelDB(input []float64, frequency, sampleRate float64) (float64, error) {
	g, err := NewGoertzel(frequency, sampleRate)
	if err != nil {
		return 0, err
	}

	g.ProcessBlock(input)

	return 20 * math.Log10(math.Max(g.Amplitude(), 1e-12)), nil
}
