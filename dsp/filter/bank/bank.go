package bank

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
)

var (
	// ErrBandIndex is returned for band indices outside [0, parametric.NumBands).
	ErrBandIndex = errors.New("bank: band index out of range")
	// ErrNotPrepared is returned when processing before Prepare.
	ErrNotPrepared = errors.New("bank: not prepared")
	// ErrInvalidConfig is returned by Prepare for unusable settings.
	ErrInvalidConfig = errors.New("bank: invalid configuration")
)

// FilterBank holds the coefficients of all bands and the per-channel filter
// state.
type FilterBank struct {
	coeffs     [parametric.NumBands]biquad.Coefficients
	chains     []*biquad.Chain
	sampleRate float64
	maxBlock   int
}

// New returns an unprepared bank with all bands set to identity.
func New() *FilterBank {
	fb := &FilterBank{}
	for i := range fb.coeffs {
		fb.coeffs[i] = parametric.Flat()
	}

	return fb
}

// Prepare allocates one chain per channel and clears all state. Coefficients
// set before Prepare are kept.
func (fb *FilterBank) Prepare(sampleRate float64, maxBlockSize, numChannels int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) || maxBlockSize <= 0 || numChannels <= 0 {
		return fmt.Errorf("%w: rate=%v block=%d channels=%d",
			ErrInvalidConfig, sampleRate, maxBlockSize, numChannels)
	}

	fb.chains = make([]*biquad.Chain, numChannels)
	for ch := range fb.chains {
		fb.chains[ch] = biquad.NewChain(fb.coeffs[:])
	}

	fb.sampleRate = sampleRate
	fb.maxBlock = maxBlockSize

	return nil
}

// Prepared reports whether Prepare has succeeded.
func (fb *FilterBank) Prepared() bool {
	return fb.chains != nil
}

// SampleRate returns the rate the current coefficients are designed for.
func (fb *FilterBank) SampleRate() float64 {
	return fb.sampleRate
}

// SetSampleRate changes the rate used by Response and MagnitudeDB without
// touching coefficients or filter state.
func (fb *FilterBank) SetSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: rate=%v", ErrInvalidConfig, sampleRate)
	}

	fb.sampleRate = sampleRate

	return nil
}

// NumChannels returns the number of prepared channels.
func (fb *FilterBank) NumChannels() int {
	return len(fb.chains)
}

// SetCoefficients hot-swaps band coefficients on every channel. Delay lines
// are left untouched.
func (fb *FilterBank) SetCoefficients(band int, c biquad.Coefficients) error {
	if band < 0 || band >= parametric.NumBands {
		return fmt.Errorf("%w: %d", ErrBandIndex, band)
	}

	fb.coeffs[band] = c
	for _, chain := range fb.chains {
		// Chains always hold NumBands sections, so this cannot fail.
		_ = chain.SetSection(band, c)
	}

	return nil
}

// Coefficients returns the current coefficients of band.
func (fb *FilterBank) Coefficients(band int) (biquad.Coefficients, error) {
	if band < 0 || band >= parametric.NumBands {
		return biquad.Coefficients{}, fmt.Errorf("%w: %d", ErrBandIndex, band)
	}

	return fb.coeffs[band], nil
}

// Reset clears every delay line.
func (fb *FilterBank) Reset() {
	for _, chain := range fb.chains {
		chain.Reset()
	}
}

// Process filters every active channel of blk in place. Channels beyond the
// prepared count are left untouched.
func (fb *FilterBank) Process(blk *buffer.Block) error {
	return fb.ProcessSpan(blk, 0, blk.NumSamples())
}

// ProcessSpan filters samples [from, to) of every active channel in place.
func (fb *FilterBank) ProcessSpan(blk *buffer.Block, from, to int) error {
	if fb.chains == nil {
		return ErrNotPrepared
	}
	if from < 0 || to > blk.NumSamples() || from > to {
		return fmt.Errorf("bank: invalid span [%d,%d) for %d samples", from, to, blk.NumSamples())
	}
	if from == to {
		return nil
	}

	channels := min(blk.NumChannels(), len(fb.chains))
	for ch := 0; ch < channels; ch++ {
		fb.chains[ch].ProcessBlock(blk.Channel(ch)[from:to])
	}

	return nil
}

// Response evaluates the cascaded complex response at freqHz using the
// prepared sample rate.
func (fb *FilterBank) Response(freqHz float64) complex128 {
	return ResponseOf(&fb.coeffs, freqHz, fb.sampleRate)
}

// MagnitudeDB returns the cascaded magnitude response in dB at freqHz.
func (fb *FilterBank) MagnitudeDB(freqHz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(fb.Response(freqHz)))
}

// ResponseOf evaluates the cascaded response of a set of band coefficients.
// It returns 1 when sampleRate is not positive.
func ResponseOf(coeffs *[parametric.NumBands]biquad.Coefficients, freqHz, sampleRate float64) complex128 {
	if !(sampleRate > 0) {
		return 1
	}

	h := complex(1, 0)
	for i := range coeffs {
		h *= coeffs[i].Response(freqHz, sampleRate)
	}

	return h
}
