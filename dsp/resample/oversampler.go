package resample

import (
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/buffer"
)

// Factor is the fixed oversampling ratio.
const Factor = 2

type config struct {
	numCoeffs  int
	transition float64
}

// Option configures an Oversampler.
type Option func(*config)

// WithCoefficients sets the allpass coefficient count. Values below 1 are
// ignored.
func WithCoefficients(n int) Option {
	return func(cfg *config) {
		if n >= 1 {
			cfg.numCoeffs = n
		}
	}
}

// WithTransition sets the normalized transition bandwidth. Values outside
// (0, 0.5) are ignored.
func WithTransition(tbw float64) Option {
	return func(cfg *config) {
		if tbw > 0 && tbw < 0.5 {
			cfg.transition = tbw
		}
	}
}

// allpassChain is one polyphase branch: cascaded sections
// H(z) = (c + z^-1) / (1 + c z^-1) running at the base rate.
type allpassChain struct {
	coeffs []float64
	x, y   []float64
}

func newAllpassChain(coeffs []float64) allpassChain {
	return allpassChain{
		coeffs: coeffs,
		x:      make([]float64, len(coeffs)),
		y:      make([]float64, len(coeffs)),
	}
}

func (a *allpassChain) process(s float64) float64 {
	for i, c := range a.coeffs {
		out := c*(s-a.y[i]) + a.x[i]
		a.x[i] = s
		a.y[i] = out
		s = out
	}

	return s
}

func (a *allpassChain) reset() {
	clear(a.x)
	clear(a.y)
}

// halfBand is the branch pair of one channel in one direction.
type halfBand struct {
	even, odd allpassChain
}

func newHalfBand(even, odd []float64) halfBand {
	return halfBand{even: newAllpassChain(even), odd: newAllpassChain(odd)}
}

func (h *halfBand) reset() {
	h.even.reset()
	h.odd.reset()
}

// Oversampler performs 2x interpolation and matching decimation on up to a
// fixed number of channels.
type Oversampler struct {
	coeffs        []float64
	even, odd     []float64
	channels      int
	up, down      []halfBand
	work          *buffer.Block
	maxBlock      int
	latency       float64
	attenuationDB float64
}

// NewOversampler designs the half-band filters for the given channel count.
func NewOversampler(channels int, opts ...Option) (*Oversampler, error) {
	if channels < 1 {
		return nil, fmt.Errorf("resample: channel count %d < 1", channels)
	}

	cfg := config{numCoeffs: DefaultCoefficientCount, transition: DefaultTransition}
	for _, opt := range opts {
		opt(&cfg)
	}

	coeffs, err := DesignHalfBand(cfg.numCoeffs, cfg.transition)
	if err != nil {
		return nil, err
	}
	att, err := HalfBandAttenuation(cfg.numCoeffs, cfg.transition)
	if err != nil {
		return nil, err
	}

	o := &Oversampler{
		coeffs:        coeffs,
		channels:      channels,
		attenuationDB: att,
	}
	for i, c := range coeffs {
		if i%2 == 0 {
			o.even = append(o.even, c)
		} else {
			o.odd = append(o.odd, c)
		}
		o.latency += (1 - c) / (1 + c)
	}

	o.up = make([]halfBand, channels)
	o.down = make([]halfBand, channels)
	for ch := range channels {
		o.up[ch] = newHalfBand(o.even, o.odd)
		o.down[ch] = newHalfBand(o.even, o.odd)
	}

	return o, nil
}

// InitProcessing allocates the oversampled work block for blocks of up to
// maxBlockSize base-rate samples and clears the filter state.
func (o *Oversampler) InitProcessing(maxBlockSize int) error {
	if maxBlockSize < 1 {
		return fmt.Errorf("resample: max block size %d < 1", maxBlockSize)
	}

	o.work = buffer.New(o.channels, Factor*maxBlockSize)
	o.maxBlock = maxBlockSize
	o.Reset()

	return nil
}

// Up interpolates src into the internal block and returns it. The returned
// block has 2*src.NumSamples() samples and stays valid until the next call.
// Channels beyond the configured count are ignored.
func (o *Oversampler) Up(src *buffer.Block) (*buffer.Block, error) {
	if o.work == nil {
		return nil, fmt.Errorf("resample: InitProcessing not called")
	}

	n := src.NumSamples()
	if n > o.maxBlock {
		return nil, fmt.Errorf("resample: block of %d exceeds max %d", n, o.maxBlock)
	}
	if err := o.work.SetNumSamples(Factor * n); err != nil {
		return nil, err
	}

	channels := min(src.NumChannels(), o.channels)
	for ch := range channels {
		in := src.Channel(ch)
		out := o.work.Channel(ch)
		hb := &o.up[ch]
		for i, x := range in {
			out[2*i] = hb.even.process(x)
			out[2*i+1] = hb.odd.process(x)
		}
	}

	return o.work, nil
}

// Down decimates the internal block produced by the last Up into dst.
// dst must have half as many samples as the internal block.
func (o *Oversampler) Down(dst *buffer.Block) error {
	if o.work == nil {
		return fmt.Errorf("resample: InitProcessing not called")
	}

	n := dst.NumSamples()
	if Factor*n != o.work.NumSamples() {
		return fmt.Errorf("resample: destination has %d samples, want %d", n, o.work.NumSamples()/Factor)
	}

	channels := min(dst.NumChannels(), o.channels)
	for ch := range channels {
		in := o.work.Channel(ch)
		out := dst.Channel(ch)
		hb := &o.down[ch]
		for i := range out {
			a := hb.even.process(in[2*i+1])
			b := hb.odd.process(in[2*i])
			out[i] = 0.5 * (a + b)
		}
	}

	return nil
}

// Reset clears every allpass state.
func (o *Oversampler) Reset() {
	for ch := range o.up {
		o.up[ch].reset()
		o.down[ch].reset()
	}
	if o.work != nil {
		o.work.Zero()
	}
}

// Latency returns the round-trip low-frequency group delay in base-rate
// samples.
func (o *Oversampler) Latency() float64 {
	return o.latency
}

// Coefficients returns a copy of the designed allpass coefficients.
func (o *Oversampler) Coefficients() []float64 {
	return append([]float64(nil), o.coeffs...)
}

// StopbandAttenuation returns the design attenuation in dB.
func (o *Oversampler) StopbandAttenuation() float64 {
	return o.attenuationDB
}

// NumChannels returns the configured channel count.
func (o *Oversampler) NumChannels() int {
	return o.channels
}
