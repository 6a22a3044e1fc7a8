package param

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
)

// ID names a parameter. IDs double as preset keys.
type ID string

// ZeroLatencyID is the processing-mode switch.
const ZeroLatencyID ID = "ZeroLatency"

// FrequencyID returns the ID of the centre frequency of band i.
func FrequencyID(i int) ID { return ID(fmt.Sprintf("Frequency%d", i)) }

// GainID returns the ID of the gain of band i.
func GainID(i int) ID { return ID(fmt.Sprintf("Gain%d", i)) }

// QID returns the ID of the quality factor of band i.
func QID(i int) ID { return ID(fmt.Sprintf("Q%d", i)) }

// Kind distinguishes continuous parameters from switches.
type Kind int

const (
	Float Kind = iota
	Bool
)

// Parameter is one automatable value. The normalized value is stored in an
// atomic; all other fields are immutable after construction.
type Parameter struct {
	id      ID
	name    string
	unit    string
	kind    Kind
	rng     Range
	def     float64
	defNorm float64
	band    int
	bits    atomic.Uint64
}

func newParameter(id ID, name, unit string, kind Kind, rng Range, def float64, band int) *Parameter {
	p := &Parameter{
		id:   id,
		name: name,
		unit: unit,
		kind: kind,
		rng:  rng,
		def:  def,
		band: band,
	}
	p.defNorm = p.quantize(rng.Normalize(def))
	p.bits.Store(math.Float64bits(p.defNorm))

	return p
}

func (p *Parameter) ID() ID { return p.id }

func (p *Parameter) Name() string { return p.name }

func (p *Parameter) Unit() string { return p.unit }

func (p *Parameter) Kind() Kind { return p.kind }

func (p *Parameter) Range() Range { return p.rng }

// Default returns the default physical value.
func (p *Parameter) Default() float64 { return p.def }

// Band returns the band the parameter belongs to, or -1 for global ones.
func (p *Parameter) Band() int { return p.band }

// DefaultNormalized returns the default as a normalized value.
func (p *Parameter) DefaultNormalized() float64 { return p.defNorm }

// Normalized returns the current normalized value.
func (p *Parameter) Normalized() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Value returns the current physical value.
func (p *Parameter) Value() float64 {
	return p.rng.Denormalize(p.Normalized())
}

// Bool reports whether a switch is on (normalized value of at least 0.5).
func (p *Parameter) Bool() bool {
	return p.Normalized() >= 0.5
}

// Normalize converts a physical value with the parameter's range.
func (p *Parameter) Normalize(x float64) float64 {
	return p.quantize(p.rng.Normalize(x))
}

// Denormalize converts a normalized value with the parameter's range.
func (p *Parameter) Denormalize(v float64) float64 {
	return p.rng.Denormalize(p.quantize(v))
}

// String formats the current value with its unit.
func (p *Parameter) String() string {
	if p.kind == Bool {
		return fmt.Sprintf("%s=%t", p.id, p.Bool())
	}
	if p.unit == "" {
		return fmt.Sprintf("%s=%.3g", p.id, p.Value())
	}

	return fmt.Sprintf("%s=%.3g %s", p.id, p.Value(), p.unit)
}

func (p *Parameter) quantize(v float64) float64 {
	if p.kind != Bool {
		return v
	}
	if v >= 0.5 {
		return 1
	}

	return 0
}

// store writes v and reports whether the value changed.
func (p *Parameter) store(v float64) bool {
	nb := math.Float64bits(v)

	return p.bits.Swap(nb) != nb
}

func newLayout() []*Parameter {
	params := make([]*Parameter, 0, 3*parametric.NumBands+1)

	for i := range parametric.NumBands {
		lo, hi, _ := parametric.FrequencyRange(i)
		def := parametric.DefaultBand(i)
		params = append(params, newParameter(FrequencyID(i), fmt.Sprintf("Frequency %d", i+1), "Hz",
			Float, Range{Min: lo, Max: hi, Skew: 0.5}, def.Frequency, i))
	}
	for i := range parametric.NumBands {
		params = append(params, newParameter(GainID(i), fmt.Sprintf("Gain %d", i+1), "dB",
			Float, Range{Min: parametric.MinGain, Max: parametric.MaxGain, Skew: 1}, parametric.DefaultGain, i))
	}
	for i := range parametric.NumBands {
		params = append(params, newParameter(QID(i), fmt.Sprintf("Q %d", i+1), "",
			Float, Range{Min: parametric.MinQ, Max: parametric.MaxQ, Skew: 0.5}, parametric.DefaultQ, i))
	}

	return append(params, newParameter(ZeroLatencyID, "Zero Latency", "", Bool, Range{Min: 0, Max: 1, Skew: 1}, 1, -1))
}
