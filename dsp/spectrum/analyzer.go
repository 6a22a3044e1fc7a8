package spectrum

import (
	"fmt"
	"math"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/window"
)

// Analyzer geometry and display range.
const (
	FIFOSize        = 2048
	FFTSize         = 1024
	NumBins         = FFTSize / 2
	MinDB           = -100.0
	MaxDB           = 0.0
	DefaultInterval = 4

	magnitudeFloor = 1e-6
)

// Snapshot is one published spectrum. Sequence increases by one per
// publication and is zero before the first one.
type Snapshot struct {
	MagnitudesDB [NumBins]float64
	Sequence     uint64
}

type analyzerConfig struct {
	window   window.Type
	interval int
}

// Option configures an Analyzer.
type Option func(*analyzerConfig)

// WithWindow selects the analysis window. The default is the symmetric Hann
// window.
func WithWindow(t window.Type) Option {
	return func(cfg *analyzerConfig) {
		cfg.window = t
	}
}

// WithInterval sets how many blocks pass between transforms. Values below 1
// are ignored.
func WithInterval(blocks int) Option {
	return func(cfg *analyzerConfig) {
		if blocks >= 1 {
			cfg.interval = blocks
		}
	}
}

type forwardPlan interface {
	Forward(dst, src []complex128) error
}

// Analyzer turns a sample stream into periodic dB magnitude snapshots.
//
// Push, PushBlock, EndBlock and Transform belong to a single producer
// goroutine. Snapshot and SnapshotInto may be called from any goroutine.
type Analyzer struct {
	interval int

	fifo   [FIFOSize]float64
	write  int
	filled int // samples pushed since Reset, saturating at FIFOSize
	fresh  int // samples pushed since the last transform
	blocks int

	window []float64
	scale  float64
	plan   forwardPlan

	windowed []float64
	frame    []complex128
	spectrum []complex128
	re, im   []float64
	mags     []float64

	pending     [NumBins]float64
	hasPending  bool
	transforms  uint64
	deferred    uint64
	publishedMu sync.Mutex
	published   Snapshot
}

// NewAnalyzer allocates the FIFO, window, FFT plan and work buffers.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	cfg := analyzerConfig{window: window.TypeHann, interval: DefaultInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	win := window.Generate(cfg.window, FFTSize)
	sum := 0.0
	for _, w := range win {
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("spectrum: window %v has zero gain", cfg.window)
	}

	plan, err := algofft.NewPlan64(FFTSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	a := &Analyzer{
		interval: cfg.interval,
		window:   win,
		scale:    2 / sum,
		plan:     plan,
		windowed: make([]float64, FFTSize),
		frame:    make([]complex128, FFTSize),
		spectrum: make([]complex128, FFTSize),
		re:       make([]float64, NumBins),
		im:       make([]float64, NumBins),
		mags:     make([]float64, NumBins),
	}
	a.Reset()

	return a, nil
}

// Reset clears the FIFO and counters and publishes a silent spectrum.
func (a *Analyzer) Reset() {
	clear(a.fifo[:])
	a.write = 0
	a.filled = 0
	a.fresh = 0
	a.blocks = 0
	a.hasPending = false

	a.publishedMu.Lock()
	for i := range a.published.MagnitudesDB {
		a.published.MagnitudesDB[i] = MinDB
	}
	a.publishedMu.Unlock()
}

// Push appends one sample to the FIFO.
func (a *Analyzer) Push(x float64) {
	a.fifo[a.write] = x
	a.write++
	if a.write == FIFOSize {
		a.write = 0
	}

	if a.filled < FIFOSize {
		a.filled++
	}
	if a.fresh < FIFOSize {
		a.fresh++
	}
}

// PushBlock appends xs to the FIFO.
func (a *Analyzer) PushBlock(xs []float64) {
	for _, x := range xs {
		a.Push(x)
	}
}

// EndBlock marks the end of a processed block. Every interval blocks it runs
// a transform if at least FFTSize samples have been pushed since Reset and
// new samples arrived since the previous transform. It reports whether a
// transform ran. A publication deferred by reader contention is retried
// first.
func (a *Analyzer) EndBlock() bool {
	if a.hasPending {
		a.tryPublish()
	}

	a.blocks++
	if a.blocks < a.interval {
		return false
	}
	a.blocks = 0

	if a.filled < FFTSize || a.fresh == 0 {
		return false
	}

	a.Transform()

	return true
}

// Transform analyzes the most recent FFTSize samples in chronological order
// and publishes the result.
func (a *Analyzer) Transform() {
	start := a.write - FFTSize
	if start < 0 {
		start += FIFOSize
	}

	n := copy(a.windowed, a.fifo[start:])
	copy(a.windowed[n:], a.fifo[:])

	if err := window.ApplyCoefficientsInPlace(a.windowed, a.window); err != nil {
		return
	}
	for i, x := range a.windowed {
		a.frame[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.spectrum, a.frame); err != nil {
		return
	}

	splitComplex(a.re, a.im, a.spectrum[:NumBins])
	MagnitudeFromParts(a.mags, a.re, a.im)

	for k, m := range a.mags {
		a.pending[k] = core.Clamp(core.LinearToDBFloor(m*a.scale, magnitudeFloor), MinDB, MaxDB)
	}

	a.fresh = 0
	a.transforms++
	a.hasPending = true
	a.tryPublish()
}

func (a *Analyzer) tryPublish() {
	if !a.publishedMu.TryLock() {
		a.deferred++
		return
	}

	a.published.MagnitudesDB = a.pending
	a.published.Sequence++
	a.publishedMu.Unlock()

	a.hasPending = false
}

// Snapshot returns a copy of the latest published spectrum.
func (a *Analyzer) Snapshot() Snapshot {
	a.publishedMu.Lock()
	defer a.publishedMu.Unlock()

	return a.published
}

// SnapshotInto copies the latest published spectrum into dst.
func (a *Analyzer) SnapshotInto(dst *Snapshot) {
	a.publishedMu.Lock()
	*dst = a.published
	a.publishedMu.Unlock()
}

// Transforms returns the number of transforms run since construction.
// Producer side only.
func (a *Analyzer) Transforms() uint64 {
	return a.transforms
}

// Deferred returns how many publications were postponed by reader
// contention. Producer side only.
func (a *Analyzer) Deferred() uint64 {
	return a.deferred
}

// BinFrequency returns the centre frequency of bin k at sampleRate.
func BinFrequency(k int, sampleRate float64) float64 {
	return float64(k) * sampleRate / FFTSize
}

// NearestBin returns the bin closest to freqHz, clamped to [0, NumBins).
func NearestBin(freqHz, sampleRate float64) int {
	if !(sampleRate > 0) {
		return 0
	}

	k := int(math.Round(freqHz * FFTSize / sampleRate))

	return min(max(k, 0), NumBins-1)
}
