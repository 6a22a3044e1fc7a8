package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/filter/bank"
	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
	"github.com/cwbudde/algo-eq/dsp/resample"
	"github.com/cwbudde/algo-eq/dsp/signal"
	"github.com/cwbudde/algo-eq/dsp/smooth"
	"github.com/cwbudde/algo-eq/dsp/spectrum"
	"github.com/cwbudde/algo-eq/param"
	"github.com/cwbudde/algo-eq/preset"
)

// ErrInvalidConfig is returned by Prepare for unusable host settings.
var ErrInvalidConfig = errors.New("engine: invalid configuration")

// State is the lifecycle state of an Engine.
type State int32

const (
	Uninitialized State = iota
	Prepared
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Prepared:
		return "prepared"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

const numSmoothers = 3 * parametric.NumBands

// Engine is one equalizer instance.
type Engine struct {
	cfg    config
	log    logrus.FieldLogger
	params *param.Store
	unsub  func()

	state    atomic.Int32
	baseRate atomic.Uint64 // float64 bits of the prepared host rate

	// Audio goroutine state, (re)built by Prepare.
	sampleRate  float64
	blockSize   int
	channels    int
	zeroLatency bool
	synced      bool
	version     uint64
	targets     [parametric.NumBands]parametric.Band
	smoothed    [parametric.NumBands]parametric.Band
	smoothers   [numSmoothers]smooth.Smoother
	bank        *bank.FilterBank
	oversampler *resample.Oversampler
	dry         *buffer.Block
	view        *buffer.Block
	chunk       [][]float64
	designLog   logLimiter
	panicLog    logLimiter

	analyzer *spectrum.Analyzer
	signal   *signal.TestSignal

	snapshot       atomic.Pointer[CoefficientSnapshot]
	publishMu      sync.Mutex
	recomputations atomic.Uint64
	publishLog     logLimiter

	presetMu   sync.Mutex
	presetName string
	presetMeta *preset.Metadata
}

// New creates an unprepared engine and subscribes it to its parameter store.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.params == nil {
		cfg.params = param.NewStore()
	}
	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger()
	}

	if _, err := resample.NewOversampler(1, cfg.oversampling...); err != nil {
		return nil, fmt.Errorf("engine: oversampler: %w", err)
	}

	analyzer, err := spectrum.NewAnalyzer(spectrum.WithInterval(cfg.analysisInterval))
	if err != nil {
		return nil, fmt.Errorf("engine: analyzer: %w", err)
	}

	e := &Engine{
		cfg:        cfg,
		log:        cfg.logger.WithField("component", "engine"),
		params:     cfg.params,
		bank:       bank.New(),
		analyzer:   analyzer,
		signal:     signal.NewTestSignal(signal.WithSeed(cfg.seed)),
		presetName: "Default",
	}
	for i := range parametric.NumBands {
		e.smoothers[i].Init(smooth.Multiplicative, e.targets[i].Frequency)
		e.smoothers[parametric.NumBands+i].Init(smooth.Linear, e.targets[i].Gain)
		e.smoothers[2*parametric.NumBands+i].Init(smooth.Multiplicative, e.targets[i].Q)
	}
	e.baseRate.Store(math.Float64bits(core.DefaultProcessorConfig().SampleRate))
	e.publish()
	e.unsub = e.params.Subscribe(e)

	return e, nil
}

// Close unsubscribes the engine from its parameter store.
func (e *Engine) Close() {
	e.Release()
	e.unsub()
}

// Prepare configures the engine for a host stream. It may be called again
// at any time the audio goroutine is not inside ProcessBlock.
func (e *Engine) Prepare(sampleRate float64, blockSize, channels int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) || blockSize <= 0 || channels <= 0 {
		return fmt.Errorf("%w: rate=%v block=%d channels=%d",
			ErrInvalidConfig, sampleRate, blockSize, channels)
	}

	ovs, err := resample.NewOversampler(channels, e.cfg.oversampling...)
	if err != nil {
		return fmt.Errorf("engine: oversampler: %w", err)
	}
	if err := ovs.InitProcessing(blockSize); err != nil {
		return fmt.Errorf("engine: oversampler: %w", err)
	}

	zl := e.params.ZeroLatency()
	rate := processingRate(sampleRate, zl)
	if err := e.bank.Prepare(rate, resample.Factor*blockSize, channels); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if err := e.signal.SetSampleRate(sampleRate); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	e.signal.Reset()
	e.analyzer.Reset()

	e.sampleRate = sampleRate
	e.blockSize = blockSize
	e.channels = channels
	e.zeroLatency = zl
	e.oversampler = ovs
	e.dry = buffer.New(channels, blockSize)
	e.view = buffer.NewView(channels)
	e.chunk = make([][]float64, channels)
	e.baseRate.Store(math.Float64bits(sampleRate))

	for i := range e.smoothers {
		e.smoothers[i].Reset(rate, e.cfg.smoothingMs)
	}
	e.syncParameters(true)
	e.bank.Reset()
	e.publish()

	e.state.Store(int32(Prepared))

	e.log.WithFields(logrus.Fields{
		"sampleRate":   sampleRate,
		"blockSize":    blockSize,
		"channels":     channels,
		"zeroLatency":  zl,
		"latency":      e.LatencySamples(),
		"oversampling": ovs.StopbandAttenuation(),
	}).Info("engine prepared")

	return nil
}

// PrepareConfig is Prepare with a core.ProcessorConfig.
func (e *Engine) PrepareConfig(cfg core.ProcessorConfig) error {
	return e.Prepare(cfg.SampleRate, cfg.BlockSize, cfg.Channels)
}

// Config returns the prepared host settings, or the defaults before Prepare.
func (e *Engine) Config() core.ProcessorConfig {
	if e.State() == Uninitialized {
		return core.DefaultProcessorConfig()
	}

	return core.ProcessorConfig{
		SampleRate: e.sampleRate,
		BlockSize:  e.blockSize,
		Channels:   e.channels,
	}
}

// Release returns the engine to Uninitialized. ProcessBlock passes audio
// through until the next Prepare.
func (e *Engine) Release() {
	if State(e.state.Swap(int32(Uninitialized))) != Uninitialized {
		e.log.Debug("engine released")
	}
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Parameters returns the parameter store.
func (e *Engine) Parameters() *param.Store {
	return e.params
}

// TestSignal returns the test signal source.
func (e *Engine) TestSignal() *signal.TestSignal {
	return e.signal
}

// LatencySamples returns the latency to report to the host: zero in
// zero-latency mode and the configured constant otherwise.
func (e *Engine) LatencySamples() int {
	if e.params.ZeroLatency() {
		return 0
	}

	return e.cfg.reportedLatency
}

// OversamplerLatency returns the measured round-trip delay of the
// oversampler in host samples, or zero before Prepare.
func (e *Engine) OversamplerLatency() float64 {
	if e.oversampler == nil {
		return 0
	}

	return e.oversampler.Latency()
}

// Spectrum returns a copy of the latest analyzer output.
func (e *Engine) Spectrum() spectrum.Snapshot {
	return e.analyzer.Snapshot()
}

// SpectrumInto copies the latest analyzer output into dst.
func (e *Engine) SpectrumInto(dst *spectrum.Snapshot) {
	e.analyzer.SnapshotInto(dst)
}

func processingRate(sampleRate float64, zeroLatency bool) float64 {
	if zeroLatency {
		return sampleRate
	}

	return sampleRate * resample.Factor
}

// logLimiter passes the first event and every 1000th after it.
type logLimiter struct {
	count atomic.Uint64
}

func (l *logLimiter) allow() (uint64, bool) {
	n := l.count.Add(1)

	return n, n == 1 || n%1000 == 0
}
