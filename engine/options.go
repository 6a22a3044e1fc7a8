package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/resample"
	"github.com/cwbudde/algo-eq/param"
)

// Engine defaults.
const (
	DefaultSmoothingMs      = 1.0
	DefaultSmoothingStep    = 1
	DefaultReportedLatency  = 2048
	DefaultAnalysisInterval = 4
)

type config struct {
	params           *param.Store
	logger           logrus.FieldLogger
	smoothingMs      float64
	smoothingStep    int
	analysisInterval int
	reportedLatency  int
	seed             int64
	oversampling     []resample.Option
}

func defaultConfig() config {
	return config{
		smoothingMs:      DefaultSmoothingMs,
		smoothingStep:    DefaultSmoothingStep,
		analysisInterval: DefaultAnalysisInterval,
		reportedLatency:  DefaultReportedLatency,
		seed:             1,
	}
}

// Option configures an Engine.
type Option func(*config)

// WithParameters injects the parameter store. By default the engine creates
// its own.
func WithParameters(store *param.Store) Option {
	return func(cfg *config) {
		if store != nil {
			cfg.params = store
		}
	}
}

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(logger logrus.FieldLogger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithSmoothingTime sets the parameter ramp length in milliseconds. Zero
// disables smoothing.
func WithSmoothingTime(ms float64) Option {
	return func(cfg *config) {
		if ms >= 0 {
			cfg.smoothingMs = ms
		}
	}
}

// WithSmoothingStep sets how many samples share one set of coefficients
// while a ramp is running. The default of 1 recomputes every sample.
func WithSmoothingStep(samples int) Option {
	return func(cfg *config) {
		if samples >= 1 {
			cfg.smoothingStep = samples
		}
	}
}

// WithAnalysisInterval sets how many blocks pass between spectrum updates.
func WithAnalysisInterval(blocks int) Option {
	return func(cfg *config) {
		if blocks >= 1 {
			cfg.analysisInterval = blocks
		}
	}
}

// WithReportedLatency sets the latency reported in oversampled mode.
func WithReportedLatency(samples int) Option {
	return func(cfg *config) {
		if samples >= 0 {
			cfg.reportedLatency = samples
		}
	}
}

// WithTestSignalSeed seeds the noise of the test signal.
func WithTestSignalSeed(seed int64) Option {
	return func(cfg *config) {
		cfg.seed = seed
	}
}

// WithOversampling passes options to the half-band oversampler.
func WithOversampling(opts ...resample.Option) Option {
	return func(cfg *config) {
		cfg.oversampling = append(cfg.oversampling, opts...)
	}
}
