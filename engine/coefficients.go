package engine

import (
	"math"
	"math/cmplx"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/filter/bank"
	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
	"github.com/cwbudde/algo-eq/param"
)

// CoefficientSnapshot is an immutable set of band coefficients for display.
// A new snapshot is published on every change; published snapshots are
// never modified.
type CoefficientSnapshot struct {
	Coefficients [parametric.NumBands]biquad.Coefficients
	Bands        [parametric.NumBands]parametric.Band
	// SampleRate is the rate the coefficients were designed at: the host
	// rate in zero-latency mode, twice that otherwise.
	SampleRate  float64
	ZeroLatency bool
	Version     uint64
}

// Response evaluates the cascaded transfer function at freqHz.
func (s *CoefficientSnapshot) Response(freqHz float64) complex128 {
	return bank.ResponseOf(&s.Coefficients, freqHz, s.SampleRate)
}

// MagnitudeDB returns the cascaded magnitude response in dB at freqHz.
func (s *CoefficientSnapshot) MagnitudeDB(freqHz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(s.Response(freqHz)))
}

// BandMagnitudeDB returns the magnitude response of a single band.
func (s *CoefficientSnapshot) BandMagnitudeDB(band int, freqHz float64) float64 {
	if band < 0 || band >= parametric.NumBands {
		return 0
	}

	return s.Coefficients[band].MagnitudeDB(freqHz, s.SampleRate)
}

// ParameterChanged implements param.Listener. Changes made inside a batch
// are ignored; the batch end triggers one recomputation instead.
func (e *Engine) ParameterChanged(param.ID, float64) {
	if e.params.Loading() {
		return
	}

	e.publish()
}

// BatchCompleted implements param.BatchListener.
func (e *Engine) BatchCompleted() {
	e.publish()
}

// Recomputations returns how many coefficient snapshots have been published.
func (e *Engine) Recomputations() uint64 {
	return e.recomputations.Load()
}

// Coefficients returns the latest published snapshot. It is never nil.
func (e *Engine) Coefficients() *CoefficientSnapshot {
	return e.snapshot.Load()
}

// ResponseDB evaluates the magnitude response of the latest snapshot at
// each frequency in freqs and stores it in dst, which is grown if needed.
func (e *Engine) ResponseDB(freqs, dst []float64) []float64 {
	dst = core.EnsureLen(dst, len(freqs))
	snap := e.Coefficients()
	for i, f := range freqs {
		dst[i] = snap.MagnitudeDB(f)
	}

	return dst
}

// publish designs a snapshot from the unsmoothed parameters. A band whose
// design fails keeps the coefficients of the previous snapshot.
func (e *Engine) publish() {
	e.publishMu.Lock()
	defer e.publishMu.Unlock()

	zl := e.params.ZeroLatency()
	next := &CoefficientSnapshot{
		SampleRate:  processingRate(math.Float64frombits(e.baseRate.Load()), zl),
		ZeroLatency: zl,
		Version:     e.params.Version(),
	}

	prev := e.snapshot.Load()
	bands := e.params.Bands()
	for i := range bands {
		next.Bands[i] = bands[i].Sanitize()

		c, err := parametric.Design(parametric.RoleOf(i), next.Bands[i], next.SampleRate, zl)
		if err != nil {
			if prev != nil {
				c = prev.Coefficients[i]
			} else {
				c = parametric.Flat()
			}

			if count, ok := e.publishLog.allow(); ok {
				e.log.WithFields(logrus.Fields{
					"band":  i,
					"count": count,
				}).WithError(err).Warn("display coefficients kept")
			}
		}
		next.Coefficients[i] = c
	}

	e.snapshot.Store(next)
	e.recomputations.Add(1)
}
