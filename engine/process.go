package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
)

// ProcessBlock filters channels in place. Every channel must have the same
// length. Blocks longer than the prepared block size are processed in
// chunks; channels beyond the prepared count are left untouched. Before
// Prepare, or with a malformed buffer, the audio passes through unchanged.
func (e *Engine) ProcessBlock(channels [][]float64) {
	st := e.State()
	if st == Uninitialized || len(channels) == 0 {
		return
	}

	n := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) != n {
			return
		}
	}
	if n == 0 {
		return
	}
	if st == Prepared {
		e.state.Store(int32(Running))
	}

	active := channels[:min(len(channels), e.channels)]
	for off := 0; off < n; off += e.blockSize {
		e.processChunk(active, off, min(e.blockSize, n-off))
	}
}

func (e *Engine) processChunk(channels [][]float64, off, n int) {
	if err := e.view.Attach(channels, off, n); err != nil {
		return
	}
	_ = e.dry.SetNumSamples(n)
	e.dry.CopyFrom(e.view)

	defer func() {
		if r := recover(); r != nil {
			e.view.CopyFrom(e.dry)
			e.bank.Reset()
			e.oversampler.Reset()

			if count, ok := e.panicLog.allow(); ok {
				e.log.WithFields(logrus.Fields{
					"panic": fmt.Sprint(r),
					"count": count,
				}).Error("recovered in audio block, input passed through")
			}
		}
	}()

	e.runChunk(n)
}

func (e *Engine) runChunk(n int) {
	chunk := e.chunk[:e.view.NumChannels()]
	for ch := range chunk {
		chunk[ch] = e.view.Channel(ch)
	}
	e.signal.Generate(chunk, n)

	e.syncParameters(false)

	blk := e.view
	if !e.zeroLatency {
		up, err := e.oversampler.Up(e.view)
		if err != nil {
			panic(err)
		}
		blk = up
	}

	if e.anySmoothing() {
		e.processSmoothed(blk)
	} else if err := e.bank.Process(blk); err != nil {
		panic(err)
	}

	if !e.zeroLatency {
		if err := e.oversampler.Down(e.view); err != nil {
			panic(err)
		}
	}

	e.analyzer.PushBlock(e.view.Channel(0))
	e.analyzer.EndBlock()
}

// syncParameters picks up store changes. It skips while a batch is loading
// unless force is set, and force also snaps every smoother to its target.
func (e *Engine) syncParameters(force bool) {
	if !force {
		if e.params.Loading() {
			return
		}
		if e.synced && e.params.Version() == e.version {
			return
		}
	}

	e.version = e.params.Version()
	e.synced = true

	zl := e.params.ZeroLatency()
	if zl != e.zeroLatency {
		e.switchMode(zl)
	}

	bands := e.params.Bands()
	for i := range bands {
		b := bands[i].Sanitize()
		e.targets[i] = b

		f := &e.smoothers[i]
		g := &e.smoothers[parametric.NumBands+i]
		q := &e.smoothers[2*parametric.NumBands+i]
		if force || zl {
			f.SetCurrentAndTarget(b.Frequency)
			g.SetCurrentAndTarget(b.Gain)
			q.SetCurrentAndTarget(b.Q)
		} else {
			f.SetTarget(b.Frequency)
			g.SetTarget(b.Gain)
			q.SetTarget(b.Q)
		}
	}

	e.applyBands(&e.targets)
}

func (e *Engine) switchMode(zeroLatency bool) {
	e.zeroLatency = zeroLatency
	e.bank.Reset()
	e.oversampler.Reset()

	rate := processingRate(e.sampleRate, zeroLatency)
	// The rate was validated by Prepare, so this cannot fail.
	_ = e.bank.SetSampleRate(rate)
	for i := range e.smoothers {
		e.smoothers[i].Reset(rate, e.cfg.smoothingMs)
	}

	e.log.WithFields(logrus.Fields{
		"zeroLatency": zeroLatency,
		"rate":        rate,
	}).Info("processing mode changed")
}

func (e *Engine) anySmoothing() bool {
	if e.zeroLatency {
		return false
	}
	for i := range e.smoothers {
		if e.smoothers[i].IsSmoothing() {
			return true
		}
	}

	return false
}

// processSmoothed advances the smoothers through blk, designing new
// coefficients every smoothingStep samples until every ramp has finished.
func (e *Engine) processSmoothed(blk *buffer.Block) {
	total := blk.NumSamples()
	step := e.cfg.smoothingStep

	pos := 0
	for pos < total && e.anySmoothing() {
		end := min(pos+step, total)

		for i := range e.smoothed {
			e.smoothed[i] = parametric.Band{
				Frequency: e.smoothers[i].Next(),
				Gain:      e.smoothers[parametric.NumBands+i].Next(),
				Q:         e.smoothers[2*parametric.NumBands+i].Next(),
			}
		}
		e.applyBands(&e.smoothed)

		if err := e.bank.ProcessSpan(blk, pos, end); err != nil {
			panic(err)
		}

		for i := range e.smoothers {
			e.smoothers[i].Skip(end - pos - 1)
		}
		pos = end
	}

	// A ramp that ended inside Skip leaves coefficients one step short.
	if !e.anySmoothing() && e.smoothed != e.targets {
		e.smoothed = e.targets
		e.applyBands(&e.targets)
	}

	if pos < total {
		if err := e.bank.ProcessSpan(blk, pos, total); err != nil {
			panic(err)
		}
	}
}

// applyBands designs and installs coefficients for every band. A band whose
// design fails keeps its previous coefficients.
func (e *Engine) applyBands(bands *[parametric.NumBands]parametric.Band) {
	rate := processingRate(e.sampleRate, e.zeroLatency)

	for i := range bands {
		c, err := parametric.Design(parametric.RoleOf(i), bands[i], rate, e.zeroLatency)
		if err != nil {
			if count, ok := e.designLog.allow(); ok {
				e.log.WithFields(logrus.Fields{
					"band":  i,
					"count": count,
				}).WithError(err).Warn("coefficient design failed, keeping previous")
			}

			continue
		}

		_ = e.bank.SetCoefficients(i, c)
	}
}
