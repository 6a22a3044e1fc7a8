package design

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// prelude holds the per-design intermediates shared by the cookbook formulas.
type prelude struct {
	cw, alpha, a float64
}

func newPrelude(freq, gainDB, q, sampleRate float64) (prelude, bool) {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return prelude{}, false
	}

	q = normalizedQ(q)
	if math.IsNaN(gainDB) || math.IsInf(gainDB, 0) {
		gainDB = 0
	}

	return prelude{
		cw:    math.Cos(w0),
		alpha: math.Sin(w0) / (2 * q),
		a:     math.Pow(10, gainDB/40),
	}, true
}

// Peak designs a peaking-EQ biquad centred at freq with gainDB of boost or cut.
// At gainDB == 0 the result is exactly the identity section.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrelude(freq, gainDB, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	return normalizeBiquad(
		1+p.alpha*p.a,
		-2*p.cw,
		1-p.alpha*p.a,
		1+p.alpha/p.a,
		-2*p.cw,
		1-p.alpha/p.a,
	)
}

// LowShelf designs a low-shelf biquad with gain in dB below freq.
func LowShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrelude(freq, gainDB, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a, cw := p.a, p.cw
	beta := 2 * math.Sqrt(a) * p.alpha

	return normalizeBiquad(
		a*((a+1)-(a-1)*cw+beta),
		2*a*((a-1)-(a+1)*cw),
		a*((a+1)-(a-1)*cw-beta),
		(a+1)+(a-1)*cw+beta,
		-2*((a-1)+(a+1)*cw),
		(a+1)+(a-1)*cw-beta,
	)
}

// HighShelf designs a high-shelf biquad with gain in dB above freq.
func HighShelf(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	p, ok := newPrelude(freq, gainDB, q, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	a, cw := p.a, p.cw
	beta := 2 * math.Sqrt(a) * p.alpha

	return normalizeBiquad(
		a*((a+1)+(a-1)*cw+beta),
		-2*a*((a-1)+(a+1)*cw),
		a*((a+1)+(a-1)*cw-beta),
		(a+1)-(a-1)*cw+beta,
		2*((a-1)-(a+1)*cw),
		(a+1)-(a-1)*cw-beta,
	)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	if freq <= 0 || freq >= sampleRate/2 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
