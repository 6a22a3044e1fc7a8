package resample

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultCoefficientCount is the number of allpass coefficients used by
	// NewOversampler when none is configured.
	DefaultCoefficientCount = 12
	// DefaultTransition is the normalized transition bandwidth (relative to
	// the oversampled rate) used by NewOversampler.
	DefaultTransition = 0.05
)

// ErrInvalidDesign is returned for unusable half-band design parameters.
var ErrInvalidDesign = errors.New("resample: invalid half-band design")

// DesignHalfBand returns numCoeffs allpass coefficients for a half-band
// filter with the given transition bandwidth in (0, 0.5). Even indices
// belong to branch 0, odd indices to branch 1. Coefficients grow
// monotonically and all lie in (0, 1).
func DesignHalfBand(numCoeffs int, transition float64) ([]float64, error) {
	if err := validateHalfBand(numCoeffs, transition); err != nil {
		return nil, err
	}

	k, q := transitionParams(transition)
	order := 2*numCoeffs + 1

	coeffs := make([]float64, numCoeffs)
	for i := range coeffs {
		coeffs[i] = allpassCoefficient(i+1, k, q, order)
	}

	return coeffs, nil
}

// HalfBandAttenuation returns the stopband attenuation in dB achieved by a
// design with numCoeffs coefficients and the given transition bandwidth.
func HalfBandAttenuation(numCoeffs int, transition float64) (float64, error) {
	if err := validateHalfBand(numCoeffs, transition); err != nil {
		return 0, err
	}

	_, q := transitionParams(transition)
	v := 4 * math.Exp(float64(2*numCoeffs+1)*0.5*math.Log(q))

	return -10 * math.Log10(v/(1+v)), nil
}

func validateHalfBand(numCoeffs int, transition float64) error {
	if numCoeffs < 1 {
		return fmt.Errorf("%w: coefficient count %d < 1", ErrInvalidDesign, numCoeffs)
	}
	if math.IsNaN(transition) || transition <= 0 || transition >= 0.5 {
		return fmt.Errorf("%w: transition %g not in (0, 0.5)", ErrInvalidDesign, transition)
	}

	return nil
}

// transitionParams maps the transition bandwidth to the elliptic selectivity
// k and nome q.
func transitionParams(transition float64) (k, q float64) {
	t := math.Tan((1 - 2*transition) * math.Pi / 4)
	k = t * t

	kk := math.Pow(1-k*k, 0.25)
	e := 0.5 * (1 - kk) / (1 + kk)
	e4 := e * e * e * e
	q = e * (1 + e4*(2+e4*(15+150*e4)))

	return k, q
}

func allpassCoefficient(c int, k, q float64, order int) float64 {
	num := thetaNumerator(q, order, c) * math.Pow(q, 0.25)
	den := thetaDenominator(q, order, c) + 0.5
	ww := (num * num) / (den * den)

	r := math.Sqrt((1-ww*k)*(1-ww/k)) / (1 + ww)

	return (1 - r) / (1 + r)
}

// thetaNumerator sums the odd Jacobi theta series until terms vanish.
func thetaNumerator(q float64, order, c int) float64 {
	var sum float64
	sign := 1.0
	for i := 0; ; i++ {
		term := sign * math.Pow(q, float64(i*(i+1))) *
			math.Sin(float64(2*i+1)*float64(c)*math.Pi/float64(order))
		sum += term
		if math.Abs(term) <= 1e-100 {
			return sum
		}
		sign = -sign
	}
}

// thetaDenominator sums the even Jacobi theta series until terms vanish.
func thetaDenominator(q float64, order, c int) float64 {
	var sum float64
	sign := -1.0
	for i := 1; ; i++ {
		term := sign * math.Pow(q, float64(i*i)) *
			math.Cos(2*float64(i)*float64(c)*math.Pi/float64(order))
		sum += term
		if math.Abs(term) <= 1e-100 {
			return sum
		}
		sign = -sign
	}
}
