package resample

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

// halfBandResponse evaluates 0.5*(A0(z^2) + z^-1 A1(z^2)) at normalized
// frequency f (cycles per oversampled sample).
func halfBandResponse(coeffs []float64, f float64) complex128 {
	z1 := cmplx.Exp(complex(0, -2*math.Pi*f))
	z2 := z1 * z1

	a0, a1 := complex(1, 0), complex(1, 0)
	for i, c := range coeffs {
		ap := (complex(c, 0) + z2) / (1 + complex(c, 0)*z2)
		if i%2 == 0 {
			a0 *= ap
		} else {
			a1 *= ap
		}
	}

	return 0.5 * (a0 + z1*a1)
}

func TestDesignHalfBandDefaults(t *testing.T) {
	coeffs, err := DesignHalfBand(DefaultCoefficientCount, DefaultTransition)
	if err != nil {
		t.Fatal(err)
	}
	if len(coeffs) != DefaultCoefficientCount {
		t.Fatalf("len = %d", len(coeffs))
	}

	prev := 0.0
	for i, c := range coeffs {
		if c <= prev || c >= 1 {
			t.Fatalf("coefficient %d = %v not increasing in (0,1)", i, c)
		}
		prev = c
	}

	// First coefficient of the reference 12/0.05 design.
	if math.Abs(coeffs[0]-0.016774666777) > 1e-9 {
		t.Fatalf("coeffs[0] = %.12f", coeffs[0])
	}
}

func TestHalfBandResponse(t *testing.T) {
	coeffs, _ := DesignHalfBand(DefaultCoefficientCount, DefaultTransition)
	att, err := HalfBandAttenuation(DefaultCoefficientCount, DefaultTransition)
	if err != nil {
		t.Fatal(err)
	}
	if att < 150 {
		t.Fatalf("attenuation = %v dB, want > 150", att)
	}

	for _, f := range []float64{0.001, 0.05, 0.1, 0.2, 0.22} {
		db := 20 * math.Log10(cmplx.Abs(halfBandResponse(coeffs, f)))
		if math.Abs(db) > 1e-9 {
			t.Fatalf("passband f=%v: %v dB", f, db)
		}
	}
	if db := 20 * math.Log10(cmplx.Abs(halfBandResponse(coeffs, 0.25))); math.Abs(db+3.0103) > 1e-3 {
		t.Fatalf("half-band point: %v dB, want -3.01", db)
	}
	for _, f := range []float64{0.28, 0.35, 0.45, 0.499} {
		db := 20 * math.Log10(cmplx.Abs(halfBandResponse(coeffs, f)))
		if db > -att+1 {
			t.Fatalf("stopband f=%v: %v dB above -%v", f, db, att)
		}
	}
}

func TestDesignHalfBandInvalid(t *testing.T) {
	for _, tc := range []struct {
		n   int
		tbw float64
	}{
		{0, 0.1},
		{4, 0},
		{4, 0.5},
		{4, math.NaN()},
	} {
		if _, err := DesignHalfBand(tc.n, tc.tbw); !errors.Is(err, ErrInvalidDesign) {
			t.Fatalf("DesignHalfBand(%d,%v) err = %v", tc.n, tc.tbw, err)
		}
		if _, err := HalfBandAttenuation(tc.n, tc.tbw); !errors.Is(err, ErrInvalidDesign) {
			t.Fatalf("HalfBandAttenuation(%d,%v) err = %v", tc.n, tc.tbw, err)
		}
	}
}
