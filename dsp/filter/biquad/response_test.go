package biquad

import (
	"math"
	"testing"
)

func TestResponseIdentity(t *testing.T) {
	c := Identity()
	for _, f := range []float64{0, 100, 1000, 10000, 23999} {
		if db := c.MagnitudeDB(f, 48000); !almostEqual(db, 0, 1e-9) {
			t.Fatalf("f=%v: |H| = %v dB, want 0", f, db)
		}
		if ph := c.Phase(f, 48000); !almostEqual(ph, 0, 1e-12) {
			t.Fatalf("f=%v: phase = %v, want 0", f, ph)
		}
	}
}

func TestMagnitudeSquaredMatchesComplex(t *testing.T) {
	c := Coefficients{B0: 1.05, B1: -1.9, B2: 0.87, A1: -1.9, A2: 0.92}
	for _, f := range []float64{20, 200, 2000, 20000} {
		h := c.Response(f, 48000)
		want := real(h)*real(h) + imag(h)*imag(h)
		got := c.MagnitudeSquared(f, 48000)
		if !almostEqual(got, want, 1e-9*math.Max(1, want)) {
			t.Fatalf("f=%v: got %v, want %v", f, got, want)
		}
	}
}

func TestTwoTapAverageNullAtNyquist(t *testing.T) {
	c := twoTapAverage()
	if db := c.MagnitudeDB(0, 48000); !almostEqual(db, 0, 1e-9) {
		t.Fatalf("DC gain = %v dB, want 0", db)
	}
	if m := c.MagnitudeSquared(24000, 48000); m > 1e-20 {
		t.Fatalf("Nyquist |H|^2 = %v, want 0", m)
	}
}

func TestChainResponseIsProduct(t *testing.T) {
	a := Coefficients{B0: 2}
	b := Coefficients{B0: 0.5, B1: 0.5}
	c := NewChain([]Coefficients{a, b})

	want := a.MagnitudeDB(1000, 48000) + b.MagnitudeDB(1000, 48000)
	if got := c.MagnitudeDB(1000, 48000); !almostEqual(got, want, 1e-9) {
		t.Fatalf("chain = %v dB, want %v", got, want)
	}
}

func TestImpulseResponseRestoresState(t *testing.T) {
	s := NewSection(Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04})
	s.ProcessSample(0.3)
	saved := s.State()

	ir := s.ImpulseResponse(4)
	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i := range want {
		if !almostEqual(ir[i], want[i], eps) {
			t.Fatalf("ir[%d] = %v, want %v", i, ir[i], want[i])
		}
	}
	if s.State() != saved {
		t.Fatalf("state not restored: %v vs %v", s.State(), saved)
	}
	if s.ImpulseResponse(0) != nil {
		t.Fatal("ImpulseResponse(0) should be nil")
	}
}
