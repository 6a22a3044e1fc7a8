package biquad

import (
	"math"
	"math/cmplx"
)

// stabilityMargin keeps pole radii strictly inside the unit circle.
const stabilityMargin = 1e-9

// Poles returns the z-plane poles of 1 + A1*z^-1 + A2*z^-2 = 0.
func (c *Coefficients) Poles() [2]complex128 {
	return quadraticRoots(1, c.A1, c.A2)
}

// Zeros returns the z-plane zeros of B0 + B1*z^-1 + B2*z^-2 = 0.
func (c *Coefficients) Zeros() [2]complex128 {
	return quadraticRoots(c.B0, c.B1, c.B2)
}

// IsFinite reports whether all five coefficients are finite numbers.
func (c *Coefficients) IsFinite() bool {
	for _, v := range [5]float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// IsStable reports whether the coefficients are finite and both poles lie
// strictly inside the unit circle.
func (c *Coefficients) IsStable() bool {
	if !c.IsFinite() {
		return false
	}

	for _, p := range c.Poles() {
		if cmplx.Abs(p) >= 1-stabilityMargin {
			return false
		}
	}

	return true
}

func quadraticRoots(a, b, c float64) [2]complex128 {
	if a == 0 {
		if b == 0 {
			return [2]complex128{}
		}
		return [2]complex128{complex(-c/b, 0), 0}
	}

	sqrtDisc := cmplx.Sqrt(complex(b*b-4*a*c, 0))
	den := complex(2*a, 0)

	return [2]complex128{
		(-complex(b, 0) + sqrtDisc) / den,
		(-complex(b, 0) - sqrtDisc) / den,
	}
}
