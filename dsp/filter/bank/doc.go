// Package bank implements the seven-band equalizer filter bank: one
// [biquad.Chain] per channel, bands processed in series from band 0 to band
// 6.
//
// Every band runs on every sample, including bands at 0 dB, so the phase
// response does not change shape when a band is toggled through unity.
// Coefficient updates through [FilterBank.SetCoefficients] keep the delay
// lines, which avoids clicks on parameter changes.
//
// Basic usage:
//
//	fb := bank.New()
//	_ = fb.Prepare(48000, 512, 2)
//	c, _ := parametric.Design(parametric.Peak, parametric.Band{Frequency: 1000, Gain: 6, Q: 1}, 48000, true)
//	_ = fb.SetCoefficients(3, c)
//	fb.Process(block)
package bank
