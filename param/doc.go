// Package param holds the host-facing parameter surface of the equalizer.
//
// The store exposes 22 parameters in host order: Frequency0..6, Gain0..6,
// Q0..6 and ZeroLatency. Values are kept normalized to [0, 1] in atomics so
// the audio goroutine never observes a torn read. Frequency and Q use a skew
// of 0.5, gain is linear in dB.
//
// Writes notify subscribed listeners synchronously on the writing goroutine.
// A batch (see [Store.Batch]) raises the loading flag for its duration and
// tells [BatchListener]s once when it ends, so a preset load costs one
// coefficient recomputation instead of 22. A batch is not atomic as a whole:
// a reader that ignores the loading flag may see part of it.
package param
