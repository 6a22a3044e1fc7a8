// Package engine runs the seven-band equalizer for a host.
//
// An [Engine] moves through Uninitialized, Prepared and Running. The host
// calls [Engine.Prepare] from its control goroutine and then
// [Engine.ProcessBlock] from its audio goroutine. Per block the engine
// optionally replaces the input with the test signal, picks up parameter
// changes, filters (2x oversampled unless zero-latency mode is on), and feeds
// the spectrum analyzer.
//
// Two coefficient paths exist on purpose. The control path publishes an
// immutable [CoefficientSnapshot] designed from the unsmoothed parameters on
// every change, for display. The audio path designs from smoothed values
// while a ramp is running in oversampled mode and from the unsmoothed values
// otherwise.
//
// ProcessBlock never panics. Failures inside a block restore the dry input.
package engine
