// Package signal provides the diagnostic test-signal source of the equalizer.
//
// A [TestSignal] replaces the processed input with a sine, white noise or
// pink noise when enabled. Settings are changed from the control goroutine
// while Generate runs on the audio goroutine, so every method shares one
// mutex.
package signal
