// Package spectrum provides the equalizer's display spectrum analyzer and
// small spectrum-domain helpers.
//
// [Analyzer] collects post-filter samples in a 2048-sample FIFO and, every
// few processed blocks, transforms the most recent 1024 samples with a Hann
// window into 512 dB magnitudes clamped to [-100, 0]. All memory is
// allocated by [NewAnalyzer]; Push, EndBlock and Transform do not allocate.
// Results are published under a mutex that the audio side only ever
// try-locks, so a busy reader delays publication by one block instead of
// stalling the audio thread.
//
// [Goertzel] measures a single frequency, which the tools and tests use to
// check filter gains on rendered audio.
package spectrum
