// Package resample provides the 2x oversampler used by the equalizer's
// non-zero-latency mode.
//
// The filters are half-band polyphase IIR designs: two parallel chains of
// first-order allpass sections (in z^-2) whose average is an elliptic
// half-band lowpass. [DesignHalfBand] computes the allpass coefficients for a
// coefficient count and a normalized transition bandwidth; [Oversampler]
// runs matched interpolation and decimation on multichannel blocks.
//
// The passband is flat to numerical precision because the two branches are
// power complementary. Group delay at low frequencies is reported by
// [Oversampler.Latency].
package resample
