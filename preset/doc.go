// Package preset reads and writes equalizer presets and applies them to a
// parameter store.
//
// A preset file is a flat JSON object. The keys Frequency{i}, Gain{i}, Q{i}
// and ZeroLatency hold normalized values; an optional Metadata object carries
// analysis results from the external preset analyzer. Only keys present in a
// file are applied, so partial presets are valid.
package preset
