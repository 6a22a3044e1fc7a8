// Package buffer provides the multichannel audio block used on the real-time
// path. A [Block] either owns preallocated storage or acts as a view over
// host-provided channel slices; neither form allocates once constructed.
package buffer
