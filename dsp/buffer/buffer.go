package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacity is returned when a requested length exceeds the block capacity.
	ErrCapacity = errors.New("buffer: length exceeds capacity")
	// ErrChannels is returned when a view needs more channel slots than the block has.
	ErrChannels = errors.New("buffer: too many channels for block")
)

// Block is a set of equally sized channels.
//
// An owned block (from [New]) keeps its storage for its whole lifetime and
// only changes its active length. A view block (from [NewView]) references
// caller memory that is replaced on every [Block.Attach].
type Block struct {
	channels [][]float64
	active   int
	n        int
	capacity int
	owned    bool
}

// New returns an owned block with numChannels channels of capacity samples each.
// The active length starts at capacity.
func New(numChannels, capacity int) *Block {
	if numChannels < 0 {
		numChannels = 0
	}
	if capacity < 0 {
		capacity = 0
	}

	storage := make([]float64, numChannels*capacity)
	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = storage[ch*capacity : (ch+1)*capacity : (ch+1)*capacity]
	}

	return &Block{
		channels: channels,
		active:   numChannels,
		n:        capacity,
		capacity: capacity,
		owned:    true,
	}
}

// NewView returns an empty view block able to reference up to maxChannels
// channels without allocating.
func NewView(maxChannels int) *Block {
	if maxChannels < 0 {
		maxChannels = 0
	}

	return &Block{channels: make([][]float64, maxChannels)}
}

// Attach points a view block at src[ch][offset:offset+n] for every channel.
// Channels whose slice is too short make Attach fail without modifying the block.
func (b *Block) Attach(src [][]float64, offset, n int) error {
	if b.owned {
		return fmt.Errorf("buffer: attach on owned block")
	}
	if len(src) > len(b.channels) {
		return fmt.Errorf("%w: %d > %d", ErrChannels, len(src), len(b.channels))
	}
	if offset < 0 || n < 0 {
		return fmt.Errorf("buffer: invalid span offset=%d n=%d", offset, n)
	}
	for ch := range src {
		if len(src[ch]) < offset+n {
			return fmt.Errorf("%w: channel %d has %d samples, need %d", ErrCapacity, ch, len(src[ch]), offset+n)
		}
	}

	for ch := range src {
		b.channels[ch] = src[ch][offset : offset+n]
	}
	for ch := len(src); ch < len(b.channels); ch++ {
		b.channels[ch] = nil
	}

	b.active = len(src)
	b.n = n
	b.capacity = n

	return nil
}

// NumChannels returns the number of active channels.
func (b *Block) NumChannels() int { return b.active }

// NumSamples returns the active length of every channel.
func (b *Block) NumSamples() int { return b.n }

// Capacity returns the maximum length supported by SetNumSamples.
func (b *Block) Capacity() int { return b.capacity }

// Channel returns the active samples of channel ch.
func (b *Block) Channel(ch int) []float64 {
	return b.channels[ch][:b.n]
}

// SetNumSamples changes the active length without touching sample data.
func (b *Block) SetNumSamples(n int) error {
	if n < 0 || n > b.capacity {
		return fmt.Errorf("%w: %d > %d", ErrCapacity, n, b.capacity)
	}

	b.n = n

	return nil
}

// Zero clears the active samples of every channel.
func (b *Block) Zero() {
	for ch := 0; ch < b.active; ch++ {
		clear(b.Channel(ch))
	}
}

// CopyFrom copies the overlapping channels and samples of src into b and
// returns the number of samples copied per channel.
func (b *Block) CopyFrom(src *Block) int {
	channels := min(b.active, src.active)
	n := min(b.n, src.n)
	for ch := 0; ch < channels; ch++ {
		copy(b.channels[ch][:n], src.channels[ch][:n])
	}

	return n
}
