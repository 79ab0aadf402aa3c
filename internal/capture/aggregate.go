package capture

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-recfx/internal/pcm"
)

// Half selects one half of the staging buffer.
type Half int

const (
	// FirstHalf is staging[0 : blockSize/2].
	FirstHalf Half = iota

	// SecondHalf is staging[blockSize/2 : blockSize].
	SecondHalf
)

func (h Half) String() string {
	if h == FirstHalf {
		return "first"
	}
	return "second"
}

// ErrLayout indicates a staging buffer or store whose sizes cannot be
// aggregated block by block.
var ErrLayout = errors.New("invalid capture buffer layout")

// HalfOffset returns the store offset, in samples, where the given half of
// block lands: block*blockSize for the first half and half a block further
// for the second. Multiply by pcm.BytesPerSample for a byte offset.
func HalfOffset(block int, half Half, blockSize int) int {
	offset := block * blockSize
	if half == SecondHalf {
		offset += blockSize / 2
	}
	return offset
}

// Aggregator drains staging halves into consecutive positions of the store.
type Aggregator struct {
	store     *pcm.Store
	staging   []pcm.Sample
	blockSize int
	filled    int
}

// NewAggregator checks that the store holds a whole number of staging blocks
// and that each block splits into two equal halves.
func NewAggregator(store *pcm.Store, staging []pcm.Sample) (*Aggregator, error) {
	blockSize := len(staging)
	if blockSize < 2 || blockSize%2 != 0 {
		return nil, fmt.Errorf("%w: block size %d must be even and positive", ErrLayout, blockSize)
	}
	if store == nil || store.Len()%blockSize != 0 {
		return nil, fmt.Errorf("%w: store is not a whole number of %d-sample blocks", ErrLayout, blockSize)
	}
	return &Aggregator{
		store:     store,
		staging:   staging,
		blockSize: blockSize,
	}, nil
}

// Blocks returns how many staging blocks fill the store.
func (a *Aggregator) Blocks() int {
	return a.store.Len() / a.blockSize
}

// Filled returns the number of samples copied so far.
func (a *Aggregator) Filled() int {
	return a.filled
}

// CopyHalf copies exactly blockSize/2 samples from the selected staging half
// into the store slot for block.
func (a *Aggregator) CopyHalf(block int, half Half) error {
	if block < 0 || block >= a.Blocks() {
		return fmt.Errorf("%w: block %d of %d", pcm.ErrOutOfRange, block, a.Blocks())
	}

	n := a.blockSize / 2
	src := a.staging[:n]
	if half == SecondHalf {
		src = a.staging[n:]
	}

	if err := a.store.Write(HalfOffset(block, half, a.blockSize), src); err != nil {
		return err
	}
	a.filled += n
	return nil
}
