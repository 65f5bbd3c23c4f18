// Package history holds the fixed-capacity rotating sample store that backs
// every graph of the panel.
package history

import (
	"fmt"
	"iter"
	"slices"
)

// IndexError is the panic value raised when a logical index falls outside
// the buffer.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("history: index %d out of range [0, %d)", e.Index, e.Len)
}

// Buffer is a circular store of exactly Len() samples. Logical index 0 is the
// most recently written sample and Len()-1 the oldest one still retained.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	samples []float64
	base    int // physical slot of logical index 0
}

// NewBuffer returns a buffer of n zero samples. It panics if n < 1.
func NewBuffer(n int) *Buffer {
	if n < 1 {
		panic(fmt.Sprintf("history: invalid buffer capacity %d", n))
	}
	return &Buffer{samples: make([]float64, n)}
}

// Len returns the capacity, which is also the number of samples present.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Advance shifts the window by one tick: index 0 becomes index 1 and the
// oldest sample is dropped. The new index 0 keeps a stale value until it is
// written, so callers advance once per tick and then Write(0, v).
func (b *Buffer) Advance() {
	b.base = (b.base + len(b.samples) - 1) % len(b.samples)
}

// Write sets the sample at logical index i.
func (b *Buffer) Write(i int, v float64) {
	b.samples[b.slot(i)] = v
}

// Read returns the sample at logical index i.
func (b *Buffer) Read(i int) float64 {
	return b.samples[b.slot(i)]
}

// Chronological yields all samples from the oldest to the newest. The
// sequence can be ranged over any number of times.
func (b *Buffer) Chronological() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for i := len(b.samples) - 1; i >= 0; i-- {
			if !yield(b.samples[b.slot(i)]) {
				return
			}
		}
	}
}

// Values returns a copy of the samples in chronological order.
func (b *Buffer) Values() []float64 {
	return slices.Collect(b.Chronological())
}

func (b *Buffer) slot(i int) int {
	if i < 0 || i >= len(b.samples) {
		panic(&IndexError{Index: i, Len: len(b.samples)})
	}
	return (b.base + i) % len(b.samples)
}
