// Package capture moves live audio from producer goroutines to the engine
// tick through single-producer ring buffers and turns it into onsets.
package capture

import "sync/atomic"

// Ring is a single-producer circular sample buffer. The producer only ever
// advances the write cursor; readers poll it and keep their own cursor.
type Ring struct {
	buf     []float64
	written atomic.Uint64 // total samples ever written
}

// NewRing creates a ring holding capacity samples.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float64, capacity)}
}

func (r *Ring) Cap() int { return len(r.buf) }

// Written returns the write cursor.
func (r *Ring) Written() uint64 { return r.written.Load() }

// Write appends samples, overwriting the oldest ones. Only one goroutine
// may write.
func (r *Ring) Write(samples []float64) {
	w := r.written.Load()
	size := uint64(len(r.buf))
	if uint64(len(samples)) > size {
		w += uint64(len(samples)) - size
		samples = samples[len(samples)-int(size):]
	}
	for len(samples) > 0 {
		at := int(w % size)
		n := copy(r.buf[at:], samples)
		samples = samples[n:]
		w += uint64(n)
	}
	r.written.Store(w)
}

// Read copies the samples starting at cursor into dst and returns how many
// were copied. The caller must keep cursor within one capacity of the write
// cursor.
func (r *Ring) Read(cursor uint64, dst []float64) int {
	avail := r.written.Load() - cursor
	if uint64(len(dst)) > avail {
		dst = dst[:avail]
	}
	size := uint64(len(r.buf))
	total := 0
	for total < len(dst) {
		at := int((cursor + uint64(total)) % size)
		total += copy(dst[total:], r.buf[at:])
	}
	return total
}
