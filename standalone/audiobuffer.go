//go:build !libretro

package standalone

import (
	"io"
	"sync"
)

// AudioRingBuffer is a fixed-size byte FIFO between the emulation goroutine
// and oto's player. Writers never block: when the buffer is full the oldest
// bytes are dropped. Read blocks until data arrives or the buffer is
// closed.
type AudioRingBuffer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []byte
	readPos  int
	writePos int
	count    int
	closed   bool
}

// NewAudioRingBuffer creates a ring buffer holding up to capacity bytes.
func NewAudioRingBuffer(capacity int) *AudioRingBuffer {
	rb := &AudioRingBuffer{buf: make([]byte, capacity)}
	rb.cond = sync.NewCond(&rb.mu)
	return rb
}

// Write appends p, overwriting the oldest data on overflow. Only the last
// capacity bytes of an oversized write are kept. Writes after Close are
// ignored.
func (rb *AudioRingBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.closed || len(p) == 0 {
		return
	}

	size := len(rb.buf)
	if len(p) >= size {
		copy(rb.buf, p[len(p)-size:])
		rb.readPos = 0
		rb.writePos = 0
		rb.count = size
		rb.cond.Broadcast()
		return
	}

	if over := rb.count + len(p) - size; over > 0 {
		rb.readPos = (rb.readPos + over) % size
		rb.count -= over
	}

	n := copy(rb.buf[rb.writePos:], p)
	if n < len(p) {
		copy(rb.buf, p[n:])
	}
	rb.writePos = (rb.writePos + len(p)) % size
	rb.count += len(p)

	rb.cond.Broadcast()
}

// Read implements io.Reader for oto. After Close the remaining data is
// drained and then io.EOF is returned.
func (rb *AudioRingBuffer) Read(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for rb.count == 0 && !rb.closed {
		rb.cond.Wait()
	}
	if rb.count == 0 {
		return 0, io.EOF
	}

	n := len(p)
	if n > rb.count {
		n = rb.count
	}

	first := copy(p[:n], rb.buf[rb.readPos:])
	if first < n {
		copy(p[first:n], rb.buf)
	}
	rb.readPos = (rb.readPos + n) % len(rb.buf)
	rb.count -= n

	return n, nil
}

// Buffered returns the number of bytes waiting to be read.
func (rb *AudioRingBuffer) Buffered() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Clear drops all buffered data.
func (rb *AudioRingBuffer) Clear() {
	rb.mu.Lock()
	rb.readPos = 0
	rb.writePos = 0
	rb.count = 0
	rb.mu.Unlock()
}

// Close wakes any blocked reader. Data already buffered can still be read.
func (rb *AudioRingBuffer) Close() {
	rb.mu.Lock()
	rb.closed = true
	rb.cond.Broadcast()
	rb.mu.Unlock()
}
