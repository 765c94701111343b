// Package wavwriter records host audio output to a WAV file. Samples are
// streamed to disk as they arrive; the header is completed on Close.
package wavwriter

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	numChannels = 2
	bitDepth    = 16
	pcmFormat   = 1
)

// WavWriter writes interleaved stereo 16-bit samples to a WAV file. It is
// safe to call from the audio producer while another goroutine closes it.
type WavWriter struct {
	filename string

	mu     sync.Mutex
	f      *os.File
	enc    *wav.Encoder
	buf    *audio.IntBuffer
	frames int
	err    error
	closed bool
}

// New creates filename and prepares it for samples at sampleRate.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wavwriter: invalid sample rate %d", sampleRate)
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("wavwriter: %w", err)
	}

	return &WavWriter{
		filename: filename,
		f:        f,
		enc:      wav.NewEncoder(f, sampleRate, bitDepth, numChannels, pcmFormat),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends interleaved stereo samples. A trailing odd sample is
// dropped.
func (aw *WavWriter) Write(samples []int16) error {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if aw.closed {
		return fmt.Errorf("wavwriter: %s is closed", aw.filename)
	}
	if aw.err != nil {
		return aw.err
	}

	n := len(samples) &^ 1
	if n == 0 {
		return nil
	}

	if cap(aw.buf.Data) < n {
		aw.buf.Data = make([]int, n)
	}
	aw.buf.Data = aw.buf.Data[:n]
	for i := 0; i < n; i++ {
		aw.buf.Data[i] = int(samples[i])
	}

	if err := aw.enc.Write(aw.buf); err != nil {
		aw.err = fmt.Errorf("wavwriter: %w", err)
		return aw.err
	}
	aw.frames += n / numChannels
	return nil
}

// AudioSampleBatch records one block of host audio. Errors are kept and
// reported by Close.
func (aw *WavWriter) AudioSampleBatch(samples []int16) {
	_ = aw.Write(samples)
}

// Frames returns the number of stereo frames written so far.
func (aw *WavWriter) Frames() int {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	return aw.frames
}

// Filename returns the path being written.
func (aw *WavWriter) Filename() string {
	return aw.filename
}

// Close finishes the WAV header and closes the file. The first write error,
// if any, is returned. Calling Close again does nothing.
func (aw *WavWriter) Close() (rerr error) {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if aw.closed {
		return nil
	}
	aw.closed = true

	defer func() {
		if err := aw.f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	if err := aw.enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return aw.err
}
