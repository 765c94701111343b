//go:build !libretro

package standalone

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ringBufferFrames is the ring buffer length in stereo frames.
const ringBufferFrames = 8192

// AudioPlayer plays interleaved stereo int16 samples through oto. Samples
// are written to a ring buffer which oto's player reads from in a pull
// model.
type AudioPlayer struct {
	player     *oto.Player
	ringBuffer *AudioRingBuffer
	audioBytes []byte // reused for int16-to-byte conversion
}

// oto allows a single context per process
var (
	otoCtx      *oto.Context
	otoRate     int
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext(sampleRate int) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		otoRate = sampleRate
		<-readyChan
	})
	if otoInitErr == nil && otoRate != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz", otoRate)
	}
	return otoCtx, otoInitErr
}

// NewAudioPlayer starts playback at sampleRate. The volume is applied
// before Play so a muted player never pops.
func NewAudioPlayer(sampleRate int, volume float64) (*AudioPlayer, error) {
	ctx, err := ensureOtoContext(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	rb := NewAudioRingBuffer(ringBufferFrames * 4)
	player := ctx.NewPlayer(rb)
	// ~50ms of player-side buffering; the default half second makes pacing
	// overshoot at startup.
	player.SetBufferSize(sampleRate / 20 * 4)
	player.SetVolume(clampVolume(volume))
	player.Play()

	return &AudioPlayer{
		player:     player,
		ringBuffer: rb,
		audioBytes: make([]byte, 0, 4096),
	}, nil
}

// QueueSamples converts samples to little-endian bytes and queues them.
func (a *AudioPlayer) QueueSamples(samples []int16) {
	if len(samples) == 0 {
		return
	}

	needed := len(samples) * 2
	if cap(a.audioBytes) < needed {
		a.audioBytes = make([]byte, 0, needed)
	}
	a.audioBytes = a.audioBytes[:0]
	for _, sample := range samples {
		a.audioBytes = append(a.audioBytes, byte(sample), byte(sample>>8))
	}

	a.ringBuffer.Write(a.audioBytes)
}

// AudioSampleBatch queues one block of host audio.
func (a *AudioPlayer) AudioSampleBatch(samples []int16) {
	a.QueueSamples(samples)
}

// GetBufferLevel returns the bytes queued in the ring buffer and inside
// the oto player. The emulation loop paces itself on this.
func (a *AudioPlayer) GetBufferLevel() int {
	return a.ringBuffer.Buffered() + a.player.BufferedSize()
}

// ClearQueue drops queued audio, used after a state load so stale audio
// is not played.
func (a *AudioPlayer) ClearQueue() {
	a.ringBuffer.Clear()
}

// SetVolume sets the playback volume, clamped to [0, 2].
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(clampVolume(vol))
}

func clampVolume(vol float64) float64 {
	if vol < 0 {
		return 0
	}
	if vol > 2.0 {
		return 2.0
	}
	return vol
}

// Close stops playback.
func (a *AudioPlayer) Close() {
	if a.ringBuffer != nil {
		a.ringBuffer.Close()
	}
	if a.player != nil {
		a.player.Close()
	}
}
