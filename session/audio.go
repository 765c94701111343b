package session

import "github.com/user-none/pockystation/engine"

// audioBufferLen is the number of interleaved samples flushed at once
// (1024 stereo frames).
const audioBufferLen = 2048

// audioOutput is the part of Host the batcher hands samples to.
type audioOutput interface {
	AudioSampleBatch(samples []int16)
}

// audioBatcher collects mono DAC samples into stereo blocks. Samples still
// buffered when the batcher is dropped are lost.
type audioBatcher struct {
	out audioOutput
	buf [audioBufferLen]int16
	pos int
}

var _ engine.AudioSink = (*audioBatcher)(nil)

func newAudioBatcher(out audioOutput) *audioBatcher {
	return &audioBatcher{out: out}
}

// PushSample duplicates sample onto both channels, flushing the whole
// buffer to the host once it is full.
func (a *audioBatcher) PushSample(sample int16) {
	a.buf[a.pos] = sample
	a.buf[a.pos+1] = sample
	a.pos += 2

	if a.pos == len(a.buf) {
		a.out.AudioSampleBatch(a.buf[:])
		a.pos = 0
	}
}
