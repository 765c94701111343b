package engine

import (
	"hash/crc32"
	"io"
)

// SystemInfo describes the emulated system as reported by the engine.
type SystemInfo struct {
	Name       string
	Version    string
	Extensions []string // storage image extensions, e.g. ".mcr"

	FirmwareSize int // exact firmware image length in bytes
	StorageSize  int // exact storage image length in bytes

	MasterClockHz uint32
	SampleRate    int // DAC output rate in Hz

	// CenturyAddress is the RAM address where the firmware keeps the
	// century byte. The RTC register block has no century register.
	CenturyAddress uint32
}

// Factory creates machines and validates artifacts for one engine.
type Factory interface {
	// SystemInfo returns the fixed system parameters.
	SystemInfo() SystemInfo

	// RecognizeFirmware reports whether data is a known firmware image.
	RecognizeFirmware(data []byte) bool

	// RecognizeStorage reports whether data is an acceptable storage image.
	RecognizeStorage(data []byte) bool

	// NewMachine powers on a machine with the given firmware, storage
	// contents and audio sink.
	NewMachine(fw *Firmware, storage []byte, sink AudioSink) (Machine, error)

	// DecodeMachine builds a machine from a state previously written with
	// Machine.EncodeState. The result has no firmware or audio sink
	// attached.
	DecodeMachine(r io.Reader) (Machine, error)
}

// Firmware is an immutable firmware image.
type Firmware struct {
	data []byte
	crc  uint32
}

// NewFirmware copies data into a new firmware image.
func NewFirmware(data []byte) *Firmware {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Firmware{
		data: buf,
		crc:  crc32.ChecksumIEEE(buf),
	}
}

// Bytes returns the image contents. The returned slice must not be modified.
func (f *Firmware) Bytes() []byte {
	return f.data
}

// Len returns the image length in bytes.
func (f *Firmware) Len() int {
	return len(f.data)
}

// CRC32 returns the IEEE CRC32 of the image.
func (f *Firmware) CRC32() uint32 {
	return f.crc
}
