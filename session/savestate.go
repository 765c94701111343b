package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/user-none/pockystation/engine"
)

// Save state format constants
const (
	stateVersion    = 1
	stateMagic      = "PKSTATE\x00"
	stateHeaderSize = 22 // magic(8) + version(2) + payloadLen(4) + payloadCRC(4) + firmwareCRC(4)

	// stateMargin is added to the probed length. Encoded states of the
	// same machine may differ slightly in size.
	stateMargin = 1024
)

var errStateOverflow = errors.New("state does not fit in buffer")

// countingWriter counts and discards everything written to it.
type countingWriter struct {
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

// sliceWriter writes into a fixed buffer and fails once it is full.
type sliceWriter struct {
	buf []byte
	n   int
}

func (w *sliceWriter) Write(p []byte) (int, error) {
	n := copy(w.buf[w.n:], p)
	w.n += n
	if n < len(p) {
		return n, errStateOverflow
	}
	return n, nil
}

// encodeState runs the machine encoder once into w, returning the payload
// length and CRC. The probe and the real write both go through here so
// their length accounting cannot diverge.
func encodeState(m engine.Machine, w io.Writer) (int, uint32, error) {
	sum := crc32.NewIEEE()
	count := &countingWriter{}
	if err := m.EncodeState(io.MultiWriter(w, sum, count)); err != nil {
		return 0, 0, err
	}
	return count.n, sum.Sum32(), nil
}

// probeStateSize returns the buffer size advertised to the host.
func probeStateSize(m engine.Machine) (int, error) {
	n, _, err := encodeState(m, io.Discard)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return stateHeaderSize + n + stateMargin, nil
}

// writeState encodes m into buf and returns the number of bytes used.
func writeState(m engine.Machine, buf []byte) (int, error) {
	if len(buf) < stateHeaderSize {
		return 0, fmt.Errorf("%w: %d byte buffer is smaller than the header", ErrEncode, len(buf))
	}

	sw := &sliceWriter{buf: buf[stateHeaderSize:]}
	n, sum, err := encodeState(m, sw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	copy(buf[0:8], stateMagic)
	binary.LittleEndian.PutUint16(buf[8:10], stateVersion)
	binary.LittleEndian.PutUint32(buf[10:14], uint32(n))
	binary.LittleEndian.PutUint32(buf[14:18], sum)
	binary.LittleEndian.PutUint32(buf[18:22], firmwareCRC(m))

	return stateHeaderSize + n, nil
}

// readState validates a save state and returns its payload and the CRC of
// the firmware it was made with. Bytes after the payload are ignored.
func readState(buf []byte) ([]byte, uint32, error) {
	if len(buf) < stateHeaderSize {
		return nil, 0, fmt.Errorf("%w: save state too short", ErrDecode)
	}
	if string(buf[0:8]) != stateMagic {
		return nil, 0, fmt.Errorf("%w: invalid save state magic", ErrDecode)
	}

	version := binary.LittleEndian.Uint16(buf[8:10])
	if version > stateVersion {
		return nil, 0, fmt.Errorf("%w: unsupported save state version %d", ErrDecode, version)
	}

	n := binary.LittleEndian.Uint32(buf[10:14])
	if uint64(n) > uint64(len(buf)-stateHeaderSize) {
		return nil, 0, fmt.Errorf("%w: save state truncated", ErrDecode)
	}
	payload := buf[stateHeaderSize : stateHeaderSize+int(n)]

	expectedCRC := binary.LittleEndian.Uint32(buf[14:18])
	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return nil, 0, fmt.Errorf("%w: save state data is corrupted", ErrDecode)
	}

	return payload, binary.LittleEndian.Uint32(buf[18:22]), nil
}

func firmwareCRC(m engine.Machine) uint32 {
	if fw := m.Firmware(); fw != nil {
		return fw.CRC32()
	}
	return 0
}
