// Package wave writes canonical RIFF/WAVE files carrying 16-bit
// little-endian PCM, the container CD audio is normally exported to.
// See https://en.wikipedia.org/wiki/WAV for the header layout.
package wave

import (
	"encoding/binary"
	"fmt"
	"io"

	"discern/cdda"
)

// HeaderSize is the length in bytes of the canonical 44-byte header:
// RIFF chunk, fmt chunk and the data chunk preamble.
const HeaderSize = 44

// Header renders the canonical WAV header for a 16-bit PCM payload of
// dataBytes bytes with the given channel count at CD sample rate.
func Header(channels int, dataBytes int64) []byte {
	blockAlign := channels * cdda.BytesPerSample
	byteRate := cdda.SampleRate * blockAlign

	h := make([]byte, HeaderSize)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], uint32(dataBytes+HeaderSize-8))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(h[20:22], 1)  // PCM, no compression
	binary.LittleEndian.PutUint16(h[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(h[24:28], cdda.SampleRate)
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], cdda.BytesPerSample*8)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], uint32(dataBytes))
	return h
}

// Writer streams PCM samples into a WAV file. The header is written
// up front with zero sizes and patched on Finalize, so the destination
// must support seeking.
type Writer struct {
	w        io.WriteSeeker
	channels int
	written  int64
	headered bool
}

func NewWriter(w io.WriteSeeker, channels int) *Writer {
	return &Writer{w: w, channels: channels}
}

// WriteSamples appends interleaved 16-bit samples to the data chunk.
func (w *Writer) WriteSamples(samples []int16) error {
	if !w.headered {
		if _, err := w.w.Write(Header(w.channels, 0)); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.headered = true
	}
	buf := make([]byte, len(samples)*cdda.BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	n, err := w.w.Write(buf)
	w.written += int64(n)
	return err
}

// Finalize patches the chunk sizes to match the data actually written
// and leaves the cursor at the end of the file.
func (w *Writer) Finalize() error {
	if !w.headered {
		if _, err := w.w.Write(Header(w.channels, 0)); err != nil {
			return err
		}
		w.headered = true
	}
	if _, err := w.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("patch header: %w", err)
	}
	if _, err := w.w.Write(Header(w.channels, w.written)); err != nil {
		return fmt.Errorf("patch header: %w", err)
	}
	_, err := w.w.Seek(0, io.SeekEnd)
	return err
}
