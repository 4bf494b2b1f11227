package paranoia

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// PCMReader is a byte-stream view of a TrackReader: verified samples as
// little-endian signed 16-bit PCM, the layout WAV payloads and CD images
// use. Closing it closes the underlying session.
type PCMReader struct {
	tr  *TrackReader
	buf bytes.Buffer
	eof bool
}

var _ io.ReadCloser = (*PCMReader)(nil)

// NewPCMReader wraps a track session in a byte stream.
func NewPCMReader(tr *TrackReader) *PCMReader {
	return &PCMReader{tr: tr}
}

func (r *PCMReader) Read(p []byte) (int, error) {
	for r.buf.Len() < len(p) && !r.eof {
		sec, err := r.tr.NextSector()
		if errors.Is(err, io.EOF) {
			r.eof = true
			break
		}
		if err != nil {
			if r.buf.Len() > 0 {
				break // drain what we have before surfacing the error
			}
			return 0, err
		}
		var frame [2]byte
		for _, s := range sec.Samples {
			binary.LittleEndian.PutUint16(frame[:], uint16(s))
			r.buf.Write(frame[:])
		}
	}
	if r.buf.Len() == 0 {
		if r.eof {
			return 0, io.EOF
		}
		return 0, r.tr.err
	}
	return r.buf.Read(p)
}

func (r *PCMReader) Close() error {
	r.buf.Truncate(0)
	return r.tr.Close()
}
