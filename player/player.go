// Package player adapts a verified extraction session to the beep
// streaming interface so a track can be played while it rips.
package player

import (
	"errors"
	"fmt"
	"io"

	"github.com/faiface/beep"

	"discern/cdda"
	"discern/paranoia"
)

// Format is the beep format of CD audio.
var Format = beep.Format{
	SampleRate:  cdda.SampleRate,
	NumChannels: cdda.Channels,
	Precision:   cdda.BytesPerSample,
}

// Streamer plays one track through a verifying session. Seeking
// abandons the current session and starts a fresh one at the target
// sector, since verified audio is only ever produced in order.
type Streamer struct {
	p     *paranoia.Paranoia
	first int32
	end   int32
	tr    *paranoia.TrackReader
	buf   []int16 // remainder of the current sector
	pos   int     // frames from the start of the track
	err   error
}

var _ beep.StreamSeekCloser = (*Streamer)(nil)

func New(p *paranoia.Paranoia, track uint8) (*Streamer, error) {
	first, end, err := cdda.TrackRange(p.Drive(), track)
	if err != nil {
		return nil, err
	}
	return &Streamer{
		p:     p,
		first: first,
		end:   end,
		tr:    p.ReadSectors(first, end),
	}, nil
}

func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if len(s.buf) == 0 {
			sec, err := s.tr.NextSector()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				s.err = err
				return n, n > 0
			}
			s.buf = sec.Samples
		}
		samples[n][0] = float64(s.buf[0]) / (1 << 15)
		samples[n][1] = float64(s.buf[1]) / (1 << 15)
		s.buf = s.buf[cdda.Channels:]
		s.pos++
		n++
	}
	return n, n > 0
}

func (s *Streamer) Err() error {
	return s.err
}

func (s *Streamer) Len() int {
	return int(s.end-s.first) * cdda.FramesPerSector
}

func (s *Streamer) Position() int {
	return s.pos
}

// Seek restarts verification at the sector containing frame p and
// discards the partial sector up to it.
func (s *Streamer) Seek(p int) error {
	if p < 0 || p > s.Len() {
		return fmt.Errorf("seek out of range: %d of %d", p, s.Len())
	}
	if err := s.tr.Close(); err != nil {
		return err
	}
	sector := s.first + int32(p/cdda.FramesPerSector)
	s.tr = s.p.ReadSectors(sector, s.end)
	s.buf = nil
	s.err = nil
	if skip := p % cdda.FramesPerSector; skip > 0 && sector < s.end {
		sec, err := s.tr.NextSector()
		if err != nil {
			s.err = err
			return err
		}
		s.buf = sec.Samples[skip*cdda.Channels:]
	}
	s.pos = p
	return nil
}

func (s *Streamer) Close() error {
	return s.tr.Close()
}
