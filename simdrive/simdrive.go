// Package simdrive provides an in-memory cdda.Drive backed by synthetic
// audio, with scripted faults: seek jitter, sample corruption, and
// timeouts, all keyed by read attempt number so tests are deterministic.
package simdrive

import (
	"math/rand"

	"discern/cdda"
)

// Disc holds the synthetic audio and table of contents the drive serves.
type Disc struct {
	toc     []cdda.TrackPosition
	samples []int16
}

// NewDisc builds a disc with one track per entry of trackLengths (in
// sectors), filled with pseudo-random samples from seed. Random PCM is
// statistically unique, which is what sector alignment needs to work with.
func NewDisc(trackLengths []int32, seed int64) *Disc {
	toc := make([]cdda.TrackPosition, len(trackLengths))
	var start int32
	for i, length := range trackLengths {
		toc[i] = cdda.TrackPosition{
			TrackNum:      uint8(i + 1),
			StartSector:   start,
			LengthSectors: length,
		}
		start += length
	}

	r := rand.New(rand.NewSource(seed))
	samples := make([]int16, int(start)*cdda.SamplesPerSector)
	for i := range samples {
		samples[i] = int16(r.Intn(1 << 16))
	}
	return &Disc{toc: toc, samples: samples}
}

// LengthSectors is the total number of audio sectors on the disc.
func (d *Disc) LengthSectors() int32 {
	if len(d.toc) == 0 {
		return 0
	}
	return d.toc[len(d.toc)-1].EndSector()
}

// Sector returns a copy of the true samples of one sector, for test
// assertions against drive output.
func (d *Disc) Sector(lba int32) []int16 {
	start := int(lba) * cdda.SamplesPerSector
	out := make([]int16, cdda.SamplesPerSector)
	copy(out, d.samples[start:start+cdda.SamplesPerSector])
	return out
}

// Corruption overwrites one sample of one sector during scripted read
// attempts, simulating a scratch or an interpolation error in the drive.
type Corruption struct {
	Attempt int   // 1-based read attempt the corruption first appears on
	Once    bool  // corrupt only that attempt instead of every one after
	LBA     int32 // sector the corruption lands in
	Sample  int   // sample index within the sector
	Flip    int16 // XORed into the stored sample value
}

// Drive is a simulated cdda.Drive. The fault-script fields may be set
// before reading begins; the zero value of each means no faults.
type Drive struct {
	// Jitter maps a read attempt number (1-based) to a positioning
	// error in samples: the drive returns data actually starting that
	// many samples away from the requested address while still
	// claiming the requested address.
	Jitter map[int]int

	// Corruptions lists scripted sample overwrites.
	Corruptions []Corruption

	// TimeoutAttempts lists read attempts that fail with ErrReadTimeout
	// without returning data.
	TimeoutAttempts map[int]bool

	disc   *Disc
	reads  int
	closed bool
}

var _ cdda.Drive = (*Drive)(nil)

// New returns a fault-free drive for the disc. Fault scripts can be added
// by setting the exported fields before use.
func New(disc *Disc) *Drive {
	return &Drive{disc: disc}
}

// Reads reports how many read attempts the drive has served, including
// ones that failed.
func (s *Drive) Reads() int {
	return s.reads
}

func (s *Drive) ReadSectors(lba int32, count int) (cdda.ReadRun, error) {
	if s.closed {
		return cdda.ReadRun{}, cdda.ErrNotOpen
	}
	s.reads++
	attempt := s.reads

	if s.TimeoutAttempts[attempt] {
		return cdda.ReadRun{}, cdda.ErrReadTimeout
	}

	discSamples := int(s.disc.LengthSectors()) * cdda.SamplesPerSector
	start := int(lba)*cdda.SamplesPerSector + s.Jitter[attempt]
	end := start + count*cdda.SamplesPerSector
	if start < 0 {
		start = 0
	}
	if end > discSamples {
		end = discSamples
	}
	if start >= end {
		return cdda.ReadRun{}, cdda.ErrPositionMismatch
	}

	samples := make([]int16, end-start)
	copy(samples, s.disc.samples[start:end])

	for _, c := range s.Corruptions {
		if attempt < c.Attempt || (c.Once && attempt != c.Attempt) {
			continue
		}
		pos := int(c.LBA)*cdda.SamplesPerSector + c.Sample - start
		if pos >= 0 && pos < len(samples) {
			samples[pos] ^= c.Flip
		}
	}

	return cdda.ReadRun{LBA: lba, Samples: samples}, nil
}

func (s *Drive) TOC() []cdda.TrackPosition {
	toc := make([]cdda.TrackPosition, len(s.disc.toc))
	copy(toc, s.disc.toc)
	return toc
}

func (s *Drive) TrackCount() int {
	return len(s.disc.toc)
}

func (s *Drive) TrackChannels(track uint8) (int, bool) {
	if track < 1 || int(track) > len(s.disc.toc) {
		return 0, false
	}
	return cdda.Channels, true
}

func (s *Drive) SectorToTrack(lba int32) (uint8, error) {
	if lba < 0 || lba >= s.disc.LengthSectors() {
		return 0, cdda.ErrUnaddressableSector
	}
	for i := len(s.disc.toc) - 1; i >= 0; i-- {
		if lba >= s.disc.toc[i].StartSector {
			return s.disc.toc[i].TrackNum, nil
		}
	}
	return 0, nil // pregap
}

func (s *Drive) Close() error {
	s.closed = true
	return nil
}
