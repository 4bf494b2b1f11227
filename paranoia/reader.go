package paranoia

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"discern/cdda"
)

// Paranoia wraps a drive with the verified read pipeline.
type Paranoia struct {
	drive cdda.Drive
	cfg   Config
}

// New returns a Paranoia for the drive. Zero Config fields take the
// documented defaults.
func New(drive cdda.Drive, cfg Config) *Paranoia {
	return &Paranoia{drive: drive, cfg: cfg.withDefaults()}
}

// Drive returns the underlying drive.
func (p *Paranoia) Drive() cdda.Drive {
	return p.drive
}

// Close releases the underlying drive.
func (p *Paranoia) Close() error {
	return p.drive.Close()
}

// ReadTrack starts a verified read session over one track. Fails with
// cdda.ErrInvalidTrackNumber for an out-of-range track and
// cdda.ErrTrackNotAudio for a data track.
func (p *Paranoia) ReadTrack(track uint8) (*TrackReader, error) {
	return p.ReadTrackLimited(track, p.cfg.MaxRetries)
}

// ReadTrackLimited is ReadTrack with a custom retry budget.
func (p *Paranoia) ReadTrackLimited(track uint8, maxRetries int) (*TrackReader, error) {
	first, end, err := cdda.TrackRange(p.drive, track)
	if err != nil {
		return nil, err
	}
	return p.ReadSectorsLimited(first, end, maxRetries), nil
}

// ReadSectors starts a verified read session over the sector range
// [first, end). The range is clamped to the disc's audio area.
func (p *Paranoia) ReadSectors(first, end int32) *TrackReader {
	return p.ReadSectorsLimited(first, end, p.cfg.MaxRetries)
}

// ReadSectorsLimited is ReadSectors with a custom retry budget.
func (p *Paranoia) ReadSectorsLimited(first, end int32, maxRetries int) *TrackReader {
	if length := cdda.DiscLength(p.drive); end > length {
		end = length
	}
	if first < 0 {
		first = 0
	}
	cfg := p.cfg
	cfg.MaxRetries = maxRetries
	return &TrackReader{
		drive:  p.drive,
		cfg:    cfg,
		log:    cfg.Logger,
		first:  first,
		end:    end,
		cursor: first,
		cache:  newSectorCache(),
	}
}

// Sector is one verified (or explicitly degraded) sector of audio.
type Sector struct {
	LBA      int32
	Samples  []int16 // interleaved per-channel samples, host byte order
	Degraded bool    // true when emitted under an exhausted retry budget
	// Confidence is the number of independent reads that agree on the
	// emitted samples.
	Confidence int
}

// Frame returns the per-channel samples of one sample frame.
func (s Sector) Frame(i int) (left, right int16) {
	return s.Samples[i*cdda.Channels], s.Samples[i*cdda.Channels+1]
}

// TrackReader produces the verified sectors of one sector range, in
// strictly increasing gapless LBA order. It is a lazy, forward-only,
// single-use session: the read-align-verify loop runs only when the caller
// asks for the next sector, and restarting from an arbitrary midpoint
// means opening a fresh session. Not safe for concurrent use.
type TrackReader struct {
	drive cdda.Drive
	cfg   Config
	log   *slog.Logger

	first, end int32 // [first, end)
	cursor     int32 // verified stream position: next LBA to settle
	queue      []Sector
	cache      *sectorCache
	attempt    int // read attempt counter, tags cache copies

	readRetries  int   // consecutive transient drive failures
	alignRetries int   // consecutive ambiguous alignments
	spanRetries  int   // reads spent trying to settle the cursor sector
	backoff      int32 // extra overlap after an ambiguous alignment

	degraded []Span
	err      error
	closed   bool
}

// NextSector returns the next verified sector, io.EOF at the end of the
// range, or a terminal error. Sectors already returned stay valid whatever
// happens afterwards.
func (r *TrackReader) NextSector() (Sector, error) {
	if r.closed {
		return Sector{}, ErrSessionClosed
	}
	if r.err != nil {
		return Sector{}, r.err
	}
	for len(r.queue) == 0 {
		if r.cursor >= r.end {
			return Sector{}, io.EOF
		}
		if err := r.step(); err != nil {
			r.err = err
			return Sector{}, err
		}
	}
	s := r.queue[0]
	r.queue = r.queue[1:]
	return s, nil
}

// Sectors iterates the remaining sectors of the session. Iteration stops
// at the end of the range or after yielding a terminal error.
func (r *TrackReader) Sectors() iter.Seq2[Sector, error] {
	return func(yield func(Sector, error) bool) {
		for {
			s, err := r.NextSector()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(s, err) || err != nil {
				return
			}
		}
	}
}

// DegradedSpans lists the spans emitted without full verification so far,
// in ascending order. Adjacent sectors are merged.
func (r *TrackReader) DegradedSpans() []Span {
	out := make([]Span, len(r.degraded))
	copy(out, r.degraded)
	return out
}

// Close ends the session and releases its cache. The drive handle stays
// open; it belongs to the Paranoia. Close is idempotent.
func (r *TrackReader) Close() error {
	r.closed = true
	r.cache = nil
	r.queue = nil
	return nil
}

// step performs one iteration of the read-align-verify loop: request a
// run overlapping the verified tail, align it, bank the copies, and settle
// whatever the new data settles.
func (r *TrackReader) step() error {
	req := r.cursor - overlapSectors - r.backoff
	if req < r.first {
		req = r.first
	}
	count := r.cfg.BatchSize
	if remaining := r.end - req; int32(count) > remaining {
		count = int(remaining) // never read past the track boundary
	}

	run, err := r.drive.ReadSectors(req, count)
	r.attempt++
	if err != nil {
		return r.readFailed(err)
	}
	r.readRetries = 0
	if len(run.Samples) == 0 {
		return r.readFailed(cdda.ErrNoData)
	}

	delta, ok := r.alignRun(run)
	if !ok {
		r.alignRetries++
		if r.alignRetries > r.cfg.MaxRetries {
			return &UnrecoverablePositionError{LBA: r.cursor, Attempts: r.alignRetries}
		}
		// Re-read with a wider reach back into known data.
		r.backoff += overlapSectors
		r.log.Debug("alignment ambiguous, widening overlap",
			"lba", run.LBA, "attempt", r.attempt, "backoff", r.backoff)
		return nil
	}
	r.alignRetries = 0
	if delta != 0 {
		r.log.Debug("drive position drift compensated",
			"claimed", run.LBA, "delta_samples", delta, "attempt", r.attempt)
	}

	covered := r.insertRun(run, delta)
	r.cache.evictBefore(r.cursor - int32(r.cfg.CacheMargin))

	before := r.cursor
	r.settle()
	if r.cursor > before {
		r.backoff = 0
		return nil
	}

	// No progress. Either the run spanned the stream position but did
	// not settle it, or drift pushed the whole run past it; reaching
	// further back helps the latter.
	r.spanRetries++
	if !covered {
		r.backoff += overlapSectors
	}
	if r.spanRetries > r.cfg.MaxRetries {
		if len(r.cache.at(r.cursor)) == 0 {
			return &UnrecoverablePositionError{LBA: r.cursor, Attempts: r.spanRetries}
		}
		r.degradeCursor()
		r.settle()
		r.backoff = 0
	}
	return nil
}

// readFailed applies the retry policy to a drive error. Transient errors
// are retried up to the budget; on exhaustion the contested sector is
// emitted degraded if any copy of it exists, so a flaky region never hard
// fails a rip that has data to show.
func (r *TrackReader) readFailed(err error) error {
	var de cdda.DriveError
	if !errors.As(err, &de) || !de.Retryable() {
		return err
	}
	r.readRetries++
	if r.readRetries <= r.cfg.MaxRetries {
		r.log.Debug("transient drive error, retrying",
			"lba", r.cursor, "err", err, "retries", r.readRetries)
		return nil
	}
	if len(r.cache.at(r.cursor)) > 0 {
		r.log.Warn("read retries exhausted, degrading span", "lba", r.cursor, "err", err)
		r.readRetries = 0
		r.degradeCursor()
		r.settle()
		return nil
	}
	return fmt.Errorf("paranoia: read retries exhausted at lba %d: %w", r.cursor, err)
}

// alignRun locates the run's true position. Returns the sample offset to
// add to the claimed position, or false when the match is ambiguous.
func (r *TrackReader) alignRun(run cdda.ReadRun) (int, bool) {
	radius := int32(r.cfg.SearchRadius)
	winFirst := run.LBA - radius - 1
	if winFirst < r.first {
		winFirst = r.first
	}
	winLast := run.LBA + int32(run.Sectors()) + radius
	if winLast >= r.end {
		winLast = r.end - 1
	}
	win := r.cache.buffer(winFirst, winLast)

	frag := run.Samples
	if len(frag) > cdda.SamplesPerSector {
		frag = frag[:cdda.SamplesPerSector]
	}
	claimed := int64(run.LBA) * cdda.SamplesPerSector
	return alignFragment(frag, claimed, win, r.cfg.SearchRadius*cdda.SamplesPerSector)
}

// insertRun banks the run's sectors at their true addresses. Samples are
// re-homed onto the sector grid; partial head and tail samples of a
// sample-jittered run are discarded. Reports whether the run covered the
// verified stream position.
func (r *TrackReader) insertRun(run cdda.ReadRun, delta int) bool {
	trueStart := int64(run.LBA)*cdda.SamplesPerSector + int64(delta)
	firstLBA := int32((trueStart + cdda.SamplesPerSector - 1) / cdda.SamplesPerSector)
	skip := int(int64(firstLBA)*cdda.SamplesPerSector - trueStart)

	covered := false
	for pos := skip; pos+cdda.SamplesPerSector <= len(run.Samples); pos += cdda.SamplesPerSector {
		lba := firstLBA + int32((pos-skip)/cdda.SamplesPerSector)
		if lba < r.first || lba >= r.end {
			continue
		}
		r.cache.insert(lba, run.Samples[pos:pos+cdda.SamplesPerSector], r.attempt)
		if lba == r.cursor {
			covered = true
		}
	}
	return covered
}

// settle advances the verified stream position over every sector the
// cached copies can now verify, emitting as it goes. Emitted sectors are
// final: nothing the drive returns later can change them.
func (r *TrackReader) settle() {
	for r.cursor < r.end {
		v := resolve(r.cache.at(r.cursor), r.cfg.MinConfidence)
		if v.state != stateVerified {
			return
		}
		r.emit(v, false)
	}
}

// degradeCursor finalizes the sector at the stream position from whatever
// copies exist, marked degraded. Only called with at least one copy.
func (r *TrackReader) degradeCursor() {
	v := bestEffort(r.cache.at(r.cursor))
	r.log.Warn("span verification exhausted, emitting degraded",
		"lba", r.cursor, "confidence", v.confidence)
	r.emit(v, true)
}

func (r *TrackReader) emit(v verdict, degraded bool) {
	r.queue = append(r.queue, Sector{
		LBA:        r.cursor,
		Samples:    v.samples,
		Degraded:   degraded,
		Confidence: v.confidence,
	})
	if degraded {
		if n := len(r.degraded); n > 0 && r.degraded[n-1].Last == r.cursor-1 {
			r.degraded[n-1].Last = r.cursor
		} else {
			r.degraded = append(r.degraded, Span{First: r.cursor, Last: r.cursor})
		}
	}
	r.cursor++
	r.spanRetries = 0
}
