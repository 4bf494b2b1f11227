package paranoia

import (
	"sort"

	"discern/cdda"
)

// sectorCopy is one drive's-eye view of a sector, tagged with the read
// attempt that produced it. Copies are immutable once inserted; repeated
// reads of the same address accumulate instead of overwriting, so the
// consensus engine can compare them.
type sectorCopy struct {
	samples []int16
	attempt int
}

// cachedSector pairs a copy with its address, for window queries.
type cachedSector struct {
	lba int32
	sectorCopy
}

// sectorCache is the sliding overlap buffer: every copy of every recently
// read sector, keyed by address. Eviction is driven by the verified stream
// position so re-verification of recently finalized boundaries stays
// possible without new drive I/O.
type sectorCache struct {
	copies map[int32][]sectorCopy
}

func newSectorCache() *sectorCache {
	return &sectorCache{copies: make(map[int32][]sectorCopy)}
}

// insert stores one sector copy. Appends preserve attempt order, so
// at() and window() return copies oldest first.
func (c *sectorCache) insert(lba int32, samples []int16, attempt int) {
	c.copies[lba] = append(c.copies[lba], sectorCopy{samples: samples, attempt: attempt})
}

// at returns every cached copy of one sector, oldest first.
func (c *sectorCache) at(lba int32) []sectorCopy {
	return c.copies[lba]
}

// window returns all cached copies overlapping [first, last], ordered by
// address then attempt.
func (c *sectorCache) window(first, last int32) []cachedSector {
	var out []cachedSector
	for lba := first; lba <= last; lba++ {
		for _, cp := range c.copies[lba] {
			out = append(out, cachedSector{lba: lba, sectorCopy: cp})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].lba != out[j].lba {
			return out[i].lba < out[j].lba
		}
		return out[i].attempt < out[j].attempt
	})
	return out
}

// evictBefore drops all copies of sectors strictly before lba.
func (c *sectorCache) evictBefore(lba int32) {
	for k := range c.copies {
		if k < lba {
			delete(c.copies, k)
		}
	}
}

// buffer assembles a contiguous comparison window over [first, last] from
// the oldest copy of each cached sector. Positions with no cached data are
// marked unknown so alignment scoring can skip them.
func (c *sectorCache) buffer(first, last int32) window {
	n := int(last-first+1) * cdda.SamplesPerSector
	w := window{
		start:   int64(first) * cdda.SamplesPerSector,
		samples: make([]int16, n),
		known:   make([]bool, n),
	}
	for lba := first; lba <= last; lba++ {
		copies := c.copies[lba]
		if len(copies) == 0 {
			continue
		}
		off := int(lba-first) * cdda.SamplesPerSector
		copy(w.samples[off:off+cdda.SamplesPerSector], copies[0].samples)
		for i := 0; i < cdda.SamplesPerSector; i++ {
			w.known[off+i] = true
		}
	}
	return w
}
