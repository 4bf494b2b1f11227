package paranoia

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"discern/cdda"
)

func sectorOf(value int16) []int16 {
	out := make([]int16, cdda.SamplesPerSector)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestCacheKeepsEveryCopy(t *testing.T) {
	c := newSectorCache()
	c.insert(10, sectorOf(1), 1)
	c.insert(10, sectorOf(2), 2)
	c.insert(11, sectorOf(3), 1)

	copies := c.at(10)
	assert.Len(t, copies, 2, "re-reads accumulate instead of overwriting")
	assert.Equal(t, 1, copies[0].attempt, "oldest first")
	assert.Equal(t, 2, copies[1].attempt)
	assert.Empty(t, c.at(12))
}

func TestCacheWindowOrdering(t *testing.T) {
	c := newSectorCache()
	c.insert(21, sectorOf(1), 2)
	c.insert(20, sectorOf(2), 1)
	c.insert(20, sectorOf(3), 3)
	c.insert(23, sectorOf(4), 1)

	win := c.window(20, 22)
	assert.Len(t, win, 3)
	assert.Equal(t, int32(20), win[0].lba)
	assert.Equal(t, 1, win[0].attempt)
	assert.Equal(t, int32(20), win[1].lba)
	assert.Equal(t, 3, win[1].attempt)
	assert.Equal(t, int32(21), win[2].lba)
}

func TestCacheEviction(t *testing.T) {
	c := newSectorCache()
	for lba := int32(0); lba < 10; lba++ {
		c.insert(lba, sectorOf(int16(lba)), 1)
	}
	c.evictBefore(4)

	assert.Empty(t, c.at(3))
	assert.Len(t, c.at(4), 1, "the retained margin survives")
	assert.Len(t, c.at(9), 1)
}

func TestCacheBufferMarksHoles(t *testing.T) {
	c := newSectorCache()
	c.insert(5, sectorOf(7), 1)
	c.insert(7, sectorOf(9), 1)

	w := c.buffer(5, 7)
	assert.Equal(t, int64(5)*cdda.SamplesPerSector, w.start)
	assert.True(t, w.known[0])
	assert.Equal(t, int16(7), w.samples[0])
	assert.False(t, w.known[cdda.SamplesPerSector], "uncached sector is unknown")
	assert.True(t, w.known[2*cdda.SamplesPerSector])
	assert.Equal(t, int16(9), w.samples[2*cdda.SamplesPerSector])
}
