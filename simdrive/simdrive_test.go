package simdrive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discern/cdda"
)

func TestDiscLayout(t *testing.T) {
	disc := NewDisc([]int32{10, 20}, 1)
	assert.Equal(t, int32(30), disc.LengthSectors())

	toc := disc.toc
	assert.Equal(t, uint8(1), toc[0].TrackNum)
	assert.Equal(t, int32(0), toc[0].StartSector)
	assert.Equal(t, uint8(2), toc[1].TrackNum)
	assert.Equal(t, int32(10), toc[1].StartSector)
	assert.Equal(t, int32(30), toc[1].EndSector())
}

func TestReadSectorsFaultFree(t *testing.T) {
	disc := NewDisc([]int32{10}, 2)
	d := New(disc)

	run, err := d.ReadSectors(2, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(2), run.LBA)
	require.Equal(t, 3, run.Sectors())
	assert.Equal(t, disc.Sector(2), run.Samples[:cdda.SamplesPerSector])
	assert.Equal(t, disc.Sector(4), run.Samples[2*cdda.SamplesPerSector:])
	assert.Equal(t, 1, d.Reads())
}

func TestReadSectorsClipsAtDiscEnd(t *testing.T) {
	d := New(NewDisc([]int32{10}, 3))

	run, err := d.ReadSectors(8, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Sectors())

	_, err = d.ReadSectors(10, 1)
	assert.ErrorIs(t, err, cdda.ErrPositionMismatch)
}

func TestJitterShiftsDataNotClaim(t *testing.T) {
	disc := NewDisc([]int32{10}, 4)
	d := New(disc)
	d.Jitter = map[int]int{1: cdda.SamplesPerSector + 5}

	run, err := d.ReadSectors(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(0), run.LBA, "the drive still claims the requested address")
	assert.Equal(t, disc.Sector(1)[5], run.Samples[0])

	// Later attempts are unaffected.
	run, err = d.ReadSectors(0, 1)
	require.NoError(t, err)
	assert.Equal(t, disc.Sector(0), run.Samples)
}

func TestCorruptionScript(t *testing.T) {
	disc := NewDisc([]int32{4}, 5)
	d := New(disc)
	d.Corruptions = []Corruption{
		{Attempt: 2, Once: true, LBA: 1, Sample: 7, Flip: 0x10},
		{Attempt: 3, LBA: 2, Sample: 0, Flip: 0x01},
	}

	clean := disc.Sector(1)

	run, _ := d.ReadSectors(1, 1) // attempt 1: clean
	assert.Equal(t, clean, run.Samples)

	run, _ = d.ReadSectors(1, 1) // attempt 2: corrupted once
	assert.Equal(t, clean[7]^0x10, run.Samples[7])

	run, _ = d.ReadSectors(1, 1) // attempt 3: clean again
	assert.Equal(t, clean, run.Samples)

	run, _ = d.ReadSectors(2, 1) // attempt 4: persistent corruption
	assert.Equal(t, disc.Sector(2)[0]^0x01, run.Samples[0])
	run, _ = d.ReadSectors(2, 1) // attempt 5: still corrupted
	assert.Equal(t, disc.Sector(2)[0]^0x01, run.Samples[0])
}

func TestTimeoutScript(t *testing.T) {
	d := New(NewDisc([]int32{4}, 6))
	d.TimeoutAttempts = map[int]bool{2: true}

	_, err := d.ReadSectors(0, 1)
	require.NoError(t, err)
	_, err = d.ReadSectors(0, 1)
	assert.ErrorIs(t, err, cdda.ErrReadTimeout)
	_, err = d.ReadSectors(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Reads(), "failed attempts still count")
}

func TestSectorToTrack(t *testing.T) {
	d := New(NewDisc([]int32{10, 10}, 7))

	track, err := d.SectorToTrack(9)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), track)
	track, err = d.SectorToTrack(10)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), track)
	_, err = d.SectorToTrack(20)
	assert.ErrorIs(t, err, cdda.ErrUnaddressableSector)
}

func TestClose(t *testing.T) {
	d := New(NewDisc([]int32{4}, 8))
	require.NoError(t, d.Close())
	_, err := d.ReadSectors(0, 1)
	assert.ErrorIs(t, err, cdda.ErrNotOpen)
}
