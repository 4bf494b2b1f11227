package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discern/cdda"
	"discern/paranoia"
	"discern/simdrive"
)

func testSession(t *testing.T, sectors int32, seed int64) (*simdrive.Disc, *Streamer) {
	t.Helper()
	disc := simdrive.NewDisc([]int32{sectors}, seed)
	p := paranoia.New(simdrive.New(disc), paranoia.Config{
		SearchRadius:  4,
		MaxRetries:    4,
		BatchSize:     8,
		MinConfidence: 2,
		CacheMargin:   16,
	})
	s, err := New(p, 1)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return disc, s
}

func discFrame(disc *simdrive.Disc, frame int) (l, r float64) {
	sec := disc.Sector(int32(frame / cdda.FramesPerSector))
	i := (frame % cdda.FramesPerSector) * cdda.Channels
	return float64(sec[i]) / (1 << 15), float64(sec[i+1]) / (1 << 15)
}

func TestStreamerPlaysWholeTrack(t *testing.T) {
	disc, s := testSession(t, 6, 300)
	require.Equal(t, 6*cdda.FramesPerSector, s.Len())

	buf := make([][2]float64, 512)
	frame := 0
	for {
		n, ok := s.Stream(buf)
		require.NoError(t, s.Err())
		for i := range n {
			l, r := discFrame(disc, frame)
			if buf[i][0] != l || buf[i][1] != r {
				t.Fatalf("frame %d mismatch", frame)
			}
			frame++
		}
		if !ok {
			break
		}
	}
	assert.Equal(t, s.Len(), frame)
	assert.Equal(t, s.Len(), s.Position())
}

func TestStreamerSeek(t *testing.T) {
	disc, s := testSession(t, 8, 301)

	// Land mid-sector to exercise the partial-sector skip.
	target := 3*cdda.FramesPerSector + 100
	require.NoError(t, s.Seek(target))
	assert.Equal(t, target, s.Position())

	buf := make([][2]float64, 64)
	n, ok := s.Stream(buf)
	require.True(t, ok)
	for i := range n {
		l, r := discFrame(disc, target+i)
		assert.Equal(t, l, buf[i][0], "frame %d", target+i)
		assert.Equal(t, r, buf[i][1], "frame %d", target+i)
	}

	assert.Error(t, s.Seek(-1))
	assert.Error(t, s.Seek(s.Len()+1))
}

func TestStreamerSeekBackwards(t *testing.T) {
	disc, s := testSession(t, 6, 302)

	buf := make([][2]float64, 2*cdda.FramesPerSector)
	_, ok := s.Stream(buf)
	require.True(t, ok)

	require.NoError(t, s.Seek(0))
	n, ok := s.Stream(buf[:32])
	require.True(t, ok)
	require.Equal(t, 32, n)
	l, r := discFrame(disc, 0)
	assert.Equal(t, l, buf[0][0])
	assert.Equal(t, r, buf[0][1])
}
