package paranoia_test

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discern/cdda"
	"discern/paranoia"
	"discern/simdrive"
)

func TestPCMReaderStreamsWholeTrack(t *testing.T) {
	disc := simdrive.NewDisc([]int32{12}, 200)
	p := paranoia.New(simdrive.New(disc), testConfig())

	tr, err := p.ReadTrack(1)
	require.NoError(t, err)
	r := paranoia.NewPCMReader(tr)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Len(t, data, 12*cdda.BytesPerSector)

	for lba := int32(0); lba < 12; lba++ {
		want := disc.Sector(lba)
		off := int(lba) * cdda.BytesPerSector
		for i, s := range want {
			got := int16(binary.LittleEndian.Uint16(data[off+2*i:]))
			if got != s {
				t.Fatalf("lba %d sample %d: got %d want %d", lba, i, got, s)
			}
		}
	}
}

func TestPCMReaderSmallReads(t *testing.T) {
	disc := simdrive.NewDisc([]int32{4}, 201)
	p := paranoia.New(simdrive.New(disc), testConfig())

	tr, err := p.ReadTrack(1)
	require.NoError(t, err)
	r := paranoia.NewPCMReader(tr)
	defer r.Close()

	var data []byte
	buf := make([]byte, 100)
	for {
		n, err := r.Read(buf)
		data = append(data, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Len(t, data, 4*cdda.BytesPerSector)
}
