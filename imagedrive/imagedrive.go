// Package imagedrive reads CD audio from a raw BIN/CUE disc image,
// the sector-exact dump format produced by most ripping tools.
package imagedrive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"discern/cdda"
)

// Drive is a cdda.Drive backed by a raw 2352-byte-sector image and its
// cue sheet. The image is locked for the lifetime of the handle so two
// sessions cannot interleave reads.
type Drive struct {
	f    *os.File
	lock *flock.Flock
	toc  []cdda.TrackPosition
	size int32 // sectors
	open bool
}

var _ cdda.Drive = (*Drive)(nil)

// Open maps a disc image. cuePath names the cue sheet; the binary file
// it references is resolved relative to it.
func Open(cuePath string) (*Drive, error) {
	cue, err := os.Open(cuePath)
	if err != nil {
		return nil, fmt.Errorf("open cue sheet: %w", cdda.ErrNoDrive)
	}
	defer cue.Close()

	binName, tracks, err := parseCue(cue)
	if err != nil {
		return nil, err
	}

	binPath := filepath.Join(filepath.Dir(cuePath), binName)
	f, err := os.Open(binPath)
	if err != nil {
		return nil, fmt.Errorf("open image %v: %w", binName, cdda.ErrNoDrive)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := int32(stat.Size() / cdda.BytesPerSector)

	lock := flock.New(binPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !locked {
		f.Close()
		return nil, fmt.Errorf("image %v: %w", binName, cdda.ErrNotOpen)
	}

	toc := buildTOC(tracks, size)
	if len(toc) == 0 {
		lock.Unlock()
		f.Close()
		return nil, cdda.ErrIllegalTOC
	}
	return &Drive{f: f, lock: lock, toc: toc, size: size, open: true}, nil
}

type cueTrack struct {
	num   uint8
	audio bool
	start int32
}

// parseCue extracts the binary file name and track index points. Only
// the FILE, TRACK and INDEX 01 commands matter for audio extraction.
func parseCue(r *os.File) (binName string, tracks []cueTrack, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "FILE":
			binName = strings.Trim(strings.Join(fields[1:len(fields)-1], " "), `"`)
		case "TRACK":
			if len(fields) < 3 {
				return "", nil, cdda.ErrIllegalTOC
			}
			num, err := strconv.Atoi(fields[1])
			if err != nil || num < 1 || num > 99 {
				return "", nil, cdda.ErrIllegalNumberOfTracks
			}
			tracks = append(tracks, cueTrack{
				num:   uint8(num),
				audio: fields[2] == "AUDIO",
				start: -1,
			})
		case "INDEX":
			if len(fields) < 3 || len(tracks) == 0 {
				return "", nil, cdda.ErrIllegalTOC
			}
			if fields[1] != "01" {
				continue // pregap index points are not extracted
			}
			start, err := parseMSF(fields[2])
			if err != nil {
				return "", nil, err
			}
			tracks[len(tracks)-1].start = start
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, err
	}
	if binName == "" {
		return "", nil, cdda.ErrIllegalTOC
	}
	for _, t := range tracks {
		if t.start < 0 {
			return "", nil, cdda.ErrReadTOCEntry
		}
	}
	return binName, tracks, nil
}

// parseMSF converts a cue mm:ss:ff timestamp to a sector address.
// Frames here are cue frames, 75 per second, the same as sectors.
func parseMSF(s string) (int32, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, cdda.ErrReadTOCEntry
	}
	mm, err1 := strconv.Atoi(parts[0])
	ss, err2 := strconv.Atoi(parts[1])
	ff, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || ss >= 60 || ff >= cdda.SectorsPerSecond {
		return 0, cdda.ErrReadTOCEntry
	}
	return int32((mm*60+ss)*cdda.SectorsPerSecond + ff), nil
}

func buildTOC(tracks []cueTrack, size int32) []cdda.TrackPosition {
	toc := make([]cdda.TrackPosition, 0, len(tracks))
	for i, t := range tracks {
		end := size
		if i+1 < len(tracks) {
			end = tracks[i+1].start
		}
		if end < t.start {
			return nil
		}
		var flags cdda.Flag
		if !t.audio {
			flags = 0x04
		}
		toc = append(toc, cdda.TrackPosition{
			Flags:         flags,
			TrackNum:      t.num,
			StartSector:   t.start,
			LengthSectors: end - t.start,
		})
	}
	return toc
}

func (d *Drive) ReadSectors(lba int32, count int) (cdda.ReadRun, error) {
	if !d.open {
		return cdda.ReadRun{}, cdda.ErrNotOpen
	}
	if lba < 0 || lba >= d.size {
		return cdda.ReadRun{}, cdda.ErrUnaddressableSector
	}
	if int32(count) > d.size-lba {
		count = int(d.size - lba)
	}

	buf := make([]byte, count*cdda.BytesPerSector)
	if _, err := d.f.ReadAt(buf, int64(lba)*cdda.BytesPerSector); err != nil {
		return cdda.ReadRun{}, cdda.ErrMediumError
	}
	samples := make([]int16, count*cdda.SamplesPerSector)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return cdda.ReadRun{LBA: lba, Samples: samples}, nil
}

func (d *Drive) TOC() []cdda.TrackPosition {
	return d.toc
}

func (d *Drive) TrackCount() int {
	return len(d.toc)
}

func (d *Drive) TrackChannels(track uint8) (int, bool) {
	if track < 1 || int(track) > len(d.toc) {
		return 0, false
	}
	return cdda.Channels, true
}

func (d *Drive) SectorToTrack(lba int32) (uint8, error) {
	if lba < 0 || lba >= d.size {
		return 0, cdda.ErrUnaddressableSector
	}
	for i := len(d.toc) - 1; i >= 0; i-- {
		if lba >= d.toc[i].StartSector {
			return d.toc[i].TrackNum, nil
		}
	}
	return 0, nil // pregap
}

func (d *Drive) Close() error {
	if !d.open {
		return nil
	}
	d.open = false
	if err := d.lock.Unlock(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}
