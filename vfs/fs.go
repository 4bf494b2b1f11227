// Package vfs exports extracted audio into a FAT32 disk image, the
// format expected by devices that mount a USB mass-storage gadget.
package vfs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/diskfs/go-diskfs"
	"github.com/diskfs/go-diskfs/disk"
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/diskfs/go-diskfs/filesystem/fat32"

	"discern/cdda"
	"discern/wave"
)

const DiskSize = 700 * fat32.MB

// Filesystem is a FAT32 image on disk holding one WAV file per
// extracted track.
type Filesystem struct {
	filesystem.FileSystem
	Path   string
	tracks int
}

// sanitizeName converts a name to DOS format by uppercasing, limiting
// to ASCII letters and digits, and trimming to 8 chars.
// https://en.wikipedia.org/wiki/8.3_filename
func sanitizeName(name string) string {
	newName := make([]rune, 0, 8)
	for _, r := range []rune(strings.ToUpper(name)) {
		if len(newName) == 8 {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			newName = append(newName, r)
		}
	}
	return string(newName)
}

// Create builds a new FAT32 image at path, sized for a full disc.
func Create(path string, label string) (*Filesystem, error) {
	dsk, err := diskfs.Create(path, DiskSize, diskfs.SectorSizeDefault)
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = "AUDIOCD"
	}
	fatfs, err := dsk.CreateFilesystem(disk.FilesystemSpec{
		Partition:   0,
		FSType:      filesystem.TypeFat32,
		VolumeLabel: sanitizeName(label),
	})
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return &Filesystem{FileSystem: fatfs, Path: path}, nil
}

// AddTrack writes the PCM stream r as TRACKnn.WAV. The byte length is
// known from the TOC, so the WAV header is written up front and the
// image never needs patching.
func (f *Filesystem) AddTrack(channels int, lengthSectors int32, r io.Reader) (name string, err error) {
	f.tracks++
	name = fmt.Sprintf("/TRACK%02d.WAV", f.tracks)

	file, err := f.OpenFile(name, os.O_CREATE|os.O_RDWR)
	if err != nil {
		return "", fmt.Errorf("create track %v: %w", name, err)
	}
	defer file.Close()

	dataBytes := int64(lengthSectors) * cdda.BytesPerSector
	if _, err := file.Write(wave.Header(channels, dataBytes)); err != nil {
		return "", fmt.Errorf("write track %v: %w", name, err)
	}
	n, err := io.Copy(file, r)
	if err != nil {
		return "", fmt.Errorf("write track %v: %w", name, err)
	}
	if n != dataBytes {
		return "", fmt.Errorf("write track %v: got %d bytes, expected %d", name, n, dataBytes)
	}
	return name, nil
}
