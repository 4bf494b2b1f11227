package cdda

// Flag is a set of bit flags attached to a track in the CD's
// table of contents.
type Flag uint8

// TrackPosition reports the offset information for tracks
// from the table of contents.
type TrackPosition struct {
	Flags         Flag
	TrackNum      uint8 // index of the track, starting at 1
	StartSector   int32 // address of the sector where the data starts
	LengthSectors int32 // total number of sectors the track covers
}

// IsAudio reports whether the track is an audio track.
// Mixed-mode disks can have data tracks in addition to audio tracks.
func (t TrackPosition) IsAudio() bool {
	return (uint8(t.Flags) & 0x04) == 0
}

// EndSector is the address of the first sector after the track.
func (t TrackPosition) EndSector() int32 {
	return t.StartSector + t.LengthSectors
}

// TrackRange returns the sector range [first, end) covered by a track,
// validating the track number against the drive's table of contents.
// Returns ErrInvalidTrackNumber for an out-of-range track and
// ErrTrackNotAudio for a data track.
func TrackRange(d Drive, track uint8) (first, end int32, err error) {
	toc := d.TOC()
	if track < 1 || int(track) > len(toc) {
		return 0, 0, ErrInvalidTrackNumber
	}
	t := toc[track-1]
	if !t.IsAudio() {
		return 0, 0, ErrTrackNotAudio
	}
	return t.StartSector, t.EndSector(), nil
}

// DiscLength is the total number of sectors on the disk with audio data.
// This is the sector after the last track.
func DiscLength(d Drive) int32 {
	toc := d.TOC()
	if len(toc) == 0 {
		return 0
	}
	return toc[len(toc)-1].EndSector()
}
