// Package cdda defines the contract for reading raw PCM audio data from a
// CD-DA disk, along with the Redbook constants and table-of-contents types
// shared by every drive implementation.
//
// The package deliberately stops at the sector read boundary: the SCSI or
// ATAPI command transport behind a real drive is somebody else's problem.
// Anything that can produce runs of raw audio sectors and a table of
// contents can satisfy Drive, including disc images and simulated drives.
package cdda

// ReadRun is a contiguous batch of sectors returned by one drive request.
//
// LBA is the address the drive claims the run starts at. Drives position
// their pickup imprecisely, so the samples may really begin several sectors
// (or a handful of samples) away from the claimed address. Consumers that
// care about exact positioning must verify the claim against data they have
// already seen.
type ReadRun struct {
	LBA     int32
	Samples []int16 // interleaved L/R, host byte order
}

// Sectors is the number of complete sectors contained in the run.
func (r ReadRun) Sectors() int {
	return len(r.Samples) / SamplesPerSector
}

// Drive provides access to the audio data and table of contents of one
// CD-DA disk. Implementations are not safe for concurrent use; the read
// pipeline assumes one caller per drive handle.
type Drive interface {
	// ReadSectors fetches up to count sectors starting at lba. The
	// returned run may be shorter than requested near the end of the
	// disk and its claimed address is not trustworthy. Fails with a
	// DriveError for I/O-level problems.
	ReadSectors(lba int32, count int) (ReadRun, error)

	// TOC returns the table of contents from the disk, one entry per
	// track in disk order.
	TOC() []TrackPosition

	// TrackCount returns the number of tracks on the disk.
	// The CD-DA format supports a maximum of 99 tracks.
	TrackCount() int

	// TrackChannels returns the number of audio channels in a track,
	// or false if the track index is invalid.
	TrackChannels(track uint8) (int, bool)

	// SectorToTrack returns the track containing the given sector.
	// If the sector is before the first track (in the pregap), 0 is
	// returned. Fails with ErrUnaddressableSector past the disk end.
	SectorToTrack(lba int32) (uint8, error)

	// Close releases the drive handle. Data can no longer be accessed.
	Close() error
}
