package cdda

import (
	"fmt"
	"io/fs"
)

// ErrNoDrive is returned when no valid cd drive (or disc image) was found.
var ErrNoDrive = fs.ErrNotExist

// DriveError is an I/O-level error reported by a drive implementation.
type DriveError int

const (
	ErrReadTOCLeadOut        DriveError = 2
	ErrIllegalNumberOfTracks DriveError = 3
	ErrReadTOCHeader         DriveError = 4
	ErrReadTOCEntry          DriveError = 5
	ErrNoData                DriveError = 6
	ErrUnknownReadError      DriveError = 7
	ErrIllegalTOC            DriveError = 9
	ErrUnaddressableSector   DriveError = 10

	ErrNotOpen            DriveError = 400
	ErrInvalidTrackNumber DriveError = 401
	ErrTrackNotAudio      DriveError = 402
	ErrNoAudioTracks      DriveError = 403
	ErrNoMediumPresent    DriveError = 404

	ErrReadTimeout      DriveError = 500
	ErrMediumError      DriveError = 501
	ErrPositionMismatch DriveError = 502
)

func (de DriveError) Error() string {
	return fmt.Sprintf("cdda: %v", de.name())
}

// Retryable reports whether the error is transient and a repeated read of
// the same sectors may succeed. Medium and TOC errors are permanent.
func (de DriveError) Retryable() bool {
	switch de {
	case ErrReadTimeout, ErrPositionMismatch, ErrNoData:
		return true
	default:
		return false
	}
}

func (de DriveError) name() string {
	switch de {
	case ErrReadTOCLeadOut:
		return "unable to read table of contents lead-out"
	case ErrIllegalNumberOfTracks:
		return "cdrom reporting illegal number of tracks"
	case ErrReadTOCHeader:
		return "unable to read table of contents header"
	case ErrReadTOCEntry:
		return "unable to read table of contents entry"
	case ErrNoData:
		return "could not read any data from drive"
	case ErrUnknownReadError:
		return "unknown, unrecoverable error reading data"
	case ErrIllegalTOC:
		return "cdrom reporting illegal table of contents"
	case ErrUnaddressableSector:
		return "unaddressable sector"

	case ErrNotOpen:
		return "device not open"
	case ErrInvalidTrackNumber:
		return "invalid track number"
	case ErrTrackNotAudio:
		return "track not audio data"
	case ErrNoAudioTracks:
		return "no audio tracks on disc"
	case ErrNoMediumPresent:
		return "no medium present"

	case ErrReadTimeout:
		return "timed out reading from drive"
	case ErrMediumError:
		return "unrecoverable medium error"
	case ErrPositionMismatch:
		return "drive returned different sectors than requested"
	default:
		return fmt.Sprintf("unknown error code: %v", int(de))
	}
}
