package paranoia

import (
	"errors"
	"fmt"
)

// ErrSessionClosed is returned by reads on a closed TrackReader.
var ErrSessionClosed = errors.New("paranoia: session closed")

// UnrecoverablePositionError terminates a read session when the drive's
// reported position could not be reconciled with previously read data
// within the retry budget.
type UnrecoverablePositionError struct {
	LBA      int32 // sector the stream was stuck at
	Attempts int   // alignment attempts spent
}

func (e *UnrecoverablePositionError) Error() string {
	return fmt.Sprintf("paranoia: unrecoverable position at lba %d after %d attempts", e.LBA, e.Attempts)
}

// Span is an inclusive range of sectors.
type Span struct {
	First int32
	Last  int32
}

func (s Span) String() string {
	if s.First == s.Last {
		return fmt.Sprintf("lba %d", s.First)
	}
	return fmt.Sprintf("lba %d-%d", s.First, s.Last)
}
