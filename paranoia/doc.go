// Package paranoia reads verified audio data from a CD-DA drive.
//
// Optical drives are unreliable narrators: they mis-seek by whole sectors,
// drift by individual samples, and return subtly different data for
// repeated reads of a scratched region. This package reimplements the
// cdparanoia approach natively: every region is fetched at least twice in
// overlapping runs, each new run is aligned against previously seen data by
// content rather than by the drive's claimed address, and samples are only
// emitted once enough independent reads agree on them. Spans that cannot be
// settled within the retry budget are emitted anyway, marked degraded,
// rather than stalling the rip.
//
// The pipeline is a single-threaded pull model: one TrackReader per drive
// handle walks a track front to back, issuing drive I/O only when the
// caller demands more data.
package paranoia
