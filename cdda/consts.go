package cdda

// SampleRate is the number of samples per second per channel. All Redbook
// audio CDs use 44.1KHz.
const SampleRate = 44100

// BytesPerSample is 2 bytes, representing signed 16-bit samples.
const BytesPerSample = 2

// Channels is the number of audio channels in the data. All Redbook
// audio CDs are stereo.
//
// [Wikipedia] notes that four-channel audio support was planned but never
// implemented and no known drives support it.
//
// [Wikipedia]: https://en.wikipedia.org/wiki/Compact_Disc_Digital_Audio#Audio_format
const Channels = 2

// SectorsPerSecond is the number of sectors in one second of audio.
// A sector is the smallest addressable unit of CD data, defined as 1/75th
// of a second. Redbook track offsets are specified in MM:SS:FF.
//
// Note that this definition is interchangable with the timecode frame.
// It is distinct from both a 33-byte channel data frame and a sample frame,
// which this package does not concern itself with below.
const SectorsPerSecond = 75

// FramesPerSector is the number of sample frames (one 16-bit sample per
// channel) contained in one sector of audio data (588).
const FramesPerSector = SampleRate / SectorsPerSecond

// SamplesPerSector is the number of individual 16-bit samples, counting
// both channels, contained in one sector (1176).
const SamplesPerSector = FramesPerSector * Channels

// BytesPerSector is the number of bytes of audio contained in one sector
// of CD data, 2352 bytes.
//
// Sectors are the unit of interest when reading data from CDs. Drives
// read data in units of sectors.
const BytesPerSector = SamplesPerSector * BytesPerSample
