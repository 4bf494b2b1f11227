package paranoia

import "log/slog"

// Defaults for Config fields left zero. The numeric values are tuned for
// real-world drive jitter; tests run with much smaller budgets.
const (
	DefaultSearchRadius  = 8
	DefaultMaxRetries    = 20
	DefaultBatchSize     = 16
	DefaultMinConfidence = 2
	DefaultCacheMargin   = 384
)

// overlapSectors is how far each read request reaches back behind the
// verified stream position so the new run always shares samples with data
// we have already seen and can be aligned against it.
const overlapSectors = 2

// Config tunes the verification pipeline. The zero value gives the
// documented defaults.
type Config struct {
	// SearchRadius bounds the alignment search, in sectors either
	// direction from the drive's claimed read position.
	SearchRadius int

	// MaxRetries bounds, separately, the re-reads spent on a contested
	// span, the re-reads after an ambiguous alignment, and the retries
	// of transient drive errors.
	MaxRetries int

	// BatchSize is the number of sectors requested per drive read.
	BatchSize int

	// MinConfidence is the number of independent agreeing reads a
	// sector needs before it is emitted as verified.
	MinConfidence int

	// CacheMargin is how many sectors behind the verified stream
	// position stay cached for re-verification of recently finalized
	// boundaries. Must cover the worst expected seek jitter.
	CacheMargin int

	// Logger receives debug records of alignment and consensus
	// decisions. Nil discards them.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.SearchRadius == 0 {
		c.SearchRadius = DefaultSearchRadius
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = DefaultMinConfidence
	}
	if c.CacheMargin == 0 {
		c.CacheMargin = DefaultCacheMargin
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}
