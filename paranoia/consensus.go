package paranoia

import "slices"

// The consensus engine: given every cached copy of a sector, decide the
// authoritative sample values, or report that more reads are needed.

type spanState int

const (
	stateUnverified spanState = iota
	statePartial              // agreeing copies, but fewer than required
	stateContested            // copies truly disagree
	stateVerified
	stateDegraded
)

func (s spanState) String() string {
	switch s {
	case stateUnverified:
		return "unverified"
	case statePartial:
		return "partial"
	case stateContested:
		return "contested"
	case stateVerified:
		return "verified"
	case stateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// verdict is the outcome of resolving one sector.
type verdict struct {
	samples    []int16
	state      spanState
	confidence int // independent reads agreeing on the result
}

// resolve settles one sector from its cached copies.
//
// Copies that agree outright, or differ only by a one-sample lateral shift
// (framing noise from the drive), are grouped together; a group of at
// least minConfidence members verifies the sector. True disagreement with
// three or more copies falls back to per-sample plurality voting. Two
// disagreeing copies trust neither and stay contested.
func resolve(copies []sectorCopy, minConfidence int) verdict {
	if len(copies) == 0 {
		return verdict{state: stateUnverified}
	}

	type class struct {
		rep []int16 // earliest member, which is grid-aligned framing
		n   int
	}
	var classes []class
	for _, cp := range copies {
		placed := false
		for i := range classes {
			if jitterEqual(classes[i].rep, cp.samples) {
				classes[i].n++
				placed = true
				break
			}
		}
		if !placed {
			classes = append(classes, class{rep: cp.samples, n: 1})
		}
	}

	best := classes[0]
	for _, cl := range classes[1:] {
		if cl.n > best.n {
			best = cl
		}
	}
	if best.n >= minConfidence {
		return verdict{samples: best.rep, state: stateVerified, confidence: best.n}
	}
	if len(copies) < minConfidence {
		return verdict{state: statePartial, confidence: best.n}
	}
	if len(copies) >= 3 {
		samples, confidence := pluralityVote(copies)
		if confidence >= minConfidence {
			return verdict{samples: samples, state: stateVerified, confidence: confidence}
		}
	}
	return verdict{state: stateContested, confidence: best.n}
}

// bestEffort produces the most plausible value for a sector that exhausted
// its retry budget. Always succeeds; the result carries the degraded state
// so no caller mistakes it for verified data.
func bestEffort(copies []sectorCopy) verdict {
	if len(copies) == 1 {
		return verdict{samples: copies[0].samples, state: stateDegraded, confidence: 1}
	}
	samples, confidence := pluralityVote(copies)
	return verdict{samples: samples, state: stateDegraded, confidence: confidence}
}

// pluralityVote picks, sample by sample, the value most copies agree on.
// Ties go to the earliest read. Returns the assembled sector and the worst
// per-sample agreement count.
func pluralityVote(copies []sectorCopy) ([]int16, int) {
	n := len(copies[0].samples)
	out := make([]int16, n)
	confidence := len(copies)
	counts := make(map[int16]int, len(copies))
	for i := 0; i < n; i++ {
		clear(counts)
		for _, cp := range copies {
			counts[cp.samples[i]]++
		}
		bestVal, bestCount := copies[0].samples[i], 0
		for _, cp := range copies {
			v := cp.samples[i]
			if counts[v] > bestCount {
				bestVal, bestCount = v, counts[v]
			}
		}
		out[i] = bestVal
		if bestCount < confidence {
			confidence = bestCount
		}
	}
	return out, confidence
}

// jitterEqual reports whether two sector copies carry the same audio,
// allowing a single-sample lateral shift to absorb off-by-one framing
// noise before declaring true disagreement. The shifted comparison ignores
// the one sample at each edge that has no counterpart.
func jitterEqual(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	if slices.Equal(a, b) {
		return true
	}
	return slices.Equal(a[1:], b[:len(b)-1]) || slices.Equal(a[:len(a)-1], b[1:])
}
