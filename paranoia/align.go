package paranoia

// The alignment engine: locate where a freshly read run really sits
// relative to data we have already seen, because the address the drive
// reports for a seek can be off by several sectors (and the data itself by
// odd samples). Matching is done on content, scored by sample mismatches.

// alignMismatchTolerance is the fraction of differing samples a candidate
// offset may have and still count as a match. Loose enough to absorb a few
// corrupted samples inside an otherwise correct overlap.
const alignMismatchTolerance = 0.05

// window is a contiguous run of best-known samples with absolute
// positions, assembled from the sector cache. known marks which positions
// actually hold cached data.
type window struct {
	start   int64 // absolute sample index of samples[0]
	samples []int16
	known   []bool
}

// alignFragment slides frag, claimed to start at absolute sample position
// claimed, across win at every offset within ±radius samples and returns
// the true offset delta such that frag belongs at claimed+delta.
//
// Outcomes are explicit: (delta, true) for exactly one confident match;
// (0, true) when the window holds nothing to compare against or the
// fragment is featureless, in which case the claim is kept; (0, false)
// when no offset matches or more than one does. An ambiguous result is
// never silently coerced to offset zero.
func alignFragment(frag []int16, claimed int64, win window, radius int) (int, bool) {
	if len(frag) == 0 {
		return 0, false
	}
	if featureless(frag) {
		return 0, true
	}

	// Short end-of-track fragments lower the required overlap
	// proportionally.
	minOverlap := len(frag) / 8
	if minOverlap > 64 {
		minOverlap = 64
	}
	if minOverlap < 16 {
		minOverlap = 16
	}
	maxMismatches := int(alignMismatchTolerance*float64(len(frag))) + 1

	bestDelta := 0
	bestScore := 2.0
	matches := 0
	compared := false
	for delta := -radius; delta <= radius; delta++ {
		base := claimed + int64(delta) - win.start
		mismatches, overlap := 0, 0
		for i := range frag {
			j := base + int64(i)
			if j < 0 || j >= int64(len(win.samples)) || !win.known[j] {
				continue
			}
			overlap++
			if frag[i] != win.samples[j] {
				mismatches++
				if mismatches > maxMismatches {
					break
				}
			}
		}
		if overlap < minOverlap {
			continue
		}
		compared = true
		if mismatches > maxMismatches {
			continue
		}
		score := float64(mismatches) / float64(overlap)
		if score > alignMismatchTolerance {
			continue
		}
		matches++
		if score < bestScore {
			bestScore = score
			bestDelta = delta
		}
	}

	if !compared {
		// Fresh territory: nothing cached overlaps the claim, so the
		// claim is all we have. The next overlapping read verifies it.
		return 0, true
	}
	if matches != 1 {
		return 0, false
	}
	return bestDelta, true
}

// featureless reports whether a fragment carries no alignable signal.
// A constant span (digital silence, usually) matches every offset equally
// well, so searching it can only mislead.
func featureless(frag []int16) bool {
	for _, v := range frag[1:] {
		if v != frag[0] {
			return false
		}
	}
	return true
}
