package paranoia

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func copyOf(samples []int16) []int16 {
	out := make([]int16, len(samples))
	copy(out, samples)
	return out
}

func TestResolveStates(t *testing.T) {
	clean := randomSamples(64, 10)

	v := resolve(nil, 2)
	assert.Equal(t, stateUnverified, v.state)

	v = resolve([]sectorCopy{{samples: clean, attempt: 1}}, 2)
	assert.Equal(t, statePartial, v.state)

	v = resolve([]sectorCopy{
		{samples: clean, attempt: 1},
		{samples: copyOf(clean), attempt: 2},
	}, 2)
	assert.Equal(t, stateVerified, v.state)
	assert.Equal(t, 2, v.confidence)
	assert.Equal(t, clean, v.samples)
}

func TestResolveTwoDisagreeingCopiesAreContested(t *testing.T) {
	clean := randomSamples(64, 11)
	bad := copyOf(clean)
	bad[10] ^= 0x40

	v := resolve([]sectorCopy{
		{samples: clean, attempt: 1},
		{samples: bad, attempt: 2},
	}, 2)
	assert.Equal(t, stateContested, v.state, "with two copies, neither is trusted")
}

func TestResolveMajorityWins(t *testing.T) {
	clean := randomSamples(64, 12)
	bad := copyOf(clean)
	bad[33] ^= 0x04

	v := resolve([]sectorCopy{
		{samples: copyOf(clean), attempt: 1},
		{samples: bad, attempt: 2},
		{samples: copyOf(clean), attempt: 3},
	}, 2)
	assert.Equal(t, stateVerified, v.state)
	assert.Equal(t, clean, v.samples, "the two agreeing copies outvote the corrupted one")
}

func TestResolvePluralityRepairsScatteredErrors(t *testing.T) {
	clean := randomSamples(64, 13)
	a, b, c := copyOf(clean), copyOf(clean), copyOf(clean)
	a[5] ^= 1
	b[20] ^= 1
	c[40] ^= 1

	// No two copies agree outright, but sample-by-sample voting
	// reconstructs the original.
	v := resolve([]sectorCopy{
		{samples: a, attempt: 1},
		{samples: b, attempt: 2},
		{samples: c, attempt: 3},
	}, 2)
	assert.Equal(t, stateVerified, v.state)
	assert.Equal(t, 2, v.confidence)
	assert.Equal(t, clean, v.samples)
}

func TestResolveJitteredCopyCountsAsAgreement(t *testing.T) {
	clean := randomSamples(64, 14)
	shifted := make([]int16, 64)
	copy(shifted[1:], clean[:63])
	shifted[0] = clean[0]

	v := resolve([]sectorCopy{
		{samples: clean, attempt: 1},
		{samples: shifted, attempt: 2},
	}, 2)
	assert.Equal(t, stateVerified, v.state)
	assert.Equal(t, clean, v.samples, "the earlier, grid-aligned framing is kept")
}

func TestBestEffortNeverFails(t *testing.T) {
	clean := randomSamples(64, 15)
	bad := copyOf(clean)
	bad[7] ^= 2

	v := bestEffort([]sectorCopy{{samples: clean, attempt: 1}})
	assert.Equal(t, stateDegraded, v.state)
	assert.Equal(t, 1, v.confidence)

	v = bestEffort([]sectorCopy{
		{samples: clean, attempt: 1},
		{samples: bad, attempt: 2},
	})
	assert.Equal(t, stateDegraded, v.state)
	assert.Equal(t, clean, v.samples, "ties go to the earliest read")
}

func TestJitterEqual(t *testing.T) {
	a := randomSamples(32, 16)

	assert.True(t, jitterEqual(a, copyOf(a)))

	left := make([]int16, 32)
	copy(left, a[1:])
	left[31] = 12345
	assert.True(t, jitterEqual(a, left))

	right := make([]int16, 32)
	copy(right[1:], a[:31])
	right[0] = -11
	assert.True(t, jitterEqual(a, right))

	other := copyOf(a)
	other[16] ^= 8
	assert.False(t, jitterEqual(a, other))
	assert.False(t, jitterEqual(a, a[:31]))
}
