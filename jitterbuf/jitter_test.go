// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitterEstimatorNeverNegative(t *testing.T) {
	j := newJitterEstimator(8000)
	base := time.Unix(0, 0)

	ts := uint32(0)
	for i := 0; i < 20; i++ {
		now := base.Add(time.Duration(i*20) * time.Millisecond)
		// Inject irregular spacing so interarrival deviates from the
		// nominal 160 ticks/20ms cadence.
		ts += 160 + uint32(i%3)*40
		j.update(ts, now)

		assert.GreaterOrEqual(t, j.jitter, 0.0)
		assert.GreaterOrEqual(t, j.maxJitter, j.jitter)
	}
}

func TestJitterEstimatorFirstPacketIsZero(t *testing.T) {
	j := newJitterEstimator(8000)
	j.update(12345, time.Now())
	assert.Equal(t, 0.0, j.jitter)
	assert.Equal(t, 0.0, j.maxJitter)
}

func TestJitterEstimatorPrevArrivalTracksTimestamp(t *testing.T) {
	// OQ2 (preserved): prevArrival is advanced from the packet's own
	// timestamp, not the synthesized arrival value.
	j := newJitterEstimator(8000)
	base := time.Unix(0, 0)

	j.update(1000, base)
	assert.Equal(t, int64(1000), j.prevArrival)

	j.update(1500, base.Add(15*time.Millisecond))
	assert.Equal(t, int64(1500), j.prevArrival)
}

func TestJitterEstimatorResetClearsState(t *testing.T) {
	j := newJitterEstimator(8000)
	j.update(1000, time.Now())
	j.update(2000, time.Now().Add(20*time.Millisecond))
	assert.NotZero(t, j.prevArrival)

	j.reset()
	assert.Zero(t, j.prevArrival)
	assert.Zero(t, j.prevTransit)
	assert.Zero(t, j.jitter)
	assert.Zero(t, j.maxJitter)
	assert.Equal(t, 8.0, j.tsUnitsPerMs)
}
