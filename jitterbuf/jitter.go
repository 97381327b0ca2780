// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import "time"

// jitterEstimator is the RFC 3550 Appendix A.8 interarrival jitter running
// estimate, driven once per Push whose header decodes (including pushes
// later rejected as too old). It is grounded on the
// interarrival computation in the teacher's RTPSession.ReadRTP (Sij/Rij/D),
// restated here against the formal transit/prev_transit recurrence spec.md
// §4.2 asks for.
//
// OQ2 (preserved, not fixed): prevArrival is advanced from the packet's own
// timestamp, not from the synthesized arrival value. The spec flags this
// as a documented deviation from RFC 3550 and requires it be kept.
type jitterEstimator struct {
	tsUnitsPerMs float64

	prevArrival int64
	prevTransit int64
	prevRxTime  time.Time

	jitter    float64
	maxJitter float64
}

func newJitterEstimator(sampleRateHz uint32) jitterEstimator {
	return jitterEstimator{tsUnitsPerMs: float64(sampleRateHz) / 1000}
}

func (j *jitterEstimator) reset() {
	units := j.tsUnitsPerMs
	*j = jitterEstimator{tsUnitsPerMs: units}
}

// update folds in one packet's RTP timestamp and receive time. It must not
// be called for packets rejected before the overflow/insertion stage, and
// must not be reset across losses -- only Init/Reset touch it otherwise.
func (j *jitterEstimator) update(ts uint32, now time.Time) {
	var arrival int64
	if j.prevArrival == 0 {
		arrival = int64(ts)
	} else {
		interarrivalMs := float64(now.Sub(j.prevRxTime).Milliseconds())
		arrival = j.prevArrival + int64(interarrivalMs*j.tsUnitsPerMs)
	}

	transit := arrival - int64(ts)
	d := transit - j.prevTransit
	if d < 0 {
		d = -d
	}

	j.jitter += (float64(d) - j.jitter) / 16
	if j.jitter > j.maxJitter {
		j.maxJitter = j.jitter
	}

	j.prevTransit = transit
	j.prevArrival = int64(ts) // OQ2: intentionally ts, not arrival.
	j.prevRxTime = now
}
