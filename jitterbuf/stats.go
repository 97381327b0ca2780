// SPDX-License-Identifier: MPL-2.0

package jitterbuf

// Stats is a point-in-time snapshot of the buffer's running counters
// (spec §4.6 / §8 P7). All counters are monotonic across the instance
// lifetime and are reset only by Init/Reset. jitter and max_jitter are
// exposed here as the unsigned 32-bit truncations the spec asks for;
// callers who need the full-precision floating estimate should not rely
// on cross-field consistency between multiple Stats snapshots -- each
// read is independent (spec §5 "Ordering guarantees").
type Stats struct {
	OverflowCount uint32
	EmptyCount    uint32
	OutOfOrder    uint32
	Jitter        uint32
	MaxJitter     uint32
}

type stats struct {
	overflowCount uint32
	emptyCount    uint32
	oooCount      uint32
}
