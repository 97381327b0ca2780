// SPDX-License-Identifier: MPL-2.0

package jitterbuf

// Result is the single result enumeration returned by the buffer's public
// operations, per the error-handling design in spec §7: no operation
// panics or uses exceptions as control flow, and no error is fatal to the
// instance.
type Result int

const (
	// Success indicates a normal push, or a pop that delivered a
	// carrier.
	Success Result = iota

	// Buffering indicates Pop refused delivery because warmup has not
	// completed, or because the queue was found empty.
	Buffering

	// BadPacket indicates a null/undecodable packet on Push, or a push
	// whose sequence number is too old relative to the head of the
	// queue to be ordered in.
	BadPacket

	// BufferOverflow indicates depth_ms exceeded max_buffer_depth_ms on
	// Push; the head carrier was evicted and insertion proceeded.
	BufferOverflow

	// DroppedPacket indicates Pop detected a gap between last_pop_seq
	// and the head of the queue; last_pop_seq was advanced by one and
	// no carrier was delivered.
	DroppedPacket

	// BufferEmpty is reserved by the result taxonomy (spec §7 / OQ4) but
	// is never returned: Pop returns Buffering for an empty queue
	// instead, matching the reference implementation.
	BufferEmpty
)

func (r Result) String() string {
	switch r {
	case Success:
		return "SUCCESS"
	case Buffering:
		return "BUFFERING"
	case BadPacket:
		return "BAD_PACKET"
	case BufferOverflow:
		return "BUFFER_OVERFLOW"
	case DroppedPacket:
		return "DROPPED_PACKET"
	case BufferEmpty:
		return "BUFFER_EMPTY"
	default:
		return "UNKNOWN"
	}
}
