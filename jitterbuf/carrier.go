// SPDX-License-Identifier: MPL-2.0

package jitterbuf

// Carrier wraps one RTP datagram plus the metadata the caller must supply
// before Push and the metadata the buffer may set before handing it back
// from Pop. It owns RawBytes: callers must not mutate it after Push, and
// must not assume it is still valid after Reset or after the carrier has
// been evicted by overflow.
type Carrier struct {
	// RawBytes is the RTP datagram, header included, as received from the
	// network. Must be at least 12 bytes for Push to accept it.
	RawBytes []byte

	// PayloadMs is the duration in milliseconds this packet's payload
	// represents, e.g. 20 for a standard PCMU/PCMA frame. Depth
	// accounting (I2) sums this field across the queue.
	PayloadMs uint32

	// PayloadType is the RTP payload type for this packet. It is the
	// caller's responsibility to populate it (see RTP Fixed Header
	// decoding in header.go for an extraction helper); the buffer reads
	// it to detect the DYNAMIC redundancy-recovery case in Pop.
	PayloadType uint8

	// UseRedundantPayload is set true by Pop when this carrier is
	// delivered as a redundancy-recovery copy of a lost packet (spec
	// §4.4 step 7) and false otherwise. Callers inspect it after Pop
	// returns SUCCESS.
	UseRedundantPayload bool

	// seq and ts cache the decoded sequence number and RTP timestamp so
	// the ordered insertion and loss-detection logic in buffer.go don't
	// re-parse the header on every comparison.
	seq uint16
	ts  uint32
}

// NewCarrier constructs a Carrier ready for Push. payloadMs and
// payloadType are caller-declared per the packet contract; decodeHeader
// fills in the sequence/timestamp cache during Push.
func NewCarrier(raw []byte, payloadMs uint32, payloadType uint8) *Carrier {
	return &Carrier{
		RawBytes:    raw,
		PayloadMs:   payloadMs,
		PayloadType: payloadType,
	}
}

// Sequence returns the RTP sequence number decoded from RawBytes. It is
// only valid after the carrier has been through Push.
func (c *Carrier) Sequence() uint16 {
	return c.seq
}

// Timestamp returns the RTP timestamp decoded from RawBytes. It is only
// valid after the carrier has been through Push.
func (c *Carrier) Timestamp() uint32 {
	return c.ts
}
