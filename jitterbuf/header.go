// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import (
	"encoding/binary"
	"errors"
)

// Flag masks for the fixed 16-bit RTP header word at offset 0. Widths and
// offsets follow RFC 3550 §5.1.
const (
	flagVersionMask     uint16 = 0xC000
	flagPaddingMask     uint16 = 0x2000
	flagExtensionMask   uint16 = 0x1000
	flagCSRCCountMask   uint16 = 0x0F00
	flagMarkerMask      uint16 = 0x0080
	flagPayloadTypeMask uint16 = 0x007F
)

// PayloadTypeDynamic is the payload type (0x79) that carries a redundant
// copy of the previous packet ahead of its own payload, per the
// redundancy-recovery preamble decoded in payloadStart below.
const PayloadTypeDynamic uint8 = 0x79

const rtpHeaderLen = 12

var (
	// ErrShortPacket is returned when RawBytes is shorter than the fixed
	// 12-byte RTP header, or shorter than a header field it declares
	// (extension block, redundancy preamble) requires.
	ErrShortPacket = errors.New("jitterbuf: packet shorter than declared header")

	// ErrExtensionOverrun is returned when the declared extension length
	// runs past the end of RawBytes.
	ErrExtensionOverrun = errors.New("jitterbuf: extension header overruns packet")
)

// header is the decoded form of the fixed 12-byte RTP header plus the
// computed payload start offset. CSRC list length is intentionally not
// folded into payloadStart -- see the note on OQ3 below.
type header struct {
	flags       uint16
	sequence    uint16
	timestamp   uint32
	ssrc        uint32
	extension   bool
	payloadType uint8
	payloadStart int
}

// decodeHeader extracts the fixed RTP header fields and computes the
// offset at which the payload begins.
//
// payloadStart walks past:
//   - the fixed 12 byte header,
//   - an extension block (4 + 4*extLength bytes) if the extension flag is
//     set,
//   - for PayloadTypeDynamic, a 3-byte redundancy preamble, a length
//     byte, that many bytes of redundant payload, and one primary-PT
//     byte.
//
// OQ3 (preserved, not fixed): the CSRC count in the flags field is never
// consulted here. A packet with a non-empty CSRC list will have its
// payload offset computed one CSRC list short; this is a known
// limitation of the reference implementation that is intentionally
// reproduced rather than silently corrected.
func decodeHeader(raw []byte, payloadType uint8) (header, error) {
	if len(raw) < rtpHeaderLen {
		return header{}, ErrShortPacket
	}

	flags := binary.BigEndian.Uint16(raw[0:2])
	h := header{
		flags:       flags,
		sequence:    binary.BigEndian.Uint16(raw[2:4]),
		timestamp:   binary.BigEndian.Uint32(raw[4:8]),
		ssrc:        binary.BigEndian.Uint32(raw[8:12]),
		extension:   flags&flagExtensionMask != 0,
		payloadType: payloadType,
	}

	offset := rtpHeaderLen
	if h.extension {
		if len(raw) < offset+4 {
			return header{}, ErrShortPacket
		}
		extLength := binary.BigEndian.Uint16(raw[offset+2 : offset+4])
		extBlock := 4 + 4*int(extLength)
		if len(raw) < offset+extBlock {
			return header{}, ErrExtensionOverrun
		}
		offset += extBlock
	}

	if payloadType == PayloadTypeDynamic {
		// 3 byte redundancy preamble + 1 length byte.
		if len(raw) < offset+4 {
			return header{}, ErrShortPacket
		}
		redundantLen := int(raw[offset+3])
		offset += 4 + redundantLen
		// 1 byte primary payload type following the redundant payload.
		if len(raw) < offset+1 {
			return header{}, ErrShortPacket
		}
		offset++
	}

	h.payloadStart = offset
	return h, nil
}

// version reports the 2-bit RTP version field of the flags word.
func (h header) version() uint16 {
	return (h.flags & flagVersionMask) >> 14
}

func (h header) padding() bool {
	return h.flags&flagPaddingMask != 0
}

func (h header) marker() bool {
	return h.flags&flagMarkerMask != 0
}

func (h header) csrcCount() uint16 {
	return (h.flags & flagCSRCCountMask) >> 8
}

func (h header) flagsPayloadType() uint8 {
	return uint8(h.flags & flagPayloadTypeMask)
}
