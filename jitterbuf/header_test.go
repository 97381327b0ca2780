// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHeaderBytes(t *testing.T, seq uint16, ts uint32, pt uint8, marker bool) []byte {
	t.Helper()
	h := rtp.Header{
		Version:        2,
		Marker:         marker,
		PayloadType:    pt,
		SequenceNumber: seq,
		Timestamp:      ts,
		SSRC:           0xCAFEBABE,
	}
	b, err := h.Marshal()
	require.NoError(t, err)
	return b
}

func TestDecodeHeaderFixedFields(t *testing.T) {
	raw := buildHeaderBytes(t, 1000, 160000, 0, true)
	raw = append(raw, make([]byte, 160)...)

	h, err := decodeHeader(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), h.sequence)
	assert.Equal(t, uint32(160000), h.timestamp)
	assert.Equal(t, uint32(0xCAFEBABE), h.ssrc)
	assert.True(t, h.marker())
	assert.Equal(t, uint8(0), h.flagsPayloadType())
	assert.Equal(t, rtpHeaderLen, h.payloadStart)
}

func TestDecodeHeaderTooShort(t *testing.T) {
	_, err := decodeHeader([]byte{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrShortPacket)
}

// buildExtensionBytes manually encodes a fixed header with the extension
// bit set plus a one-byte-profile extension block, bypassing pion/rtp's
// own extension marshaling so the test controls the exact wire layout
// decodeHeader must parse.
func buildExtensionBytes(t *testing.T, extWords uint16, extData []byte) []byte {
	t.Helper()
	raw := buildHeaderBytes(t, 5, 8000, 0, false)
	raw[0] |= 0x10 // extension bit, high byte of the flags word
	raw = append(raw, 0xBE, 0xDE)
	raw = append(raw, byte(extWords>>8), byte(extWords))
	raw = append(raw, extData...)
	return raw
}

func TestDecodeHeaderExtension(t *testing.T) {
	raw := buildExtensionBytes(t, 1, []byte{1, 2, 3, 4})
	raw = append(raw, 0xAA, 0xBB) // payload

	dec, err := decodeHeader(raw, 0)
	require.NoError(t, err)
	assert.True(t, dec.extension)
	assert.Equal(t, len(raw)-2, dec.payloadStart)
}

func TestDecodeHeaderExtensionOverrun(t *testing.T) {
	raw := buildExtensionBytes(t, 0xFF, nil) // claims 255 words, buffer has none

	_, err := decodeHeader(raw, 0)
	assert.ErrorIs(t, err, ErrExtensionOverrun)
}

func TestDecodeHeaderDynamicRedundancy(t *testing.T) {
	raw := buildHeaderBytes(t, 32, 32000, PayloadTypeDynamic, false)
	redundant := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	primaryPT := uint8(0)
	primary := []byte{0x01, 0x02, 0x03}

	payload := make([]byte, 0, 4+len(redundant)+1+len(primary))
	payload = append(payload, 0x00, 0x00, 0x00) // 3 byte redundancy preamble
	payload = append(payload, byte(len(redundant)))
	payload = append(payload, redundant...)
	payload = append(payload, primaryPT)
	payload = append(payload, primary...)
	raw = append(raw, payload...)

	h, err := decodeHeader(raw, PayloadTypeDynamic)
	require.NoError(t, err)
	wantStart := rtpHeaderLen + 4 + len(redundant) + 1
	assert.Equal(t, wantStart, h.payloadStart)
	assert.Equal(t, raw[wantStart:], primary)
}
