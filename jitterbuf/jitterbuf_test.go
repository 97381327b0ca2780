// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewDefaultsSampleRate(t *testing.T) {
	buf := New(60, 0)
	assert.Equal(t, uint32(60), buf.GetNominalDepth())
	assert.Equal(t, defaultSampleRateHz, buf.sampleRateHz)
	assert.True(t, buf.Buffering())
}

func TestSetDepthDefaultsMaxToDoubleNominal(t *testing.T) {
	buf := New(60, 8000)
	buf.SetDepth(30, 0)
	assert.Equal(t, uint32(30), buf.GetNominalDepth())
	assert.Equal(t, uint32(60), buf.maxDepthMs)
}

func TestSetDepthHonorsExplicitMax(t *testing.T) {
	buf := New(60, 8000)
	buf.SetDepth(30, 200)
	assert.Equal(t, uint32(200), buf.maxDepthMs)
}

func TestIDIsStableAndNonEmpty(t *testing.T) {
	buf := New(60, 8000)
	id1 := buf.ID()
	assert.NotEmpty(t, id1)
	assert.Equal(t, id1, buf.ID())

	other := New(60, 8000)
	assert.NotEqual(t, id1, other.ID())
}

func TestSetLoggerKeepsBufferUsable(t *testing.T) {
	buf := New(60, 8000)
	buf.SetLogger(zerolog.Nop())
	// Does not panic and keeps the buffer usable afterward.
	assert.Equal(t, Success, buf.Init(60, 8000))
}
