// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayoutFSMStartsBuffering(t *testing.T) {
	f := newPlayoutFSM()
	assert.Equal(t, stateBuffering, f.Current())
}

func TestFireStateTracksBufferTransitions(t *testing.T) {
	clk := newManualClock()
	buf := New(60, 8000, WithClock(clk.now))
	assert.Equal(t, stateBuffering, buf.fsm.Current())

	pushAndWarm(t, buf, clk, 1, 2, 3)
	res, _ := buf.Pop()
	require.Equal(t, Success, res)
	assert.Equal(t, statePlayout, buf.fsm.Current())

	// Draining the queue entirely fires the drain event back to
	// buffering (OQ5: bufferingStartedAt itself is left untouched).
	buf.Pop()
	buf.Pop()
	res, _ = buf.Pop()
	assert.Equal(t, Buffering, res)
	assert.Equal(t, stateBuffering, buf.fsm.Current())
}

func TestResetFiresThroughToFreshFSM(t *testing.T) {
	clk := newManualClock()
	buf := New(60, 8000, WithClock(clk.now))
	pushAndWarm(t, buf, clk, 1, 2, 3)
	buf.Pop()
	assert.Equal(t, statePlayout, buf.fsm.Current())

	buf.Reset()
	assert.Equal(t, stateBuffering, buf.fsm.Current())
	assert.True(t, buf.bufferingStartedAt.IsZero())
}

func TestOQ5BufferingStartedAtNotResetOnEmptyDrain(t *testing.T) {
	clk := newManualClock()
	buf := New(60, 8000, WithClock(clk.now))
	pushAndWarm(t, buf, clk, 1)
	res, _ := buf.Pop()
	require.Equal(t, Success, res)
	require.False(t, buf.Buffering())

	clk.advanceMs(5)
	res, _ = buf.Pop() // queue now empty -> re-enters buffering
	assert.Equal(t, Buffering, res)
	assert.True(t, buf.Buffering())
	// bufferingStartedAt is left at its prior (zeroed-by-fill) value
	// here, not reset to "now"; only the next Push assigns it.
	assert.True(t, buf.bufferingStartedAt.IsZero())

	buf.Push(newCarrier(t, 2, payloadTypePCMU, 20))
	assert.False(t, buf.bufferingStartedAt.IsZero())
	assert.Equal(t, clk.t, buf.bufferingStartedAt)
}
