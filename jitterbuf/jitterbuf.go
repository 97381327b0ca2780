// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import (
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultSampleRateHz is used when a caller constructs a buffer without
// specifying one, matching the teacher's codec default (media/codec.go's
// CodecAudioUlaw/CodecAudioAlaw both assume 8000 Hz).
const defaultSampleRateHz uint32 = 8000

// Clock supplies monotonic wall-clock time to the buffer. It does not
// need to track real time, only to be non-decreasing over the process
// lifetime (spec §6 "Clock"). The zero value is replaced by time.Now in
// New.
type Clock func() time.Time

// JitterBuffer is the ordered buffer, state machine, jitter estimator and
// statistics block of spec.md §2-§4 combined behind one mutex (spec §5).
// One instance handles a single RTP stream; SSRC demultiplexing is the
// caller's concern (spec §1 Non-goals).
type JitterBuffer struct {
	mu sync.Mutex

	id  xid.ID
	log zerolog.Logger

	clock Clock

	nominalDepthMs uint32
	maxDepthMs     uint32
	sampleRateHz   uint32

	queue   []*Carrier
	depthMs uint32

	firstBufSeq uint16
	lastBufSeq  uint16
	lastPopSeq  uint16

	buffering          bool
	bufferingStartedAt time.Time

	fsm *fsm.FSM

	jitterEst jitterEstimator
	s         stats
}

// Option configures a JitterBuffer at construction time.
type Option func(*JitterBuffer)

// WithClock overrides the monotonic clock source, primarily for tests
// that need to control elapsed time deterministically.
func WithClock(c Clock) Option {
	return func(b *JitterBuffer) { b.clock = c }
}

// WithLogger overrides the structured logger used for the overflow,
// out-of-order, loss and state-transition trace lines (spec §6 "Logging
// sink"), mirroring MediaSession.SetLogger in the teacher package.
func WithLogger(l zerolog.Logger) Option {
	return func(b *JitterBuffer) { b.log = l }
}

// New constructs a buffer in the BUFFERING state with the given nominal
// depth and sample rate (spec §4.5 construct). maxDepthMs defaults to
// 2*nominalDepthMs; use SetDepth after construction to override it.
func New(nominalDepthMs uint32, sampleRateHz uint32, opts ...Option) *JitterBuffer {
	if sampleRateHz == 0 {
		sampleRateHz = defaultSampleRateHz
	}

	b := &JitterBuffer{
		id:           xid.New(),
		log:          log.Logger,
		clock:        time.Now,
		sampleRateHz: sampleRateHz,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	b.log = b.log.With().Str("buf", b.id.String()).Logger()

	b.initLocked(nominalDepthMs, sampleRateHz)
	return b
}

// Init re-initializes the buffer: BUFFERING, queue cleared, stats
// cleared. It is idempotent and may be called on a buffer already in
// use.
func (b *JitterBuffer) Init(nominalDepthMs uint32, sampleRateHz uint32) Result {
	if sampleRateHz == 0 {
		sampleRateHz = defaultSampleRateHz
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initLocked(nominalDepthMs, sampleRateHz)
	return Success
}

func (b *JitterBuffer) initLocked(nominalDepthMs uint32, sampleRateHz uint32) {
	b.sampleRateHz = sampleRateHz
	b.setDepthLocked(nominalDepthMs, 0)

	b.queue = nil
	b.depthMs = 0
	b.firstBufSeq = 0
	b.lastBufSeq = 0
	b.lastPopSeq = 0
	b.buffering = true
	b.bufferingStartedAt = time.Time{}

	b.jitterEst = newJitterEstimator(sampleRateHz)
	b.s = stats{}

	b.fsm = newPlayoutFSM()
}

// Reset clears the queue and all sequence-tracking state and returns the
// buffer to BUFFERING, preserving the current nominal/max depth and
// sample rate (spec §4.5 "init/reset").
func (b *JitterBuffer) Reset() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	maxMs := b.maxDepthMs
	b.initLocked(b.nominalDepthMs, b.sampleRateHz)
	b.setDepthLocked(b.nominalDepthMs, maxMs)
	return Success
}

// SetDepth changes the target warmup/playout depth and the hard ceiling.
// If maxMs is less than nominalMs (including the zero default), maxMs is
// set to 2*nominalMs.
func (b *JitterBuffer) SetDepth(nominalMs uint32, maxMs uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setDepthLocked(nominalMs, maxMs)
}

func (b *JitterBuffer) setDepthLocked(nominalMs uint32, maxMs uint32) {
	if maxMs < nominalMs {
		maxMs = 2 * nominalMs
	}
	b.nominalDepthMs = nominalMs
	b.maxDepthMs = maxMs
}

// GetDepth returns the number of carriers currently queued.
func (b *JitterBuffer) GetDepth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// GetDepthMs returns the current queued depth in milliseconds.
func (b *JitterBuffer) GetDepthMs() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.depthMs
}

// GetNominalDepth returns the configured nominal warmup/playout depth in
// milliseconds.
func (b *JitterBuffer) GetNominalDepth() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nominalDepthMs
}

// Buffering reports whether Pop currently refuses delivery.
func (b *JitterBuffer) Buffering() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffering
}

// EotDetected zeroes the sequence-tracking counters in response to a
// caller-asserted end-of-transmission signal (spec glossary "EOT"). It
// does not touch the queue, stats, or jitter estimator.
func (b *JitterBuffer) EotDetected() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.firstBufSeq = 0
	b.lastBufSeq = 0
	b.lastPopSeq = 0
}

// OverflowCount returns the running count of overflow evictions.
func (b *JitterBuffer) OverflowCount() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s.overflowCount
}

// OutOfOrderCount returns the running count of out-of-order (non-tail)
// arrivals: prepends, middle insertions, and too-old packets that Push
// rejected.
func (b *JitterBuffer) OutOfOrderCount() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s.oooCount
}

// EmptyCount returns the running count of Pop calls that observed an
// empty queue.
func (b *JitterBuffer) EmptyCount() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s.emptyCount
}

// Jitter returns the current RFC 3550 jitter estimate, truncated to
// uint32 ticks per spec §4.6.
func (b *JitterBuffer) Jitter() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint32(b.jitterEst.jitter)
}

// MaxJitter returns the peak jitter estimate observed, truncated to
// uint32 ticks per spec §4.6.
func (b *JitterBuffer) MaxJitter() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint32(b.jitterEst.maxJitter)
}

// Stats returns a point-in-time snapshot of all counters.
func (b *JitterBuffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		OverflowCount: b.s.overflowCount,
		EmptyCount:    b.s.emptyCount,
		OutOfOrder:    b.s.oooCount,
		Jitter:        uint32(b.jitterEst.jitter),
		MaxJitter:     uint32(b.jitterEst.maxJitter),
	}
}

// ID returns the buffer's instance correlation id, used to tell
// concurrent instances apart in logs and metrics (e.g. one per call
// leg); see SPEC_FULL.md domain stack notes on rs/xid.
func (b *JitterBuffer) ID() string {
	return b.id.String()
}

// SetLogger replaces the buffer's logger at runtime, re-tagging it with
// the instance's buf id, mirroring MediaSession.SetLogger in the
// teacher package.
func (b *JitterBuffer) SetLogger(l zerolog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = l.With().Str("buf", b.id.String()).Logger()
}
