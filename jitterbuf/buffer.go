// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import (
	"context"
	"errors"
	"time"

	"github.com/looplab/fsm"
)

// Push inserts one carrier into the ordered queue, per spec.md §4.3. The
// carrier is classified into exactly one of: tail append, too-old
// rejection, head prepend, or a linear-scan middle insertion. Sequence
// comparisons are raw uint16 comparisons, not RFC 1982 serial-number
// arithmetic (OQ1, preserved): wraparound is only special-cased at the
// exact 0xFFFF -> 0x0000 boundary, so large reorders across the wrap
// window can misclassify packets, exactly as the reference does.
func (b *JitterBuffer) Push(c *Carrier) Result {
	if c == nil || len(c.RawBytes) < rtpHeaderLen {
		return BadPacket
	}

	hdr, err := decodeHeader(c.RawBytes, c.PayloadType)
	if err != nil {
		return BadPacket
	}
	c.seq = hdr.sequence
	c.ts = hdr.timestamp

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock()
	result := Success

	if b.depthMs > b.maxDepthMs {
		evicted := b.queue[0]
		b.queue = b.queue[1:]
		b.depthMs -= evicted.PayloadMs
		b.s.overflowCount++
		result = BufferOverflow
		b.log.Trace().Uint32("depth_ms", b.depthMs).Msg("jitterbuf: overflow, evicted head")
	}

	if b.buffering && b.bufferingStartedAt.IsZero() {
		b.bufferingStartedAt = now
	}

	b.jitterEst.update(hdr.timestamp, now)

	s := c.seq
	wasEmpty := len(b.queue) == 0
	switch {
	// Clause (c) is evaluated against "the queue is observed empty",
	// not a bare lastPopSeq==firstBufSeq counter comparison: the two
	// counters are set equal by every empty-queue transition (initial
	// push, full drain) and by redundancy recovery, which keeps the head
	// queued, and the
	// parenthetical in spec §4.3 ("the buffer is effectively empty of
	// yet to be seen packets") describes exactly that condition. Read
	// as a bare counter equality the clause stays true through an
	// entire BUFFERING warmup once the first packet establishes it,
	// which would tail-append every later out-of-order arrival instead
	// of reordering it -- contradicting spec §8 scenario 2. See
	// DESIGN.md.
	case s >= b.lastBufSeq || (s == 0 && b.lastBufSeq == 0xFFFF) || wasEmpty:
		b.queue = append(b.queue, c)
		b.lastBufSeq = s
		b.depthMs += c.PayloadMs
		if wasEmpty {
			b.firstBufSeq = s
			b.lastPopSeq = s
		}

	case s < b.firstBufSeq-1:
		result = BadPacket
		b.s.oooCount++
		b.log.Trace().Uint16("seq", s).Uint16("first_buf_seq", b.firstBufSeq).Msg("jitterbuf: too old, dropped")

	case s == b.firstBufSeq-1:
		q := make([]*Carrier, 0, len(b.queue)+1)
		q = append(q, c)
		b.queue = append(q, b.queue...)
		b.firstBufSeq = s
		b.depthMs += c.PayloadMs
		b.s.oooCount++
		b.log.Trace().Uint16("seq", s).Msg("jitterbuf: out of order, prepended")

	default:
		idx := len(b.queue)
		for i, q := range b.queue {
			if q.seq > s {
				idx = i
				break
			}
		}
		b.queue = append(b.queue, nil)
		copy(b.queue[idx+1:], b.queue[idx:])
		b.queue[idx] = c
		b.depthMs += c.PayloadMs
		b.s.oooCount++
		b.log.Trace().Uint16("seq", s).Int("index", idx).Msg("jitterbuf: out of order, inserted")
	}

	return result
}

// Pop delivers the next carrier, per spec.md §4.4. While buffering it
// always returns Buffering (OQ4 preserved: BufferEmpty is never
// returned). Once buffering clears, the head is delivered only if it is
// the expected next sequence, the caught-up marker, the wraparound
// boundary, or -- for PayloadTypeDynamic -- a redundant copy recovering
// a single lost packet; otherwise a loss is reported and last_pop_seq is
// advanced without consuming the queue.
func (b *JitterBuffer) Pop() (Result, *Carrier) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock()

	if len(b.queue) == 0 {
		b.s.emptyCount++
		if !b.buffering {
			b.buffering = true
			// OQ5 (preserved): bufferingStartedAt is deliberately left
			// untouched here; Push is what assigns it, on the next
			// packet that arrives while buffering is true.
			b.fireState(eventDrain)
		}
		return Buffering, nil
	}

	if b.buffering {
		elapsed := now.Sub(b.bufferingStartedAt).Milliseconds()
		if elapsed >= int64(b.nominalDepthMs) || b.depthMs >= b.nominalDepthMs {
			b.buffering = false
			b.bufferingStartedAt = time.Time{}
			b.fireState(eventFill)
		}
	}

	if b.buffering {
		return Buffering, nil
	}

	h := b.queue[0]
	sH := h.seq

	deliver := b.lastPopSeq == b.firstBufSeq ||
		b.lastPopSeq == b.firstBufSeq-1 ||
		(b.lastPopSeq == 0xFFFF && b.firstBufSeq == 0)

	redundant := !deliver && h.PayloadType == PayloadTypeDynamic && b.lastPopSeq == b.firstBufSeq-2

	switch {
	case redundant:
		h.UseRedundantPayload = true
		b.lastPopSeq = sH
		b.firstBufSeq = sH
		return Success, h

	case deliver:
		h.UseRedundantPayload = false
		b.queue = b.queue[1:]
		b.depthMs -= h.PayloadMs
		b.lastPopSeq = sH
		if len(b.queue) == 0 {
			b.firstBufSeq = b.lastPopSeq
		} else {
			b.firstBufSeq = b.queue[0].seq
		}
		return Success, h

	default:
		b.lastPopSeq++
		b.log.Trace().Uint16("last_pop_seq", b.lastPopSeq).Uint16("first_buf_seq", b.firstBufSeq).Msg("jitterbuf: loss detected")
		return DroppedPacket, nil
	}
}

// fireState drives the declared buffering/playout FSM alongside the
// literal boolean transition above; it is purely observational (e.g. for
// logging/metrics hooks) and never itself decides the transition.
func (b *JitterBuffer) fireState(event string) {
	if err := b.fsm.Event(context.Background(), event); err != nil {
		var noTransition fsm.NoTransitionError
		var inTransition fsm.InTransitionError
		if errors.As(err, &noTransition) || errors.As(err, &inTransition) {
			return
		}
		b.log.Warn().Err(err).Str("event", event).Msg("jitterbuf: state machine transition rejected")
		return
	}
	b.log.Trace().Str("event", event).Str("state", b.fsm.Current()).Msg("jitterbuf: state transition")
}
