// SPDX-License-Identifier: MPL-2.0

// Command jittersim drives a JitterBuffer with a packetizer feeding
// randomly-reordered, occasionally-dropped PCMU frames, logging every
// push/pop outcome. It is grounded on the packetize-and-send loop in the
// teacher's media.SendDummyRTP (media/rtp_utils.go), reworked from a
// UDP sender into an in-process producer/consumer around jitterbuf.
package main

import (
	"flag"
	"math/rand"
	"os"
	"time"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/rs/zerolog"

	"github.com/emiago/jitterbuf/jitterbuf"
)

const (
	clockRateHz   = 8000
	frameDuration = 20 * time.Millisecond
	mtu           = 1200
	ssrc          = 0xC0FFEE
)

func main() {
	nominalMs := flag.Uint("nominal-ms", 60, "nominal/playout depth in milliseconds")
	packets := flag.Int("packets", 50, "number of frames to generate")
	dropPct := flag.Int("drop-pct", 10, "percent chance a frame is dropped before reaching the buffer")
	reorderPct := flag.Int("reorder-pct", 15, "percent chance a frame is held back and sent after the next one")
	seed := flag.Int64("seed", 1, "PRNG seed, for reproducible runs")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	buf := jitterbuf.New(uint32(*nominalMs), clockRateHz, jitterbuf.WithLogger(log))
	rng := rand.New(rand.NewSource(*seed))

	producer := newFrameProducer(*packets)
	var held *jitterbuf.Carrier

	for producer.more() {
		c, seq := producer.next()

		if rng.Intn(100) < *dropPct {
			log.Info().Uint16("seq", seq).Msg("sim: dropping frame before push")
			continue
		}

		if held == nil && rng.Intn(100) < *reorderPct {
			held = c
			continue
		}

		pushOne(&log, buf, c)
		if held != nil {
			pushOne(&log, buf, held)
			held = nil
		}
	}
	if held != nil {
		pushOne(&log, buf, held)
	}

	drainAll(&log, buf, *packets)
}

func pushOne(log *zerolog.Logger, buf *jitterbuf.JitterBuffer, c *jitterbuf.Carrier) {
	res := buf.Push(c)
	log.Info().Str("result", res.String()).Msg("sim: push")
}

func drainAll(log *zerolog.Logger, buf *jitterbuf.JitterBuffer, want int) {
	delivered := 0
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for delivered < want {
		<-ticker.C
		res, c := buf.Pop()
		switch res {
		case jitterbuf.Success:
			delivered++
			log.Info().
				Uint16("seq", c.Sequence()).
				Bool("redundant", c.UseRedundantPayload).
				Msg("sim: pop delivered")
		case jitterbuf.DroppedPacket:
			log.Warn().Msg("sim: pop reported loss")
		case jitterbuf.Buffering:
			log.Debug().Msg("sim: pop still buffering")
		}
	}

	stats := buf.Stats()
	log.Info().
		Uint32("overflow", stats.OverflowCount).
		Uint32("empty", stats.EmptyCount).
		Uint32("ooo", stats.OutOfOrder).
		Uint32("jitter", stats.Jitter).
		Uint32("max_jitter", stats.MaxJitter).
		Msg("sim: final stats")
}

// frameProducer packetizes silent PCMU frames with a real pion/rtp
// packetizer, mirroring the teacher's SendDummyRTP payloader/sequencer
// setup but without the UDP socket.
type frameProducer struct {
	packetizer rtp.Packetizer
	seq        uint16
	remaining  int
}

func newFrameProducer(n int) *frameProducer {
	payloader := &codecs.G711Payloader{}
	sequencer := rtp.NewRandomSequencer()
	return &frameProducer{
		packetizer: rtp.NewPacketizer(mtu, 0, ssrc, payloader, sequencer, clockRateHz),
		remaining:  n,
	}
}

func (p *frameProducer) more() bool { return p.remaining > 0 }

// next packetizes the next silent frame and returns the carrier along
// with its sequence number, since the carrier itself only exposes
// Sequence() after it has been through Push's header decode.
func (p *frameProducer) next() (*jitterbuf.Carrier, uint16) {
	p.remaining--
	samples := uint32(frameDuration.Seconds() * clockRateHz)
	frame := make([]byte, 160)

	for _, pkt := range p.packetizer.Packetize(frame, samples) {
		raw, err := pkt.Marshal()
		if err != nil {
			continue
		}
		p.seq = pkt.SequenceNumber
		return jitterbuf.NewCarrier(raw, uint32(frameDuration.Milliseconds()), 0), p.seq
	}
	return jitterbuf.NewCarrier(nil, 0, 0), p.seq
}
