// SPDX-License-Identifier: MPL-2.0

package jitterbuf

import "github.com/prometheus/client_golang/prometheus"

// Collector exports a JitterBuffer's running statistics (spec §4.6) as
// Prometheus metrics. It is grounded on the Describe/Collect-reads-a-
// locked-snapshot pattern of TCPInfoCollector in the retrieved
// runZeroInc-sockstats pack (pkg/exporter/exporter.go), and on the
// promauto-style metric naming used in arzzra-soft_phone's dialog
// metrics collector. It never touches push/pop's critical path: each
// Collect call takes one short-lived lock to read a Stats snapshot,
// consistent with spec §6 "not part of correctness".
type Collector struct {
	buf *JitterBuffer

	overflow  *prometheus.Desc
	empty     *prometheus.Desc
	ooo       *prometheus.Desc
	jitter    *prometheus.Desc
	maxJitter *prometheus.Desc
	depthMs   *prometheus.Desc
}

// NewCollector builds a Collector for buf, labeled with buf's instance
// id so multiple buffers (e.g. one per call leg) are distinguishable
// once registered with the same prometheus.Registry.
func NewCollector(buf *JitterBuffer) *Collector {
	constLabels := prometheus.Labels{"buf": buf.ID()}

	return &Collector{
		buf: buf,
		overflow: prometheus.NewDesc(
			"jitterbuf_overflow_total", "Total packets that triggered head eviction on overflow.", nil, constLabels),
		empty: prometheus.NewDesc(
			"jitterbuf_empty_total", "Total Pop calls that observed an empty queue.", nil, constLabels),
		ooo: prometheus.NewDesc(
			"jitterbuf_out_of_order_total", "Total packets that arrived out of tail order, including too-old packets rejected by Push.", nil, constLabels),
		jitter: prometheus.NewDesc(
			"jitterbuf_jitter_ticks", "Current RFC 3550 interarrival jitter estimate, in RTP timestamp ticks.", nil, constLabels),
		maxJitter: prometheus.NewDesc(
			"jitterbuf_jitter_ticks_max", "Peak RFC 3550 interarrival jitter estimate observed, in RTP timestamp ticks.", nil, constLabels),
		depthMs: prometheus.NewDesc(
			"jitterbuf_depth_milliseconds", "Current queued depth in milliseconds.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.overflow
	ch <- c.empty
	ch <- c.ooo
	ch <- c.jitter
	ch <- c.maxJitter
	ch <- c.depthMs
}

// Collect implements prometheus.Collector. It reads one Stats and one
// depth snapshot from buf under its own lock; the two reads are not
// atomic with each other, matching spec §5's "no cross-field
// consistency guaranteed across multiple getters".
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.buf.Stats()
	depth := c.buf.GetDepthMs()

	ch <- prometheus.MustNewConstMetric(c.overflow, prometheus.CounterValue, float64(snap.OverflowCount))
	ch <- prometheus.MustNewConstMetric(c.empty, prometheus.CounterValue, float64(snap.EmptyCount))
	ch <- prometheus.MustNewConstMetric(c.ooo, prometheus.CounterValue, float64(snap.OutOfOrder))
	ch <- prometheus.MustNewConstMetric(c.jitter, prometheus.GaugeValue, float64(snap.Jitter))
	ch <- prometheus.MustNewConstMetric(c.maxJitter, prometheus.GaugeValue, float64(snap.MaxJitter))
	ch <- prometheus.MustNewConstMetric(c.depthMs, prometheus.GaugeValue, float64(depth))
}
