// Package metrics provides operator diagnostics for the reconciliation core.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the diagnostic interface the core components report into.
// Embedders without a scrape endpoint use Nop.
type Recorder interface {
	RecordIdentityDropped(source string)
	RecordKeyCollision()
	RecordResolveHit(matchType string)
	RecordResolveMiss()
	RecordInvalidLicense(reason string)
	RecordSnapshotFailure(source string)
	RecordSnapshotLatency(d time.Duration)
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordIdentityDropped(string)        {}
func (Nop) RecordKeyCollision()                 {}
func (Nop) RecordResolveHit(string)             {}
func (Nop) RecordResolveMiss()                  {}
func (Nop) RecordInvalidLicense(string)         {}
func (Nop) RecordSnapshotFailure(string)        {}
func (Nop) RecordSnapshotLatency(time.Duration) {}

// Collector implements Recorder on Prometheus counters.
type Collector struct {
	identityDropped *prometheus.CounterVec
	keyCollisions   prometheus.Counter
	resolveHits     *prometheus.CounterVec
	resolveMisses   prometheus.Counter
	invalidLicenses *prometheus.CounterVec
	snapshotFail    *prometheus.CounterVec
	snapshotLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		identityDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lir_identity_records_dropped_total",
			Help: "Identity records dropped for missing both email and username.",
		}, []string{"source"}),
		keyCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lir_index_key_collisions_total",
			Help: "Index keys overwritten under the last-write-wins policy.",
		}),
		resolveHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lir_resolve_hits_total",
			Help: "Successful identity resolutions by match type.",
		}, []string{"match_type"}),
		resolveMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lir_resolve_misses_total",
			Help: "Foreign records with no identity match.",
		}),
		invalidLicenses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lir_invalid_licenses_total",
			Help: "License grants skipped during grouping, by missing field.",
		}, []string{"reason"}),
		snapshotFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lir_snapshot_failures_total",
			Help: "Identity snapshot loads that failed, by source.",
		}, []string{"source"}),
		snapshotLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lir_snapshot_latency_seconds",
			Help:    "Wall time of composite snapshot loads.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.identityDropped,
		c.keyCollisions,
		c.resolveHits,
		c.resolveMisses,
		c.invalidLicenses,
		c.snapshotFail,
		c.snapshotLatency,
	)

	return c
}

func (c *Collector) RecordIdentityDropped(source string) {
	c.identityDropped.WithLabelValues(source).Inc()
}

func (c *Collector) RecordKeyCollision() {
	c.keyCollisions.Inc()
}

func (c *Collector) RecordResolveHit(matchType string) {
	c.resolveHits.WithLabelValues(matchType).Inc()
}

func (c *Collector) RecordResolveMiss() {
	c.resolveMisses.Inc()
}

func (c *Collector) RecordInvalidLicense(reason string) {
	c.invalidLicenses.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordSnapshotFailure(source string) {
	c.snapshotFail.WithLabelValues(source).Inc()
}

func (c *Collector) RecordSnapshotLatency(d time.Duration) {
	c.snapshotLatency.Observe(d.Seconds())
}

// Handler returns an HTTP handler exposing the gathered metrics for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
