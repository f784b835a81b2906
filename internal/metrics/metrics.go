// Package metrics exposes Prometheus instrumentation for the directory.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "facilitydir"

// Seed triggers.
const (
	TriggerStartup = "startup"
	TriggerCommand = "command"
	TriggerWatch   = "watch"
)

// Metrics owns a private registry and the directory collectors.
type Metrics struct {
	registry *prometheus.Registry

	queryDuration *prometheus.HistogramVec
	queryErrors   *prometheus.CounterVec
	rowsReturned  *prometheus.CounterVec
	seeds         *prometheus.CounterVec
	lastSeed      prometheus.Gauge
	tableRows     *prometheus.GaugeVec
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of directory queries.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		queryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Directory queries that returned an error.",
		}, []string{"op"}),
		rowsReturned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_rows_total",
			Help:      "Rows returned by directory queries.",
		}, []string{"op"}),
		seeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeds_total",
			Help:      "Seed runs by trigger and result.",
		}, []string{"trigger", "result"}),
		lastSeed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_seed_timestamp_seconds",
			Help:      "Unix time of the last successful seed.",
		}),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Row count per directory table.",
		}, []string{"table"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.queryDuration,
		m.queryErrors,
		m.rowsReturned,
		m.seeds,
		m.lastSeed,
		m.tableRows,
	)
	return m
}

// Registry returns the registry backing Handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSeed records a seed run. A nil err counts as success.
func (m *Metrics) ObserveSeed(trigger string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	} else {
		m.lastSeed.SetToCurrentTime()
	}
	m.seeds.WithLabelValues(trigger, result).Inc()
}

// SetStats publishes table row counts.
func (m *Metrics) SetStats(s core.Stats) {
	m.tableRows.WithLabelValues("facilities").Set(float64(s.Facilities))
	m.tableRows.WithLabelValues("amenities").Set(float64(s.Amenities))
	m.tableRows.WithLabelValues("facility_amenities").Set(float64(s.Associations))
}

func (m *Metrics) observe(op string, start time.Time, rows int, err error) {
	m.queryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.queryErrors.WithLabelValues(op).Inc()
		return
	}
	m.rowsReturned.WithLabelValues(op).Add(float64(rows))
}

// Reader wraps a core.Reader and records every call.
type Reader struct {
	next    core.Reader
	metrics *Metrics
}

var _ core.Reader = (*Reader)(nil)

// Instrument returns r wrapped with query metrics.
func (m *Metrics) Instrument(r core.Reader) *Reader {
	return &Reader{next: r, metrics: m}
}

func (r *Reader) ListFacilities(ctx context.Context, limit, offset int, search string) ([]core.Facility, error) {
	start := time.Now()
	out, err := r.next.ListFacilities(ctx, limit, offset, search)
	r.metrics.observe("list_facilities", start, len(out), err)
	return out, err
}

func (r *Reader) GetFacility(ctx context.Context, id string) (*core.Facility, error) {
	start := time.Now()
	f, err := r.next.GetFacility(ctx, id)
	rows := 0
	if f != nil {
		rows = 1
	}
	r.metrics.observe("get_facility", start, rows, err)
	return f, err
}

func (r *Reader) ListAmenities(ctx context.Context) ([]core.Amenity, error) {
	start := time.Now()
	out, err := r.next.ListAmenities(ctx)
	r.metrics.observe("list_amenities", start, len(out), err)
	return out, err
}

func (r *Reader) Counts(ctx context.Context) (core.Stats, error) {
	start := time.Now()
	s, err := r.next.Counts(ctx)
	r.metrics.observe("counts", start, 3, err)
	if err == nil {
		r.metrics.SetStats(s)
	}
	return s, err
}
