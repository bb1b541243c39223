// Package metrics exposes Prometheus metrics for snapshots, the audit trail,
// connector syncs and the HTTP API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyberarian/rekama-sys/pkg/authz"
	"github.com/cyberarian/rekama-sys/pkg/connector"
	"github.com/cyberarian/rekama-sys/pkg/model"
	"github.com/cyberarian/rekama-sys/pkg/store"
)

const namespace = "rekama"

// Metrics owns a registry and every collector registered on it.
type Metrics struct {
	registry *prometheus.Registry

	snapshotSaves    prometheus.Counter
	snapshotFailures prometheus.Counter
	snapshotDuration prometheus.Histogram
	snapshotBytes    prometheus.Gauge
	degraded         prometheus.Gauge

	auditEntries *prometheus.CounterVec
	authzDenied  *prometheus.CounterVec

	syncs        *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	syncsFound   *prometheus.CounterVec
	itemsIndexed *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var (
	_ store.Observer     = (*Metrics)(nil)
	_ store.Sink         = (*Metrics)(nil)
	_ connector.Observer = (*Metrics)(nil)
)

// New creates the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		snapshotSaves: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Snapshots written to the durability backend.",
		}),
		snapshotFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_failures_total",
			Help:      "Snapshot writes that failed.",
		}),
		snapshotDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Time spent writing a snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		snapshotBytes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes",
			Help:      "Size of the last snapshot written.",
		}),
		degraded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_degraded",
			Help:      "1 while the last snapshot write failed.",
		}),

		auditEntries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "Committed audit trail entries.",
		}, []string{"action", "severity"}),
		authzDenied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_denied_total",
			Help:      "Operations rejected by the authorization gate.",
		}, []string{"role", "permission"}),

		syncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_syncs_total",
			Help:      "Connector syncs that ran discovery.",
		}, []string{"connector", "outcome"}),
		syncDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connector_sync_duration_seconds",
			Help:      "Duration of connector syncs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"connector"}),
		syncsFound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connector_discovered_records_total",
			Help:      "Records discovered by connector syncs.",
		}, []string{"connector"}),
		itemsIndexed: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connector_items_indexed",
			Help:      "Items indexed per connector after the last sync.",
		}, []string{"connector"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SnapshotSaved(size int, elapsed time.Duration) {
	m.snapshotSaves.Inc()
	m.snapshotDuration.Observe(elapsed.Seconds())
	m.snapshotBytes.Set(float64(size))
	m.degraded.Set(0)
}

func (m *Metrics) SnapshotFailed(error) {
	m.snapshotFailures.Inc()
	m.degraded.Set(1)
}

func (m *Metrics) Publish(_ context.Context, entries []model.AuditLog) {
	for _, e := range entries {
		m.auditEntries.WithLabelValues(string(e.Action), string(e.Severity)).Inc()
	}
}

// AuthzDenied counts a rejected permission check. It matches
// authz.Gate.OnDeny.
func (m *Metrics) AuthzDenied(role authz.Role, permission authz.Permission) {
	m.authzDenied.WithLabelValues(role.String(), permission.String()).Inc()
}

func (m *Metrics) SyncFinished(c model.Connector, discovered int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.syncs.WithLabelValues(c.Name, outcome).Inc()
	m.syncDuration.WithLabelValues(c.Name).Observe(elapsed.Seconds())
	m.syncsFound.WithLabelValues(c.Name).Add(float64(discovered))
	m.itemsIndexed.WithLabelValues(c.Name).Set(float64(c.ItemsIndexed))
}

// Middleware records request counts and latency labelled by the mux route
// template, which keeps record ids out of the label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
