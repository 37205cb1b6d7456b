// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/diffeo/go-geocatalog/catalog"
)

type metrics struct {
	transactions *prometheus.CounterVec
	entities     *prometheus.GaugeVec
	lockWait     *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "geocatalog",
				Name:      "transactions_total",
				Help:      "Catalog transactions by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		entities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "geocatalog",
				Name:      "entities",
				Help:      "Number of committed catalog objects by kind",
			},
			[]string{"kind"},
		),
		lockWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "geocatalog",
				Name:      "lock_wait_seconds",
				Help:      "Time spent waiting for the catalog lock",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"mode"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.transactions, m.entities, m.lockWait)
	}
	return m
}

// outcome names the result of a transaction for the outcome label.
func outcome(err error) string {
	if err == nil {
		return "committed"
	}
	if kind := catalog.KindOf(err); kind != 0 {
		return strings.ToLower(kind.String())
	}
	return "error"
}

func (m *metrics) transaction(op string, err error) {
	m.transactions.With(prometheus.Labels{"op": op, "outcome": outcome(err)}).Inc()
}

func (m *metrics) observeLock(write bool, wait time.Duration) {
	mode := "read"
	if write {
		mode = "write"
	}
	m.lockWait.With(prometheus.Labels{"mode": mode}).Observe(wait.Seconds())
}

// count sets the entity gauges from a committed state.
func (m *metrics) count(s *state) {
	for kind, n := range map[catalog.Kind]int{
		catalog.KindWorkspace:  s.workspaces.len(),
		catalog.KindNamespace:  s.namespaces.len(),
		catalog.KindStore:      s.stores.len(),
		catalog.KindResource:   s.resources.len(),
		catalog.KindLayer:      s.layers.len(),
		catalog.KindLayerGroup: s.groups.len(),
		catalog.KindStyle:      s.styles.len(),
	} {
		m.entities.With(prometheus.Labels{"kind": string(kind)}).Set(float64(n))
	}
}
