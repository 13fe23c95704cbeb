// Package metrics exports store activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// StoreCollector is a StateListener that counts changes by kind and tracks
// the size of the collections.
type StoreCollector struct {
	changes     *prometheus.CounterVec
	connections prometheus.Gauge
	active      prometheus.Gauge
	addresses   prometheus.Gauge
}

// NewStoreCollector registers the store metrics on reg.
func NewStoreCollector(reg prometheus.Registerer) (*StoreCollector, error) {
	c := &StoreCollector{
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "connmon_store_changes_total",
			Help: "Committed store changes by kind.",
		}, []string{"kind"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "connmon_connections",
			Help: "Connections currently in the store.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "connmon_connections_active",
			Help: "Connections with status Active.",
		}),
		addresses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "connmon_addresses",
			Help: "Addresses in the directory.",
		}),
	}
	for _, col := range []prometheus.Collector{c.changes, c.connections, c.active, c.addresses} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe sets the gauges from snap without counting a change.  It seeds the
// gauges at startup.
func (c *StoreCollector) Observe(snap store.Snapshot) {
	active := 0
	for _, conn := range snap.Connections {
		if conn.Status == model.StatusActive {
			active++
		}
	}
	c.connections.Set(float64(len(snap.Connections)))
	c.active.Set(float64(active))
	c.addresses.Set(float64(len(snap.Addresses)))
}

func (c *StoreCollector) StateChanged(change store.Change, snap store.Snapshot) {
	c.changes.WithLabelValues(string(change.Kind)).Inc()
	c.Observe(snap)
}
