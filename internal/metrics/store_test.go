package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/store"
)

func TestStoreCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	col, err := NewStoreCollector(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	s := store.New(model.ExampleDataset(time.Now()))
	col.Observe(s.Snapshot())
	s.Subscribe(col)

	if got := value(t, reg, "connmon_connections_active", ""); got != 1 {
		t.Fatalf("expected 1 active after seed, got %v", got)
	}

	s.AddConnection(model.ConnectionInput{ClientName: "B", Address: "a", Status: model.StatusInactive})
	s.AddConnection(model.ConnectionInput{ClientName: "C", Address: "a", Status: model.StatusActive})
	s.ToggleSortByAddress()

	if got := value(t, reg, "connmon_connections", ""); got != 3 {
		t.Fatalf("expected 3 connections, got %v", got)
	}
	if got := value(t, reg, "connmon_connections_active", ""); got != 2 {
		t.Fatalf("expected 2 active, got %v", got)
	}
	if got := value(t, reg, "connmon_store_changes_total", "connection.added"); got != 2 {
		t.Fatalf("expected 2 added changes, got %v", got)
	}
	if got := value(t, reg, "connmon_store_changes_total", "ui.sort_toggled"); got != 1 {
		t.Fatalf("expected 1 toggle, got %v", got)
	}

	if _, err := NewStoreCollector(reg); err == nil {
		t.Fatal("second registration on the same registry should fail")
	}
}

// value reads one sample from reg; kind selects the label for the counter.
func value(t *testing.T, reg *prometheus.Registry, name, kind string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if kind == "" {
				return m.GetGauge().GetValue()
			}
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "kind" && lp.GetValue() == kind {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
