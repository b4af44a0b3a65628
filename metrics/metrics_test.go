package metrics_test

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/nordholt/portkey/metrics"
)

func readCounter(t *testing.T, c interface {
	Write(*dto.Metric) error
}) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestConnectionsAcceptedIncrements(t *testing.T) {
	before := readCounter(t, metrics.ConnectionsAccepted)
	metrics.ConnectionsAccepted.Inc()
	after := readCounter(t, metrics.ConnectionsAccepted)

	if after != before+1 {
		t.Fatalf("ConnectionsAccepted went from %v to %v, want +1", before, after)
	}
}

func TestActiveConnectionsGauge(t *testing.T) {
	metrics.ActiveConnections.Set(0)
	metrics.ActiveConnections.Inc()
	metrics.ActiveConnections.Inc()
	metrics.ActiveConnections.Dec()

	var m dto.Metric
	if err := metrics.ActiveConnections.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 1 {
		t.Fatalf("ActiveConnections = %v, want 1", got)
	}
}
