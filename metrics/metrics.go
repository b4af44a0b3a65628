// Package metrics exposes the server's Prometheus counters: connection
// admission, handshake outcomes, and framing failures. Grounded on
// vango-go-vango's pkg/middleware/metrics.go (promauto registration under a
// namespace, package-level singleton built once).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portkey"

var (
	// ConnectionsAccepted counts connections admitted from the listening
	// socket; sockets rejected at admission are not counted.
	ConnectionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_accepted_total",
		Help:      "Total TCP connections accepted.",
	})

	// HandshakeFailures counts connections destroyed by a handshake error.
	HandshakeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshake_failures_total",
		Help:      "Total connections that failed their handshake.",
	})

	// HandshakeTimeouts counts connections destroyed by the handshake-timer sweep.
	HandshakeTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handshake_timeouts_total",
		Help:      "Total connections destroyed for exceeding the handshake timeout.",
	})

	// ActiveConnections tracks the current pool occupancy.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_connections",
		Help:      "Current number of live connections.",
	})

	// DecodeErrors counts steady-state frame decode/deserialize failures.
	DecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decode_errors_total",
		Help:      "Total decode or deserialize failures on open connections.",
	})
)
