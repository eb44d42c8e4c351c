// Package metrics exposes the counters the interactive/daemon CLI mode
// serves over /metrics, grounded on runZeroInc-sockstats's promhttp.Handler
// wiring (cmd/exporter_example1, cmd/exporter_example2), simplified to a
// plain Counter/CounterVec set since this domain tracks simple event
// counts rather than live per-connection kernel state. The library
// packages do not update these metrics; they stay at zero unless a caller
// increments them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every metric pyps4go defines. Registerer is the
// prometheus.Registerer that New registered them all against.
type Registry struct {
	Registerer prometheus.Registerer

	PollsSent            prometheus.Counter
	UnreachableTransitions prometheus.Counter
	TCPConnects          *prometheus.CounterVec
	LoginResults         *prometheus.CounterVec
	CommandsIssued       *prometheus.CounterVec
	HeartbeatsReceived   prometheus.Counter
}

// New builds a Registry and registers every metric against reg.
func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		Registerer: reg,
		PollsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyps4go",
			Name:      "ddp_polls_sent_total",
			Help:      "Number of DDP SRCH polls sent by the multiplexer.",
		}),
		UnreachableTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyps4go",
			Name:      "ddp_unreachable_transitions_total",
			Help:      "Number of times a watched console crossed into the unreachable state.",
		}),
		TCPConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pyps4go",
			Name:      "tcp_connects_total",
			Help:      "TCP control connections attempted, partitioned by outcome.",
		}, []string{"outcome"}),
		LoginResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pyps4go",
			Name:      "login_results_total",
			Help:      "Login attempts, partitioned by outcome (success/failure).",
		}, []string{"outcome"}),
		CommandsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pyps4go",
			Name:      "commands_issued_total",
			Help:      "Commands issued to a console, partitioned by kind.",
		}, []string{"kind"}),
		HeartbeatsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pyps4go",
			Name:      "heartbeats_received_total",
			Help:      "Heartbeat frames received across all sessions.",
		}),
	}

	reg.MustRegister(
		m.PollsSent,
		m.UnreachableTransitions,
		m.TCPConnects,
		m.LoginResults,
		m.CommandsIssued,
		m.HeartbeatsReceived,
	)
	return m
}
