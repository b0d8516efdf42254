package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "reminder_bot"

// Metrics exposes Prometheus collectors for the poller and the dispatcher.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	pollTicks    *prometheus.CounterVec
	pollDuration prometheus.Histogram
	messages     *prometheus.CounterVec
	commands     *prometheus.CounterVec
}

// MustNewMetrics constructs and registers the collectors on reg. Pass a fresh
// registry in tests to avoid duplicate registration panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		pollTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "poller",
				Name:      "ticks_total",
				Help:      "Poll ticks by result.",
			},
			[]string{"result"},
		),
		pollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "poller",
				Name:      "tick_duration_seconds",
				Help:      "Time spent fetching and dispatching one batch.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "poller",
				Name:      "messages_total",
				Help:      "Inbound messages by processing result.",
			},
			[]string{"result"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dispatcher",
				Name:      "commands_total",
				Help:      "Dispatched commands by action and outcome.",
			},
			[]string{"action", "outcome"},
		),
	}
	reg.MustRegister(m.pollTicks, m.pollDuration, m.messages, m.commands)
	return m
}

// ObserveTick records one poll tick.
func (m *Metrics) ObserveTick(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pollTicks.WithLabelValues(result).Inc()
	m.pollDuration.Observe(elapsed.Seconds())
}

// ObserveMessage records the outcome of one inbound message.
func (m *Metrics) ObserveMessage(result string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(result).Inc()
}

// ObserveCommand records how a dispatched command ended.
func (m *Metrics) ObserveCommand(action, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(action, outcome).Inc()
}
