package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	// the go otel metrics sdk also has a prometheus adapter that implements this interface.
	prometheus.Collector
}

type Metrics struct {
	// EventsCount counts gateway events, labeled by event name.
	EventsCount Observer
	// CommandCount counts command invocations, labeled by command name.
	CommandCount Observer
	// MentionCount counts messages mentioning the bot.
	MentionCount Observer
	// EchoCount counts echoed messages.
	EchoCount Observer
	// StatusCount counts presence updates.
	StatusCount Observer
	// FailureCount counts failed submissions, labeled by operation.
	FailureCount Observer
	// HandleLatency is how long it takes to handle an event, labeled by
	// event name.
	HandleLatency Observer
}

func (m Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EventsCount,
		m.CommandCount,
		m.MentionCount,
		m.EchoCount,
		m.StatusCount,
		m.FailureCount,
		m.HandleLatency,
	}
}

// Nop returns metrics which observe nothing.
func Nop() *Metrics {
	return &Metrics{
		EventsCount:   nop{},
		CommandCount:  nop{},
		MentionCount:  nop{},
		EchoCount:     nop{},
		StatusCount:   nop{},
		FailureCount:  nop{},
		HandleLatency: nop{},
	}
}

type nop struct{}

func (nop) Observe(float64, ...string)       {}
func (nop) Describe(chan<- *prometheus.Desc) {}
func (nop) Collect(chan<- prometheus.Metric) {}
