package prometheus

import "github.com/prometheus/client_golang/prometheus"

var (
	registry = prometheus.NewRegistry()

	// CommandInvocations counts command runner outcomes:
	// ok, unknown, denied, error.
	CommandInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_command_invocations_total",
			Help: "Command invocations by outcome.",
		},
		[]string{"outcome"},
	)

	// ChronoRuns counts scheduler executions by chrono handle and outcome:
	// ok, error, skipped.
	ChronoRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacon_chrono_runs_total",
			Help: "Chrono executions by handle and outcome.",
		},
		[]string{"handle", "outcome"},
	)
)

func init() {
	registry.MustRegister(CommandInvocations, ChronoRuns)
}

func GetRegistry() *prometheus.Registry {
	return registry
}
