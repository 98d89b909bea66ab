package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal counts contract events handled by the lifecycle engine by outcome
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldengate_events_total",
			Help: "Total number of contract events processed",
		},
		[]string{"chain", "event", "outcome"},
	)

	// TransitionsTotal counts lifecycle operations by outcome
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldengate_transitions_total",
			Help: "Total number of lifecycle operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// TransactionsSent counts transactions sent to each chain
	TransactionsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldengate_transactions_sent_total",
			Help: "Total number of transactions sent",
		},
		[]string{"chain", "method", "status"},
	)

	// SubmissionDuration tracks how long building, signing and broadcasting a call takes
	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goldengate_submission_duration_seconds",
			Help:    "Transaction submission duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain", "method"},
	)

	// LastProcessedBlock tracks the watcher checkpoint per chain and event
	LastProcessedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "goldengate_last_processed_block",
			Help: "Last processed block number",
		},
		[]string{"chain", "event"},
	)

	// IntentsByState tracks intents known to the store by lifecycle state
	IntentsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "goldengate_intents",
			Help: "Number of intents by state",
		},
		[]string{"state"},
	)

	// RPCRetries counts transport retries per chain
	RPCRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldengate_rpc_retries_total",
			Help: "Total number of retried RPC calls",
		},
		[]string{"chain"},
	)

	// ErrorsTotal counts errors by component and type
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldengate_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)
