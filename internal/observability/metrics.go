// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScanRunsTotal      *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
	VoterAccountsSeen  prometheus.Gauge
	AccountsDecoded    prometheus.Counter
	MalformedRecords   prometheus.Counter
	OverflowedRecords  prometheus.Counter
	WalletsRanked      prometheus.Gauge
	HighestSlotScanned prometheus.Gauge

	// Watch metrics
	AccountChangesSeen prometheus.Counter
	RescansTriggered   prometheus.Counter

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulScan prometheus.Gauge
	ReportsGenerated   prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "islanddao_governance"
	}

	return &Metrics{
		// Scan metrics
		ScanRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of leaderboard scans by status",
		}, []string{"status"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Leaderboard scan duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		VoterAccountsSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "voter_accounts",
			Help:      "Voter accounts fetched in the latest scan",
		}),
		AccountsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "accounts_decoded_total",
			Help:      "Total number of voter accounts decoded",
		}),
		MalformedRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "malformed_records_total",
			Help:      "Total number of voter accounts skipped as malformed",
		}),
		OverflowedRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "overflowed_records_total",
			Help:      "Total number of wallet buckets excluded for overflow",
		}),
		WalletsRanked: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "wallets_ranked",
			Help:      "Wallets in the latest leaderboard",
		}),
		HighestSlotScanned: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "highest_slot_scanned",
			Help:      "Slot of the latest account snapshot",
		}),

		// Watch metrics
		AccountChangesSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "account_changes_total",
			Help:      "Total number of voter account change notifications",
		}),
		RescansTriggered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watch",
			Name:      "rescans_triggered_total",
			Help:      "Total number of rescans triggered by account changes",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulScan: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordScan records one scan run with its outcome counts.
func RecordScan(status string, durationSeconds float64, voterAccounts, decoded, malformed, overflowed, wallets int) {
	DefaultMetrics.ScanRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ScanDuration.Observe(durationSeconds)
	DefaultMetrics.VoterAccountsSeen.Set(float64(voterAccounts))
	DefaultMetrics.AccountsDecoded.Add(float64(decoded))
	DefaultMetrics.MalformedRecords.Add(float64(malformed))
	DefaultMetrics.OverflowedRecords.Add(float64(overflowed))
	DefaultMetrics.WalletsRanked.Set(float64(wallets))
}

// RecordAccountChange increments the account change counter.
func RecordAccountChange() {
	DefaultMetrics.AccountChangesSeen.Inc()
}

// RecordRescan increments the rescan counter.
func RecordRescan() {
	DefaultMetrics.RescansTriggered.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// UpdateHighestSlot updates the highest slot scanned gauge.
func UpdateHighestSlot(slot int64) {
	DefaultMetrics.HighestSlotScanned.Set(float64(slot))
}
