package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "slurm_eta"

var queryDurationHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_duration_seconds",
		Help:      "Time taken by upstream Slurm queries",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
	[]string{"query", "result"},
)

var estimatesCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "Number of availability estimates by request mode and outcome",
	},
	[]string{"mode", "outcome"},
)

var inventoryNodesGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inventory_nodes",
		Help:      "Nodes discovered by the most recent inventory read",
	},
	[]string{"source"},
)

var requestDurationHist = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Time taken to serve availability API requests",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "code"},
)

func init() {
	prometheus.MustRegister(version.NewCollector(namespace))
}

// ObserveQuery 记录一次上游查询 (squeue, sinfo, scontrol, slurmrestd) 的耗时.
func ObserveQuery(query string, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	queryDurationHist.WithLabelValues(query, result).Observe(took.Seconds())
}

// RecordEstimate 记录一次估算结果, outcome 为 available, wait, infeasible 之一.
func RecordEstimate(mode, outcome string) {
	estimatesCounter.WithLabelValues(mode, outcome).Inc()
}

func SetInventoryNodes(source string, n int) {
	inventoryNodesGauge.WithLabelValues(source).Set(float64(n))
}

func ObserveRequest(route string, code int, took time.Duration) {
	requestDurationHist.WithLabelValues(route, strconv.Itoa(code)).Observe(took.Seconds())
}
