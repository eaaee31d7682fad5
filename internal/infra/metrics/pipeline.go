package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(fetchBytesTotal, subprocessFailuresTotal) }

var fetchBytesTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "fetch_bytes_total",
		Help: "Bytes downloaded into scratch storage.",
	},
)

var subprocessFailuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "subprocess_failures_total",
		Help: "External tool invocations that did not exit cleanly.",
	},
	[]string{"class"}, // 'spawn', 'terminated', 'exit'
)

func AddFetchBytes(n int64) {
	if n > 0 {
		fetchBytesTotal.Add(float64(n))
	}
}

func IncSubprocessFailure(class string) {
	subprocessFailuresTotal.WithLabelValues(norm(class)).Inc()
}
