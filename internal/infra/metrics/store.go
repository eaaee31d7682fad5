package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(resultStoreEntries, resultSweepEvictions) }

var resultStoreEntries = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "result_store_entries",
		Help: "Finished artifacts currently retrievable.",
	},
)

var resultSweepEvictions = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "result_sweep_evictions_total",
		Help: "Result entries evicted by the periodic sweep.",
	},
)

func SetResultEntries(n int) {
	resultStoreEntries.Set(float64(n))
}

func AddSweepEvictions(n int) {
	if n > 0 {
		resultSweepEvictions.Add(float64(n))
	}
}
