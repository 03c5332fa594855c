// Package metrics holds the Prometheus collectors shared across stowaway.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "stowaway"

var (
	SearchQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Total number of searches that were scored",
		},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	LoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inventory_load_duration_seconds",
			Help:      "Inventory load duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_loads_total",
			Help:      "Total number of inventory loads",
		},
		[]string{"status"}, // "ok" / "error"
	)

	StoreEntities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_entities",
			Help:      "Entities held by the in-memory store after the last load",
		},
		[]string{"kind"},
	)

	MaintenanceObjectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_objects_total",
			Help:      "Records visited by maintenance jobs",
		},
		[]string{"job", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(LoadDuration)
	prometheus.MustRegister(LoadsTotal)
	prometheus.MustRegister(StoreEntities)
	prometheus.MustRegister(MaintenanceObjectsTotal)
}
