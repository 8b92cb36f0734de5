package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBPoolAcquiredConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_acquired_connections",
			Help:      "Number of acquired database connections",
		},
	)

	DBPoolIdleConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_idle_connections",
			Help:      "Number of idle database connections",
		},
	)

	DBPoolMaxConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_max_connections",
			Help:      "Maximum number of database connections",
		},
	)

	DBPoolTotalConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_pool_total_connections",
			Help:      "Total number of database connections",
		},
	)

	DBQueryDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_query_errors_total",
			Help:      "Total number of database query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	RefreshStoreOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_store_operation_duration_seconds",
			Help:      "Duration of refresh store operations in seconds, by driver",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"driver", "operation"},
	)

	RefreshStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_store_errors_total",
			Help:      "Total number of refresh store errors, by driver",
		},
		[]string{"driver", "operation"},
	)

	DBSchemaVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "db_schema_version",
			Help:      "Current database schema version after migrations",
		},
	)
)
