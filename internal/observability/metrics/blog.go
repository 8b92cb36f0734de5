package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BlogsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blogs_created_total",
			Help:      "Total number of blog posts created",
		},
	)

	BlogsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blogs_deleted_total",
			Help:      "Total number of blog posts deleted",
		},
	)

	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Total number of comments created",
		},
	)

	PhotosStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photos_stored_total",
			Help:      "Total number of blog photos stored, by driver",
		},
		[]string{"driver"},
	)

	PhotoBytesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_bytes_stored_total",
			Help:      "Total number of photo bytes written, by driver",
		},
		[]string{"driver"},
	)

	PhotoStorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "photo_storage_errors_total",
			Help:      "Total number of photo storage failures, by driver and operation",
		},
		[]string{"driver", "operation"},
	)
)
