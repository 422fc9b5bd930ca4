package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// CacheLookups counts reads against the employee caches.
	// cache: employees | employees_by_id, result: hit | miss
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "employee",
		Name:      "cache_lookups_total",
		Help:      "Employee cache lookups by cache shape and result.",
	}, []string{"cache", "result"})

	// CacheInvalidations counts writes that cleared or replaced a cache entry.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "employee",
		Name:      "cache_invalidations_total",
		Help:      "Employee cache invalidations and write-through puts.",
	}, []string{"cache"})

	// NotificationDispatches counts publish attempts of notification events.
	NotificationDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "employee",
		Name:      "notification_dispatches_total",
		Help:      "Notification events handed to the message bus, by result.",
	}, []string{"topic", "result"})
)
