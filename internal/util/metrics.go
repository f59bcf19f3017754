package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of rejected or failed order creations",
	}, []string{"reason"})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status updates",
	}, []string{"status"})

	ReviewsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created",
	})

	ReviewsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_rejected_total",
		Help: "Total number of rejected review submissions",
	}, []string{"reason"})

	RevenueCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "revenue_cache_hits_total",
		Help: "Total number of revenue stats served from cache",
	})

	RevenueCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "revenue_cache_misses_total",
		Help: "Total number of revenue stats computed from the database",
	})

	RevenueQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "revenue_query_latency_seconds",
		Help:    "Latency of revenue stats computation",
		Buckets: prometheus.DefBuckets,
	})

	RatingRecomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rating_recomputes_total",
		Help: "Total number of rating aggregations performed by the worker",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
