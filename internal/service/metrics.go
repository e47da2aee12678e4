package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	productsNormalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_products_normalized_total",
			Help: "Raw product records run through the normalizer, by outcome (normalized, absent)",
		},
		[]string{"outcome"},
	)

	viewCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_view_cache_requests_total",
			Help: "Product view cache lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
