package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отказа в размещении заказа.
const (
	RejectValidation = "validation"
	RejectReference  = "reference"
	RejectPool       = "pool_timeout"
	RejectStorage    = "storage"
)

// OrderMetrics содержит метрики размещения заказов.
type OrderMetrics struct {
	placed        prometheus.Counter
	rejected      *prometheus.CounterVec
	placeDuration prometheus.Histogram
	cartLines     prometheus.Histogram
}

// NewOrderMetrics создаёт метрики заказов в глобальном реестре.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer создаёт метрики заказов в заданном реестре.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	return &OrderMetrics{
		placed: register(registerer, "food_orders_placed_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "food_orders_placed_total",
			Help: "Total number of orders committed together with their cart lines.",
		})),
		rejected: register(registerer, "food_orders_rejected_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "food_orders_rejected_total",
			Help: "Total number of rejected order placements grouped by reason.",
		}, []string{"reason"})),
		placeDuration: register(registerer, "food_order_place_duration_seconds", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "food_order_place_duration_seconds",
			Help:    "Duration of the order placement transaction in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 20},
		})),
		cartLines: register(registerer, "food_order_cart_lines", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "food_order_cart_lines",
			Help:    "Number of cart lines per placed order.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50},
		})),
	}
}

// RecordPlaced фиксирует успешно размещённый заказ.
func (m *OrderMetrics) RecordPlaced(lines int, duration time.Duration) {
	if m == nil {
		return
	}
	m.placed.Inc()
	m.cartLines.Observe(float64(lines))
	m.placeDuration.Observe(duration.Seconds())
}

// RecordRejected фиксирует отказ с указанной причиной.
func (m *OrderMetrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
