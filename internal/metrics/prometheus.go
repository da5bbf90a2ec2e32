package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Request metrics
	OperationsTotal *prometheus.CounterVec
	OperationErrors *prometheus.CounterVec

	// Topology metrics
	ShardsActive prometheus.Gauge
	VirtualNodes prometheus.Gauge

	// Storage metrics
	KeysStored *prometheus.GaugeVec
}

// NewMetrics creates and registers Prometheus metrics against the given
// registerer. Pass prometheus.DefaultRegisterer in production; tests can use
// an isolated prometheus.NewRegistry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hashkv_operations_total",
				Help: "Total number of key operations routed",
			},
			[]string{"operation", "shard"},
		),

		OperationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hashkv_operation_errors_total",
				Help: "Total number of failed operations",
			},
			[]string{"operation", "error_type"},
		),

		ShardsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hashkv_shards_active",
				Help: "Number of registered shards",
			},
		),

		VirtualNodes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hashkv_virtual_nodes",
				Help: "Number of occupied virtual node positions on the ring",
			},
		),

		KeysStored: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hashkv_keys_stored",
				Help: "Number of keys currently stored per shard",
			},
			[]string{"shard"},
		),
	}
}

// RecordOperation records a routed key operation
func (m *Metrics) RecordOperation(operation, shard string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, shard).Inc()
}

// RecordError records a failed operation
func (m *Metrics) RecordError(operation, errorType string) {
	if m == nil {
		return
	}
	m.OperationErrors.WithLabelValues(operation, errorType).Inc()
}

// SetShardsActive updates the registered shard count
func (m *Metrics) SetShardsActive(count int) {
	if m == nil {
		return
	}
	m.ShardsActive.Set(float64(count))
}

// SetVirtualNodes updates the occupied virtual node count
func (m *Metrics) SetVirtualNodes(count int) {
	if m == nil {
		return
	}
	m.VirtualNodes.Set(float64(count))
}

// SetKeysStored updates the key count for one shard
func (m *Metrics) SetKeysStored(shard string, count int) {
	if m == nil {
		return
	}
	m.KeysStored.WithLabelValues(shard).Set(float64(count))
}

// RemoveShard drops the per-shard key gauge after shard removal
func (m *Metrics) RemoveShard(shard string) {
	if m == nil {
		return
	}
	m.KeysStored.DeleteLabelValues(shard)
}
