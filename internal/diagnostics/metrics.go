package diagnostics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/skybi/soa-bridge/internal/exchange"
	"strconv"
)

const metricsNamespace = "soa_bridge"

// outcomeTransportError labels exchanges that did not receive a response
const outcomeTransportError = "transport_error"

// Metrics records every exchange as prometheus metrics
type Metrics struct {
	exchanges *prometheus.CounterVec
	durations *prometheus.HistogramVec
	lastEpoch *prometheus.GaugeVec
}

var _ exchange.Subscriber = (*Metrics)(nil)

// NewMetrics creates the exchange metrics and registers them at the given registerer
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	metrics := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exchanges_total",
			Help:      "Amount of exchanges with the remote service by operation and outcome.",
		}, []string{"operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "exchange_duration_seconds",
			Help:      "Duration of the exchanges with the remote service by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		lastEpoch: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_exchange_timestamp_seconds",
			Help:      "Unix time of the most recent exchange by operation.",
		}, []string{"operation"}),
	}

	for _, collector := range []prometheus.Collector{metrics.exchanges, metrics.durations, metrics.lastEpoch} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}

// Observe records a single exchange
func (metrics *Metrics) Observe(record *exchange.Exchange) {
	outcome := outcomeTransportError
	if record.HTTPStatus != 0 {
		outcome = strconv.Itoa(record.HTTPStatus)
	}
	metrics.exchanges.WithLabelValues(record.Operation, outcome).Inc()
	metrics.durations.WithLabelValues(record.Operation).Observe(record.Duration.Seconds())
	metrics.lastEpoch.WithLabelValues(record.Operation).Set(float64(record.StartedAt.Unix()))
}
