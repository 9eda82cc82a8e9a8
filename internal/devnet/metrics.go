package devnet

import (
	"errors"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	transactions  *prometheus.CounterVec
	rejected      prometheus.Counter
	reverts       prometheus.Counter
	height        prometheus.Gauge
	subscriptions prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devnet",
			Name:      "transactions_total",
			Help:      "number of mined transactions by receipt status",
		}, []string{"status"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devnet",
			Name:      "transactions_rejected_total",
			Help:      "number of transactions rejected before execution",
		}),
		reverts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devnet",
			Name:      "call_reverts_total",
			Help:      "number of reverted eth_call and eth_estimateGas executions",
		}),
		height: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devnet",
			Name:      "block_height",
			Help:      "number of the latest block",
		}),
		subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "devnet",
			Name:      "log_subscriptions",
			Help:      "number of active log subscriptions",
		}),
	}
	if reg == nil {
		return m, nil
	}
	return m, errors.Join(
		reg.Register(m.transactions),
		reg.Register(m.rejected),
		reg.Register(m.reverts),
		reg.Register(m.height),
		reg.Register(m.subscriptions),
	)
}

func (m *metrics) observe(receipt *types.Receipt) {
	status := "success"
	if receipt.Status != types.ReceiptStatusSuccessful {
		status = "failed"
	}
	m.transactions.WithLabelValues(status).Inc()
	m.height.Set(float64(receipt.BlockNumber.Uint64()))
}
