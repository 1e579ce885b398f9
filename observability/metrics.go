package observability

import (
	"math/big"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type vaultMetrics struct {
	deposits      prometheus.Counter
	withdrawals   prometheus.Counter
	depositVolume prometheus.Counter
	payoutVolume  prometheus.Counter
	harvests      prometheus.Counter
	vaultsCreated prometheus.Counter
	tvl           prometheus.Gauge
}

var (
	vaultMetricsOnce sync.Once
	vaultRegistry    *vaultMetrics
)

// Vaults returns the metrics registry tracking ledger activity.
func Vaults() *vaultMetrics {
	vaultMetricsOnce.Do(func() {
		vaultRegistry = &vaultMetrics{
			deposits: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "yieldstacks",
				Subsystem: "vault",
				Name:      "deposits_total",
				Help:      "Count of successful vault deposits.",
			}),
			withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "yieldstacks",
				Subsystem: "vault",
				Name:      "withdrawals_total",
				Help:      "Count of successful vault withdrawals.",
			}),
			depositVolume: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "yieldstacks",
				Subsystem: "vault",
				Name:      "deposit_volume",
				Help:      "Total deposited amount in the token's smallest unit.",
			}),
			payoutVolume: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "yieldstacks",
				Subsystem: "vault",
				Name:      "payout_volume",
				Help:      "Total net amount paid out to withdrawers.",
			}),
			harvests: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "yieldstacks",
				Subsystem: "vault",
				Name:      "harvests_total",
				Help:      "Count of successful vault harvests.",
			}),
			vaultsCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "yieldstacks",
				Subsystem: "vault",
				Name:      "created_total",
				Help:      "Count of vaults created.",
			}),
			tvl: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "yieldstacks",
				Subsystem: "platform",
				Name:      "total_value_locked",
				Help:      "Platform-wide assets under management.",
			}),
		}
		prometheus.MustRegister(
			vaultRegistry.deposits,
			vaultRegistry.withdrawals,
			vaultRegistry.depositVolume,
			vaultRegistry.payoutVolume,
			vaultRegistry.harvests,
			vaultRegistry.vaultsCreated,
			vaultRegistry.tvl,
		)
	})
	return vaultRegistry
}

// RecordDeposit increments the deposit counters.
func (m *vaultMetrics) RecordDeposit(amount *big.Int) {
	if m == nil {
		return
	}
	m.deposits.Inc()
	m.depositVolume.Add(bigToFloat(amount))
}

// RecordWithdrawal increments the withdrawal counters.
func (m *vaultMetrics) RecordWithdrawal(net *big.Int) {
	if m == nil {
		return
	}
	m.withdrawals.Inc()
	m.payoutVolume.Add(bigToFloat(net))
}

// RecordHarvest increments the harvest counter.
func (m *vaultMetrics) RecordHarvest() {
	if m == nil {
		return
	}
	m.harvests.Inc()
}

// RecordVaultCreated increments the vault creation counter.
func (m *vaultMetrics) RecordVaultCreated() {
	if m == nil {
		return
	}
	m.vaultsCreated.Inc()
}

// SetTVL updates the platform TVL gauge.
func (m *vaultMetrics) SetTVL(tvl *big.Int) {
	if m == nil {
		return
	}
	m.tvl.Set(bigToFloat(tvl))
}

func bigToFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
