package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"marginpool/native/bank"
)

type BankMetrics struct {
	utilization         *prometheus.GaugeVec
	depositShareValue   *prometheus.GaugeVec
	liabilityShareValue *prometheus.GaugeVec
	totalDepositShares  *prometheus.GaugeVec
	totalBorrowShares   *prometheus.GaugeVec
	lendingRate         *prometheus.GaugeVec
	borrowingRate       *prometheus.GaugeVec
	groupFees           *prometheus.CounterVec
	insuranceFees       *prometheus.CounterVec
	lossSocialized      *prometheus.CounterVec
}

var (
	bankOnce     sync.Once
	bankRegistry *BankMetrics
)

func Bank() *BankMetrics {
	bankOnce.Do(func() {
		bankRegistry = &BankMetrics{
			utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "marginpool_bank_utilization",
				Help: "Current liability to deposit ratio per bank.",
			}, []string{"bank"}),
			depositShareValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "marginpool_bank_deposit_share_value",
				Help: "Token value of one deposit share per bank.",
			}, []string{"bank"}),
			liabilityShareValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "marginpool_bank_liability_share_value",
				Help: "Token value of one liability share per bank.",
			}, []string{"bank"}),
			totalDepositShares: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "marginpool_bank_total_deposit_shares",
				Help: "Outstanding deposit shares per bank.",
			}, []string{"bank"}),
			totalBorrowShares: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "marginpool_bank_total_borrow_shares",
				Help: "Outstanding borrow shares per bank.",
			}, []string{"bank"}),
			lendingRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "marginpool_bank_lending_rate",
				Help: "Current depositor APR per bank.",
			}, []string{"bank"}),
			borrowingRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "marginpool_bank_borrowing_rate",
				Help: "Current borrower APR per bank.",
			}, []string{"bank"}),
			groupFees: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marginpool_bank_group_fees_total",
				Help: "Cumulative protocol fees collected per bank, in token units.",
			}, []string{"bank"}),
			insuranceFees: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marginpool_bank_insurance_fees_total",
				Help: "Cumulative insurance fees collected per bank, in token units.",
			}, []string{"bank"}),
			lossSocialized: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marginpool_bank_loss_socialized_total",
				Help: "Cumulative losses spread across depositors per bank, in token units.",
			}, []string{"bank"}),
		}
		prometheus.MustRegister(
			bankRegistry.utilization,
			bankRegistry.depositShareValue,
			bankRegistry.liabilityShareValue,
			bankRegistry.totalDepositShares,
			bankRegistry.totalBorrowShares,
			bankRegistry.lendingRate,
			bankRegistry.borrowingRate,
			bankRegistry.groupFees,
			bankRegistry.insuranceFees,
			bankRegistry.lossSocialized,
		)
	})
	return bankRegistry
}

// Observe refreshes the per-bank gauges from the bank's current state.
func (m *BankMetrics) Observe(b *bank.Bank) {
	if m == nil || b == nil {
		return
	}
	id := b.ID.String()
	if util, err := b.ComputeUtilization(); err == nil {
		m.utilization.WithLabelValues(id).Set(util.Float64())
		if rates, err := b.Config.InterestRateConfig.CalcInterestRate(util); err == nil {
			m.lendingRate.WithLabelValues(id).Set(rates.LendingRate.Float64())
			m.borrowingRate.WithLabelValues(id).Set(rates.BorrowingRate.Float64())
		}
	}
	m.depositShareValue.WithLabelValues(id).Set(b.DepositShareValue.Float64())
	m.liabilityShareValue.WithLabelValues(id).Set(b.LiabilityShareValue.Float64())
	m.totalDepositShares.WithLabelValues(id).Set(b.TotalDepositShares.Float64())
	m.totalBorrowShares.WithLabelValues(id).Set(b.TotalBorrowShares.Float64())
}

// AddFees records fees split off by an accrual pass.
func (m *BankMetrics) AddFees(b *bank.Bank, groupFees, insuranceFees uint64) {
	if m == nil || b == nil {
		return
	}
	id := b.ID.String()
	if groupFees > 0 {
		m.groupFees.WithLabelValues(id).Add(float64(groupFees))
	}
	if insuranceFees > 0 {
		m.insuranceFees.WithLabelValues(id).Add(float64(insuranceFees))
	}
}

// AddSocializedLoss records a loss spread across depositors.
func (m *BankMetrics) AddSocializedLoss(b *bank.Bank, amount float64) {
	if m == nil || b == nil {
		return
	}
	if amount > 0 {
		m.lossSocialized.WithLabelValues(b.ID.String()).Add(amount)
	}
}
