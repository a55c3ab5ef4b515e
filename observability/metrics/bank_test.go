package metrics

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"marginpool/native/bank"
	"marginpool/num"
)

func TestBankMetrics(t *testing.T) {
	m := Bank()
	if m == nil {
		t.Fatalf("expected registry")
	}
	if Bank() != m {
		t.Fatalf("expected singleton registry")
	}

	cfg := bank.BankConfig{
		DepositWeightInit:    num.MustParse("0.9"),
		DepositWeightMaint:   num.MustParse("0.95"),
		LiabilityWeightInit:  num.MustParse("1.2"),
		LiabilityWeightMaint: num.MustParse("1.1"),
		MaxCapacity:          num.FromUint64(1_000_000),
		OperationalState:     bank.StateOperational,
		InterestRateConfig: bank.InterestRateConfig{
			OptimalUtilizationRate: num.MustParse("0.5"),
			PlateauInterestRate:    num.MustParse("0.4"),
			MaxInterestRate:        num.MustParse("3"),
		},
	}
	b, err := bank.NewBank(uuid.New(), uuid.New(), cfg, 1_700_000_000)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}
	if err := b.ChangeDepositShares(num.FromUint64(1000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := b.ChangeLiabilityShares(num.FromUint64(500)); err != nil {
		t.Fatalf("borrow: %v", err)
	}

	m.Observe(b)
	id := b.ID.String()
	if got := testutil.ToFloat64(m.utilization.WithLabelValues(id)); got != 0.5 {
		t.Fatalf("utilization gauge: got %v want 0.5", got)
	}
	if got := testutil.ToFloat64(m.totalDepositShares.WithLabelValues(id)); got != 1000 {
		t.Fatalf("deposit shares gauge: got %v want 1000", got)
	}
	if got := testutil.ToFloat64(m.lendingRate.WithLabelValues(id)); math.Abs(got-0.2) > 1e-9 {
		t.Fatalf("lending rate gauge: got %v want 0.2", got)
	}
	if got := testutil.ToFloat64(m.borrowingRate.WithLabelValues(id)); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("borrowing rate gauge: got %v want 0.4", got)
	}

	m.AddFees(b, 7, 12)
	m.AddFees(b, 3, 0)
	if got := testutil.ToFloat64(m.groupFees.WithLabelValues(id)); got != 10 {
		t.Fatalf("group fee counter: got %v want 10", got)
	}
	if got := testutil.ToFloat64(m.insuranceFees.WithLabelValues(id)); got != 12 {
		t.Fatalf("insurance fee counter: got %v want 12", got)
	}

	m.AddSocializedLoss(b, 25)
	if got := testutil.ToFloat64(m.lossSocialized.WithLabelValues(id)); got != 25 {
		t.Fatalf("loss counter: got %v want 25", got)
	}
}
