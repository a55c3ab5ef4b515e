package bank

import (
	"fmt"

	"marginpool/num"
)

// SecondsPerYear converts an APR into a per-second accrual rate.
const SecondsPerYear = 31_536_000

// InterestRateConfig shapes the utilization-driven rate curve and the fee
// components layered on top of it. All rates are APRs expressed as decimals,
// e.g. 0.4 is 40%.
type InterestRateConfig struct {
	// OptimalUtilizationRate is the utilization at which the curve reaches
	// its plateau.
	OptimalUtilizationRate num.Num
	// PlateauInterestRate is the base APR at optimal utilization.
	PlateauInterestRate num.Num
	// MaxInterestRate is the base APR at full utilization.
	MaxInterestRate num.Num

	// InsuranceFeeFixedApr is an APR-additive fee routed to the insurance
	// vault.
	InsuranceFeeFixedApr num.Num
	// InsuranceIrFee is a proportional fee on the base rate routed to the
	// insurance vault.
	InsuranceIrFee num.Num
	// ProtocolFixedFeeApr is an APR-additive fee routed to the group.
	ProtocolFixedFeeApr num.Num
	// ProtocolIrFee is a proportional fee on the base rate routed to the
	// group.
	ProtocolIrFee num.Num
}

// RateSplit is the outcome of evaluating the curve at a utilization point:
// the depositor and borrower APRs plus the two fee APRs carved out of the
// borrow side.
type RateSplit struct {
	LendingRate     num.Num
	BorrowingRate   num.Num
	GroupFeeAPR     num.Num
	InsuranceFeeAPR num.Num
}

// InterestRateCurve evaluates the piecewise-linear base rate at the given
// utilization. Below the optimal utilization the rate climbs linearly to the
// plateau; above it the rate climbs from the plateau toward the max rate at
// full utilization.
func (c InterestRateConfig) InterestRateCurve(utilization num.Num) (num.Num, error) {
	if utilization.Cmp(c.OptimalUtilizationRate) <= 0 {
		slope, err := utilization.Div(c.OptimalUtilizationRate)
		if err != nil {
			return num.Num{}, err
		}
		return slope.Mul(c.PlateauInterestRate)
	}

	excess, err := utilization.Sub(c.OptimalUtilizationRate)
	if err != nil {
		return num.Num{}, err
	}
	headroom, err := num.One().Sub(c.OptimalUtilizationRate)
	if err != nil {
		return num.Num{}, err
	}
	span, err := c.MaxInterestRate.Sub(c.PlateauInterestRate)
	if err != nil {
		return num.Num{}, err
	}
	ratio, err := excess.Div(headroom)
	if err != nil {
		return num.Num{}, err
	}
	scaled, err := ratio.Mul(span)
	if err != nil {
		return num.Num{}, err
	}
	return scaled.Add(c.PlateauInterestRate)
}

// CalcInterestRate evaluates the curve at the given utilization and splits
// the result into the four APRs. The lending rate is scaled by utilization so
// depositors only earn on the lent-out fraction of the pool; the borrowing
// rate carries the proportional and fixed fees on top of the base rate.
func (c InterestRateConfig) CalcInterestRate(utilization num.Num) (RateSplit, error) {
	baseRate, err := c.InterestRateCurve(utilization)
	if err != nil {
		return RateSplit{}, fmt.Errorf("bank: interest rate curve: %w", err)
	}

	lendingRate, err := baseRate.Mul(utilization)
	if err != nil {
		return RateSplit{}, err
	}

	rateFee, err := c.ProtocolIrFee.Add(c.InsuranceIrFee)
	if err != nil {
		return RateSplit{}, err
	}
	totalFixedFeeApr, err := c.ProtocolFixedFeeApr.Add(c.InsuranceFeeFixedApr)
	if err != nil {
		return RateSplit{}, err
	}
	onePlusFee, err := num.One().Add(rateFee)
	if err != nil {
		return RateSplit{}, err
	}
	borrowingRate, err := baseRate.Mul(onePlusFee)
	if err != nil {
		return RateSplit{}, err
	}
	borrowingRate, err = borrowingRate.Add(totalFixedFeeApr)
	if err != nil {
		return RateSplit{}, err
	}

	groupFeeAPR, err := calcFeeRate(baseRate, c.ProtocolIrFee, c.ProtocolFixedFeeApr)
	if err != nil {
		return RateSplit{}, err
	}
	insuranceFeeAPR, err := calcFeeRate(baseRate, c.InsuranceIrFee, c.InsuranceFeeFixedApr)
	if err != nil {
		return RateSplit{}, err
	}

	if lendingRate.IsNegative() || borrowingRate.IsNegative() ||
		groupFeeAPR.IsNegative() || insuranceFeeAPR.IsNegative() {
		return RateSplit{}, ErrNegativeInterestRate
	}

	return RateSplit{
		LendingRate:     lendingRate,
		BorrowingRate:   borrowingRate,
		GroupFeeAPR:     groupFeeAPR,
		InsuranceFeeAPR: insuranceFeeAPR,
	}, nil
}

// Validate checks that the curve parameters describe a usable rate function.
func (c InterestRateConfig) Validate() error {
	if !c.OptimalUtilizationRate.IsPositive() || c.OptimalUtilizationRate.Cmp(num.One()) >= 0 {
		return fmt.Errorf("%w: optimal utilization must be in (0, 1)", ErrInvalidConfig)
	}
	if !c.PlateauInterestRate.IsPositive() {
		return fmt.Errorf("%w: plateau rate must be positive", ErrInvalidConfig)
	}
	if c.MaxInterestRate.Cmp(c.PlateauInterestRate) < 0 {
		return fmt.Errorf("%w: max rate below plateau rate", ErrInvalidConfig)
	}
	for _, fee := range []num.Num{c.InsuranceFeeFixedApr, c.InsuranceIrFee, c.ProtocolFixedFeeApr, c.ProtocolIrFee} {
		if fee.IsNegative() {
			return fmt.Errorf("%w: fee rates must not be negative", ErrInvalidConfig)
		}
	}
	return nil
}

// calcFeeRate computes the fee-only APR for one fee pair: the proportional
// part applied to the base rate plus the fixed part.
func calcFeeRate(baseRate, irFee, fixedFeeApr num.Num) (num.Num, error) {
	scaled, err := baseRate.Mul(irFee)
	if err != nil {
		return num.Num{}, err
	}
	return scaled.Add(fixedFeeApr)
}

// accrualChanges holds the four outputs of one accrual computation. All four
// are computed before any bank field is committed so a failure leaves the
// bank untouched.
type accrualChanges struct {
	depositShareValue   num.Num
	liabilityShareValue num.Num
	groupFees           num.Num
	insuranceFees       num.Num
}

// calcInterestRateAccrualStateChanges computes the post-accrual share values
// and the fee payments for an elapsed period using simple (non-compounding)
// interest on the current share values.
func calcInterestRateAccrualStateChanges(
	timeDelta uint64,
	totalDeposits, totalLiabilities num.Num,
	cfg InterestRateConfig,
	depositShareValue, liabilityShareValue num.Num,
) (accrualChanges, RateSplit, error) {
	utilization, err := totalLiabilities.Div(totalDeposits)
	if err != nil {
		return accrualChanges{}, RateSplit{}, fmt.Errorf("bank: utilization: %w", err)
	}
	split, err := cfg.CalcInterestRate(utilization)
	if err != nil {
		return accrualChanges{}, RateSplit{}, err
	}

	newDepositShareValue, err := calcAccruedInterestPaymentPerPeriod(split.LendingRate, timeDelta, depositShareValue)
	if err != nil {
		return accrualChanges{}, RateSplit{}, err
	}
	newLiabilityShareValue, err := calcAccruedInterestPaymentPerPeriod(split.BorrowingRate, timeDelta, liabilityShareValue)
	if err != nil {
		return accrualChanges{}, RateSplit{}, err
	}
	groupFees, err := calcInterestPaymentForPeriod(split.GroupFeeAPR, timeDelta, totalLiabilities)
	if err != nil {
		return accrualChanges{}, RateSplit{}, err
	}
	insuranceFees, err := calcInterestPaymentForPeriod(split.InsuranceFeeAPR, timeDelta, totalLiabilities)
	if err != nil {
		return accrualChanges{}, RateSplit{}, err
	}

	return accrualChanges{
		depositShareValue:   newDepositShareValue,
		liabilityShareValue: newLiabilityShareValue,
		groupFees:           groupFees,
		insuranceFees:       insuranceFees,
	}, split, nil
}

// calcAccruedInterestPaymentPerPeriod grows a principal value by simple
// interest: value * (1 + apr/SecondsPerYear * timeDelta).
func calcAccruedInterestPaymentPerPeriod(apr num.Num, timeDelta uint64, value num.Num) (num.Num, error) {
	irPerSecond, err := apr.Div(num.FromInt64(SecondsPerYear))
	if err != nil {
		return num.Num{}, err
	}
	periodRate, err := irPerSecond.Mul(num.FromUint64(timeDelta))
	if err != nil {
		return num.Num{}, err
	}
	factor, err := num.One().Add(periodRate)
	if err != nil {
		return num.Num{}, err
	}
	return value.Mul(factor)
}

// calcInterestPaymentForPeriod returns the interest alone on a principal
// value over the period: value * apr/SecondsPerYear * timeDelta.
func calcInterestPaymentForPeriod(apr num.Num, timeDelta uint64, value num.Num) (num.Num, error) {
	irPerSecond, err := apr.Div(num.FromInt64(SecondsPerYear))
	if err != nil {
		return num.Num{}, err
	}
	payment, err := value.Mul(irPerSecond)
	if err != nil {
		return num.Num{}, err
	}
	return payment.Mul(num.FromUint64(timeDelta))
}
