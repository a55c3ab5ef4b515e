package bank

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"marginpool/num"
)

// Bank is the per-asset accounting state of a lending pool. Deposits and
// borrows are tracked as shares of a floating per-share value; interest
// accrual moves the share values, never the share counts. A bank assumes
// serialized, single-writer access during any one operation; the surrounding
// host owns that locking.
type Bank struct {
	ID      uuid.UUID
	GroupID uuid.UUID
	// Mint identifies the underlying asset.
	Mint uuid.UUID

	// DepositShareValue is the current value of one deposit share. Starts at
	// exactly 1 and only decreases through loss socialization.
	DepositShareValue num.Num
	// LiabilityShareValue is the current value of one liability share.
	// Starts at exactly 1 and never decreases.
	LiabilityShareValue num.Num

	TotalDepositShares num.Num
	TotalBorrowShares  num.Num

	Config BankConfig

	CreatedAt  int64
	LastUpdate int64
}

// NewBank creates the pool state for an asset with both share values at
// exactly 1 and no outstanding shares. The config is validated up front.
func NewBank(groupID, mint uuid.UUID, cfg BankConfig, now int64) (*Bank, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Bank{
		ID:                  uuid.New(),
		GroupID:             groupID,
		Mint:                mint,
		DepositShareValue:   num.One(),
		LiabilityShareValue: num.One(),
		TotalDepositShares:  num.Zero(),
		TotalBorrowShares:   num.Zero(),
		Config:              cfg,
		CreatedAt:           now,
		LastUpdate:          now,
	}, nil
}

// DepositAmount converts deposit shares into asset value.
func (b *Bank) DepositAmount(shares num.Num) (num.Num, error) {
	return shares.Mul(b.DepositShareValue)
}

// DepositShares converts an asset value into deposit shares.
func (b *Bank) DepositShares(amount num.Num) (num.Num, error) {
	return amount.Div(b.DepositShareValue)
}

// LiabilityAmount converts liability shares into asset value.
func (b *Bank) LiabilityAmount(shares num.Num) (num.Num, error) {
	return shares.Mul(b.LiabilityShareValue)
}

// LiabilityShares converts an asset value into liability shares.
func (b *Bank) LiabilityShares(amount num.Num) (num.Num, error) {
	return amount.Div(b.LiabilityShareValue)
}

// TotalDepositValue returns the value of all outstanding deposit shares.
func (b *Bank) TotalDepositValue() (num.Num, error) {
	return b.DepositAmount(b.TotalDepositShares)
}

// TotalLiabilityValue returns the value of all outstanding liability shares.
func (b *Bank) TotalLiabilityValue() (num.Num, error) {
	return b.LiabilityAmount(b.TotalBorrowShares)
}

// ComputeUtilization returns total liabilities over total deposits. An empty
// pool has zero utilization.
func (b *Bank) ComputeUtilization() (num.Num, error) {
	totalDeposits, err := b.TotalDepositValue()
	if err != nil {
		return num.Num{}, err
	}
	if totalDeposits.IsZero() {
		return num.Zero(), nil
	}
	totalLiabilities, err := b.TotalLiabilityValue()
	if err != nil {
		return num.Num{}, err
	}
	return totalLiabilities.Div(totalDeposits)
}

// ChangeDepositShares adds the signed delta to the total deposit shares. A
// net new deposit must keep the pool's total deposit value strictly below the
// value of MaxCapacity shares-worth. The new total is committed only after
// the capacity check passes, so a rejected change leaves the bank untouched.
func (b *Bank) ChangeDepositShares(delta num.Num) error {
	newTotal, err := b.TotalDepositShares.Add(delta)
	if err != nil {
		return err
	}

	if delta.IsPositive() {
		totalValue, err := b.DepositAmount(newTotal)
		if err != nil {
			return err
		}
		maxCapacityValue, err := b.DepositAmount(b.Config.MaxCapacity)
		if err != nil {
			return err
		}
		if totalValue.Cmp(maxCapacityValue) >= 0 {
			return ErrDepositCapacityExceeded
		}
	}

	b.TotalDepositShares = newTotal
	return nil
}

// ChangeLiabilityShares adds the signed delta to the total borrow shares.
// There is no borrow-capacity check in this core.
func (b *Bank) ChangeLiabilityShares(delta num.Num) error {
	newTotal, err := b.TotalBorrowShares.Add(delta)
	if err != nil {
		return err
	}
	b.TotalBorrowShares = newTotal
	return nil
}

// AccrueInterest advances both share values by simple interest over the time
// elapsed since the last accrual and returns the group and insurance fee
// payments, in integer token units, for the caller to move out of pool
// reserves. All four outputs are computed before any field is committed; a
// failure at any step leaves the bank unchanged.
func (b *Bank) AccrueInterest(logger *slog.Logger, now int64) (groupFees, insuranceFees uint64, err error) {
	if now < b.LastUpdate {
		return 0, 0, ErrClockRegression
	}
	timeDelta := uint64(now - b.LastUpdate)
	if timeDelta == 0 {
		return 0, 0, nil
	}

	totalDeposits, err := b.TotalDepositValue()
	if err != nil {
		return 0, 0, err
	}
	if totalDeposits.IsZero() {
		return 0, 0, ErrEmptyPool
	}
	totalLiabilities, err := b.TotalLiabilityValue()
	if err != nil {
		return 0, 0, err
	}

	changes, split, err := calcInterestRateAccrualStateChanges(
		timeDelta,
		totalDeposits,
		totalLiabilities,
		b.Config.InterestRateConfig,
		b.DepositShareValue,
		b.LiabilityShareValue,
	)
	if err != nil {
		return 0, 0, err
	}

	groupFees, err = changes.groupFees.Uint64()
	if err != nil {
		return 0, 0, fmt.Errorf("bank: group fees: %w", err)
	}
	insuranceFees, err = changes.insuranceFees.Uint64()
	if err != nil {
		return 0, 0, fmt.Errorf("bank: insurance fees: %w", err)
	}

	b.DepositShareValue = changes.depositShareValue
	b.LiabilityShareValue = changes.liabilityShareValue
	b.LastUpdate = now

	if logger != nil {
		logger.Info("accrued interest",
			"bank", b.ID.String(),
			"seconds", timeDelta,
			"lendingAPR", split.LendingRate.String(),
			"borrowingAPR", split.BorrowingRate.String(),
			"groupFees", groupFees,
			"insuranceFees", insuranceFees,
		)
	}

	return groupFees, insuranceFees, nil
}

// SocializeLoss spreads an unrecoverable shortfall across all depositors by
// writing down the deposit share value pro rata. Share counts are untouched.
// The caller must already have cleared the defaulted liability shares and
// applied any insurance funds to the loss.
func (b *Bank) SocializeLoss(lossAmount num.Num) error {
	if lossAmount.IsNegative() {
		return ErrInvalidAmount
	}
	if b.TotalDepositShares.IsZero() {
		return ErrNoDepositors
	}

	totalValue, err := b.TotalDepositShares.Mul(b.DepositShareValue)
	if err != nil {
		return err
	}
	if lossAmount.Cmp(totalValue) > 0 {
		return ErrLossExceedsDeposits
	}
	remaining, err := totalValue.Sub(lossAmount)
	if err != nil {
		return err
	}
	newShareValue, err := remaining.Div(b.TotalDepositShares)
	if err != nil {
		return err
	}

	b.DepositShareValue = newShareValue
	return nil
}
