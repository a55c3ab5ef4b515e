package bank

import (
	"fmt"

	"github.com/google/uuid"

	"marginpool/num"
)

// OperationalState gates which balance changes a bank accepts.
type OperationalState uint8

const (
	StatePaused OperationalState = iota
	StateOperational
	StateReduceOnly
)

func (s OperationalState) String() string {
	switch s {
	case StatePaused:
		return "paused"
	case StateOperational:
		return "operational"
	case StateReduceOnly:
		return "reduce-only"
	default:
		return "unknown"
	}
}

// RequirementType selects which weight pair the external risk engine asks
// for.
type RequirementType uint8

const (
	Initial RequirementType = iota
	Maintenance
)

// BankConfig carries the risk and capacity parameters of a bank. The weight
// fields are consumed by the external risk engine; this core only validates
// and stores them.
type BankConfig struct {
	DepositWeightInit  num.Num
	DepositWeightMaint num.Num

	LiabilityWeightInit  num.Num
	LiabilityWeightMaint num.Num

	// MaxCapacity bounds total deposits, expressed in deposit shares.
	MaxCapacity num.Num

	// Oracle is an opaque price-feed reference resolved by the host; the
	// accounting core never reads prices.
	Oracle uuid.UUID

	InterestRateConfig InterestRateConfig

	OperationalState OperationalState
}

// GetWeights returns the (deposit, liability) weight pair for the requested
// requirement type.
func (c BankConfig) GetWeights(requirement RequirementType) (num.Num, num.Num) {
	switch requirement {
	case Maintenance:
		return c.DepositWeightMaint, c.LiabilityWeightMaint
	default:
		return c.DepositWeightInit, c.LiabilityWeightInit
	}
}

// Validate checks the whole configuration. Weights follow the usual margin
// conventions: deposit weights in [0, 1] with the maintenance weight at least
// the initial one, liability weights at least 1 with the initial weight at
// least the maintenance one.
func (c BankConfig) Validate() error {
	if c.DepositWeightInit.IsNegative() || c.DepositWeightInit.Cmp(num.One()) > 0 {
		return fmt.Errorf("%w: deposit init weight outside [0, 1]", ErrInvalidConfig)
	}
	if c.DepositWeightMaint.Cmp(c.DepositWeightInit) < 0 {
		return fmt.Errorf("%w: deposit maint weight below init weight", ErrInvalidConfig)
	}
	if c.LiabilityWeightInit.Cmp(num.One()) < 0 {
		return fmt.Errorf("%w: liability init weight below 1", ErrInvalidConfig)
	}
	if c.LiabilityWeightMaint.Cmp(c.LiabilityWeightInit) > 0 || c.LiabilityWeightMaint.Cmp(num.One()) < 0 {
		return fmt.Errorf("%w: liability maint weight outside [1, init]", ErrInvalidConfig)
	}
	if c.MaxCapacity.IsNegative() {
		return fmt.Errorf("%w: negative deposit capacity", ErrInvalidConfig)
	}
	return c.InterestRateConfig.Validate()
}

// AssertOperationalMode rejects operations the bank's operational state does
// not permit. Reduce-only banks refuse balance-increasing changes.
func (c BankConfig) AssertOperationalMode(increasing bool) error {
	switch c.OperationalState {
	case StatePaused:
		return ErrBankPaused
	case StateReduceOnly:
		if increasing {
			return ErrBankReduceOnly
		}
	}
	return nil
}

// BankConfigOpt is the update descriptor for a bank configuration: every
// field is optional and only present fields are applied.
type BankConfigOpt struct {
	DepositWeightInit  *num.Num
	DepositWeightMaint *num.Num

	LiabilityWeightInit  *num.Num
	LiabilityWeightMaint *num.Num

	MaxCapacity *num.Num

	Oracle *uuid.UUID

	InterestRateConfig *InterestRateConfig

	OperationalState *OperationalState
}

// Configure merges the present fields of opt into the bank's configuration.
// The merge happens on a scratch copy and is validated as a whole before it
// is committed, so a rejected update leaves the live config untouched.
func (b *Bank) Configure(opt BankConfigOpt) error {
	cfg := b.Config
	if opt.DepositWeightInit != nil {
		cfg.DepositWeightInit = *opt.DepositWeightInit
	}
	if opt.DepositWeightMaint != nil {
		cfg.DepositWeightMaint = *opt.DepositWeightMaint
	}
	if opt.LiabilityWeightInit != nil {
		cfg.LiabilityWeightInit = *opt.LiabilityWeightInit
	}
	if opt.LiabilityWeightMaint != nil {
		cfg.LiabilityWeightMaint = *opt.LiabilityWeightMaint
	}
	if opt.MaxCapacity != nil {
		cfg.MaxCapacity = *opt.MaxCapacity
	}
	if opt.Oracle != nil {
		cfg.Oracle = *opt.Oracle
	}
	if opt.InterestRateConfig != nil {
		cfg.InterestRateConfig = *opt.InterestRateConfig
	}
	if opt.OperationalState != nil {
		cfg.OperationalState = *opt.OperationalState
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	b.Config = cfg
	return nil
}
