// Package config loads the module configuration: the group admin identity and
// the per-asset bank definitions. Decimal fields are carried as strings in
// TOML and parsed through the fixed-point scalar so precision loss is
// explicit and confined to load time.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"marginpool/native/bank"
	"marginpool/num"
)

// Module is the root configuration document.
type Module struct {
	Group GroupSection `toml:"group"`
	Banks []BankDef    `toml:"bank"`
}

// GroupSection identifies the administrative owner of the configured banks.
type GroupSection struct {
	Admin string `toml:"Admin"`
}

// BankDef describes one bank to be created at bootstrap.
type BankDef struct {
	Name   string `toml:"Name"`
	Mint   string `toml:"Mint"`
	Oracle string `toml:"Oracle"`

	DepositWeightInit    string `toml:"DepositWeightInit"`
	DepositWeightMaint   string `toml:"DepositWeightMaint"`
	LiabilityWeightInit  string `toml:"LiabilityWeightInit"`
	LiabilityWeightMaint string `toml:"LiabilityWeightMaint"`

	MaxCapacity string `toml:"MaxCapacity"`

	OperationalState string `toml:"OperationalState"`

	Interest InterestDef `toml:"interest"`
}

// InterestDef carries the rate curve and fee parameters as decimal strings.
type InterestDef struct {
	OptimalUtilizationRate string `toml:"OptimalUtilizationRate"`
	PlateauInterestRate    string `toml:"PlateauInterestRate"`
	MaxInterestRate        string `toml:"MaxInterestRate"`

	InsuranceFeeFixedApr string `toml:"InsuranceFeeFixedApr"`
	InsuranceIrFee       string `toml:"InsuranceIrFee"`
	ProtocolFixedFeeApr  string `toml:"ProtocolFixedFeeApr"`
	ProtocolIrFee        string `toml:"ProtocolIrFee"`
}

// Load reads and validates a module configuration file.
func Load(path string) (*Module, error) {
	cfg := &Module{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads a module configuration from TOML source.
func Parse(data string) (*Module, error) {
	cfg := &Module{}
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the document as a whole, including that every bank
// definition converts into a valid bank configuration.
func (m *Module) Validate() error {
	if _, err := m.Admin(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(m.Banks))
	for i := range m.Banks {
		def := &m.Banks[i]
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return fmt.Errorf("config: bank %d: name required", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("config: duplicate bank name %q", name)
		}
		seen[name] = struct{}{}
		if _, err := def.MintID(); err != nil {
			return err
		}
		if _, err := def.BankConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Admin returns the parsed group admin identity.
func (m *Module) Admin() (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(m.Group.Admin))
	if err != nil {
		return uuid.Nil, fmt.Errorf("config: group admin: %w", err)
	}
	return id, nil
}

// MintID returns the parsed mint identity of the bank definition.
func (d *BankDef) MintID() (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(d.Mint))
	if err != nil {
		return uuid.Nil, fmt.Errorf("config: bank %q mint: %w", d.Name, err)
	}
	return id, nil
}

// BankConfig converts the definition into a validated bank configuration.
func (d *BankDef) BankConfig() (bank.BankConfig, error) {
	cfg := bank.BankConfig{}

	fields := []struct {
		name  string
		value string
		dst   *num.Num
	}{
		{"DepositWeightInit", d.DepositWeightInit, &cfg.DepositWeightInit},
		{"DepositWeightMaint", d.DepositWeightMaint, &cfg.DepositWeightMaint},
		{"LiabilityWeightInit", d.LiabilityWeightInit, &cfg.LiabilityWeightInit},
		{"LiabilityWeightMaint", d.LiabilityWeightMaint, &cfg.LiabilityWeightMaint},
		{"MaxCapacity", d.MaxCapacity, &cfg.MaxCapacity},
		{"interest.OptimalUtilizationRate", d.Interest.OptimalUtilizationRate, &cfg.InterestRateConfig.OptimalUtilizationRate},
		{"interest.PlateauInterestRate", d.Interest.PlateauInterestRate, &cfg.InterestRateConfig.PlateauInterestRate},
		{"interest.MaxInterestRate", d.Interest.MaxInterestRate, &cfg.InterestRateConfig.MaxInterestRate},
		{"interest.InsuranceFeeFixedApr", d.Interest.InsuranceFeeFixedApr, &cfg.InterestRateConfig.InsuranceFeeFixedApr},
		{"interest.InsuranceIrFee", d.Interest.InsuranceIrFee, &cfg.InterestRateConfig.InsuranceIrFee},
		{"interest.ProtocolFixedFeeApr", d.Interest.ProtocolFixedFeeApr, &cfg.InterestRateConfig.ProtocolFixedFeeApr},
		{"interest.ProtocolIrFee", d.Interest.ProtocolIrFee, &cfg.InterestRateConfig.ProtocolIrFee},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		parsed, err := num.Parse(f.value)
		if err != nil {
			return bank.BankConfig{}, fmt.Errorf("config: bank %q %s: %w", d.Name, f.name, err)
		}
		*f.dst = parsed
	}

	if oracle := strings.TrimSpace(d.Oracle); oracle != "" {
		id, err := uuid.Parse(oracle)
		if err != nil {
			return bank.BankConfig{}, fmt.Errorf("config: bank %q oracle: %w", d.Name, err)
		}
		cfg.Oracle = id
	}

	state, err := parseOperationalState(d.OperationalState)
	if err != nil {
		return bank.BankConfig{}, fmt.Errorf("config: bank %q: %w", d.Name, err)
	}
	cfg.OperationalState = state

	if err := cfg.Validate(); err != nil {
		return bank.BankConfig{}, fmt.Errorf("config: bank %q: %w", d.Name, err)
	}
	return cfg, nil
}

func parseOperationalState(value string) (bank.OperationalState, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "operational":
		return bank.StateOperational, nil
	case "paused":
		return bank.StatePaused, nil
	case "reduce-only", "reduceonly":
		return bank.StateReduceOnly, nil
	default:
		return bank.StateOperational, fmt.Errorf("unknown operational state %q", value)
	}
}
