// Package store persists banks and groups in a key-value database using RLP
// records. Fixed-point fields are stored as their 16-byte bit patterns so the
// round trip is lossless.
package store

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/uuid"

	"marginpool/native/bank"
	"marginpool/num"
	"marginpool/storage"
)

var (
	bankKeyPrefix   = []byte("bank/")
	groupKeyPrefix  = []byte("group/")
	bankIndexPrefix = []byte("bankidx/")
)

type storedBank struct {
	ID      [16]byte
	GroupID [16]byte
	Mint    [16]byte

	DepositShareValue   [16]byte
	LiabilityShareValue [16]byte
	TotalDepositShares  [16]byte
	TotalBorrowShares   [16]byte

	DepositWeightInit    [16]byte
	DepositWeightMaint   [16]byte
	LiabilityWeightInit  [16]byte
	LiabilityWeightMaint [16]byte
	MaxCapacity          [16]byte
	Oracle               [16]byte
	OperationalState     uint8

	OptimalUtilizationRate [16]byte
	PlateauInterestRate    [16]byte
	MaxInterestRate        [16]byte
	InsuranceFeeFixedApr   [16]byte
	InsuranceIrFee         [16]byte
	ProtocolFixedFeeApr    [16]byte
	ProtocolIrFee          [16]byte

	CreatedAt  uint64
	LastUpdate uint64
}

type storedGroup struct {
	ID    [16]byte
	Admin [16]byte
}

type bankIndex struct {
	IDs [][16]byte
}

// Store persists banks and groups in the underlying database.
type Store struct {
	db storage.Database
}

// New constructs a store bound to the provided database.
func New(db storage.Database) *Store {
	return &Store{db: db}
}

func bankKey(id uuid.UUID) []byte {
	return append(append([]byte{}, bankKeyPrefix...), id.String()...)
}

func groupKey(id uuid.UUID) []byte {
	return append(append([]byte{}, groupKeyPrefix...), id.String()...)
}

func bankIndexKey(groupID uuid.UUID) []byte {
	return append(append([]byte{}, bankIndexPrefix...), groupID.String()...)
}

// PutBank writes a bank record and keeps the group index current.
func (s *Store) PutBank(b *bank.Bank) error {
	if b == nil {
		return fmt.Errorf("store: bank must not be nil")
	}
	stored, err := toStoredBank(b)
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	if err := s.db.Put(bankKey(b.ID), encoded); err != nil {
		return err
	}
	return s.indexBank(b.GroupID, b.ID)
}

// GetBank loads a bank record by identity.
func (s *Store) GetBank(id uuid.UUID) (*bank.Bank, error) {
	raw, err := s.db.Get(bankKey(id))
	if err != nil {
		return nil, err
	}
	var stored storedBank
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("store: decode bank %s: %w", id, err)
	}
	return fromStoredBank(&stored)
}

// DeleteBank removes a bank record and its index entry.
func (s *Store) DeleteBank(id uuid.UUID) error {
	b, err := s.GetBank(id)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil
		}
		return err
	}
	if err := s.db.Delete(bankKey(id)); err != nil {
		return err
	}
	return s.unindexBank(b.GroupID, id)
}

// ListBanks returns every bank registered under the group, in index order.
func (s *Store) ListBanks(groupID uuid.UUID) ([]*bank.Bank, error) {
	idx, err := s.loadIndex(groupID)
	if err != nil {
		return nil, err
	}
	banks := make([]*bank.Bank, 0, len(idx.IDs))
	for _, raw := range idx.IDs {
		b, err := s.GetBank(uuid.UUID(raw))
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, nil
}

// PutGroup writes a group record.
func (s *Store) PutGroup(g *bank.Group) error {
	if g == nil {
		return fmt.Errorf("store: group must not be nil")
	}
	stored := storedGroup{ID: g.ID, Admin: g.Admin}
	encoded, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return err
	}
	return s.db.Put(groupKey(g.ID), encoded)
}

// GetGroup loads a group record by identity.
func (s *Store) GetGroup(id uuid.UUID) (*bank.Group, error) {
	raw, err := s.db.Get(groupKey(id))
	if err != nil {
		return nil, err
	}
	var stored storedGroup
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("store: decode group %s: %w", id, err)
	}
	return &bank.Group{ID: stored.ID, Admin: stored.Admin}, nil
}

func (s *Store) loadIndex(groupID uuid.UUID) (bankIndex, error) {
	raw, err := s.db.Get(bankIndexKey(groupID))
	if err != nil {
		if err == storage.ErrNotFound {
			return bankIndex{}, nil
		}
		return bankIndex{}, err
	}
	var idx bankIndex
	if err := rlp.DecodeBytes(raw, &idx); err != nil {
		return bankIndex{}, fmt.Errorf("store: decode bank index %s: %w", groupID, err)
	}
	return idx, nil
}

func (s *Store) storeIndex(groupID uuid.UUID, idx bankIndex) error {
	encoded, err := rlp.EncodeToBytes(idx)
	if err != nil {
		return err
	}
	return s.db.Put(bankIndexKey(groupID), encoded)
}

func (s *Store) indexBank(groupID, bankID uuid.UUID) error {
	idx, err := s.loadIndex(groupID)
	if err != nil {
		return err
	}
	for _, raw := range idx.IDs {
		if raw == [16]byte(bankID) {
			return nil
		}
	}
	idx.IDs = append(idx.IDs, bankID)
	return s.storeIndex(groupID, idx)
}

func (s *Store) unindexBank(groupID, bankID uuid.UUID) error {
	idx, err := s.loadIndex(groupID)
	if err != nil {
		return err
	}
	kept := idx.IDs[:0]
	for _, raw := range idx.IDs {
		if raw != [16]byte(bankID) {
			kept = append(kept, raw)
		}
	}
	idx.IDs = kept
	return s.storeIndex(groupID, idx)
}

func toStoredBank(b *bank.Bank) (*storedBank, error) {
	if b.CreatedAt < 0 || b.LastUpdate < 0 {
		return nil, fmt.Errorf("store: bank %s: negative timestamp", b.ID)
	}
	cfg := &b.Config
	rate := &cfg.InterestRateConfig
	return &storedBank{
		ID:      b.ID,
		GroupID: b.GroupID,
		Mint:    b.Mint,

		DepositShareValue:   b.DepositShareValue.Bytes(),
		LiabilityShareValue: b.LiabilityShareValue.Bytes(),
		TotalDepositShares:  b.TotalDepositShares.Bytes(),
		TotalBorrowShares:   b.TotalBorrowShares.Bytes(),

		DepositWeightInit:    cfg.DepositWeightInit.Bytes(),
		DepositWeightMaint:   cfg.DepositWeightMaint.Bytes(),
		LiabilityWeightInit:  cfg.LiabilityWeightInit.Bytes(),
		LiabilityWeightMaint: cfg.LiabilityWeightMaint.Bytes(),
		MaxCapacity:          cfg.MaxCapacity.Bytes(),
		Oracle:               cfg.Oracle,
		OperationalState:     uint8(cfg.OperationalState),

		OptimalUtilizationRate: rate.OptimalUtilizationRate.Bytes(),
		PlateauInterestRate:    rate.PlateauInterestRate.Bytes(),
		MaxInterestRate:        rate.MaxInterestRate.Bytes(),
		InsuranceFeeFixedApr:   rate.InsuranceFeeFixedApr.Bytes(),
		InsuranceIrFee:         rate.InsuranceIrFee.Bytes(),
		ProtocolFixedFeeApr:    rate.ProtocolFixedFeeApr.Bytes(),
		ProtocolIrFee:          rate.ProtocolIrFee.Bytes(),

		CreatedAt:  uint64(b.CreatedAt),
		LastUpdate: uint64(b.LastUpdate),
	}, nil
}

func fromStoredBank(stored *storedBank) (*bank.Bank, error) {
	const maxInt64 = uint64(1)<<63 - 1
	if stored.CreatedAt > maxInt64 || stored.LastUpdate > maxInt64 {
		return nil, fmt.Errorf("store: timestamp overflow")
	}
	b := &bank.Bank{
		ID:      stored.ID,
		GroupID: stored.GroupID,
		Mint:    stored.Mint,

		DepositShareValue:   num.FromBytes(stored.DepositShareValue),
		LiabilityShareValue: num.FromBytes(stored.LiabilityShareValue),
		TotalDepositShares:  num.FromBytes(stored.TotalDepositShares),
		TotalBorrowShares:   num.FromBytes(stored.TotalBorrowShares),

		CreatedAt:  int64(stored.CreatedAt),
		LastUpdate: int64(stored.LastUpdate),
	}
	b.Config = bank.BankConfig{
		DepositWeightInit:    num.FromBytes(stored.DepositWeightInit),
		DepositWeightMaint:   num.FromBytes(stored.DepositWeightMaint),
		LiabilityWeightInit:  num.FromBytes(stored.LiabilityWeightInit),
		LiabilityWeightMaint: num.FromBytes(stored.LiabilityWeightMaint),
		MaxCapacity:          num.FromBytes(stored.MaxCapacity),
		Oracle:               stored.Oracle,
		OperationalState:     bank.OperationalState(stored.OperationalState),
		InterestRateConfig: bank.InterestRateConfig{
			OptimalUtilizationRate: num.FromBytes(stored.OptimalUtilizationRate),
			PlateauInterestRate:    num.FromBytes(stored.PlateauInterestRate),
			MaxInterestRate:        num.FromBytes(stored.MaxInterestRate),
			InsuranceFeeFixedApr:   num.FromBytes(stored.InsuranceFeeFixedApr),
			InsuranceIrFee:         num.FromBytes(stored.InsuranceIrFee),
			ProtocolFixedFeeApr:    num.FromBytes(stored.ProtocolFixedFeeApr),
			ProtocolIrFee:          num.FromBytes(stored.ProtocolIrFee),
		},
	}
	return b, nil
}
