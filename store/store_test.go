package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"marginpool/native/bank"
	"marginpool/num"
	"marginpool/storage"
)

func testRateConfig(t *testing.T) bank.InterestRateConfig {
	t.Helper()
	return bank.InterestRateConfig{
		OptimalUtilizationRate: num.MustParse("0.5"),
		PlateauInterestRate:    num.MustParse("0.4"),
		MaxInterestRate:        num.MustParse("3"),
		InsuranceFeeFixedApr:   num.MustParse("0.005"),
		InsuranceIrFee:         num.MustParse("0.05"),
		ProtocolFixedFeeApr:    num.MustParse("0.015"),
		ProtocolIrFee:          num.MustParse("0.01"),
	}
}

func testBank(t *testing.T, groupID uuid.UUID) *bank.Bank {
	t.Helper()
	cfg := bank.BankConfig{
		DepositWeightInit:    num.MustParse("0.9"),
		DepositWeightMaint:   num.MustParse("0.95"),
		LiabilityWeightInit:  num.MustParse("1.2"),
		LiabilityWeightMaint: num.MustParse("1.1"),
		MaxCapacity:          num.FromUint64(1_000_000),
		Oracle:               uuid.New(),
		OperationalState:     bank.StateOperational,
		InterestRateConfig:   testRateConfig(t),
	}
	b, err := bank.NewBank(groupID, uuid.New(), cfg, 1_700_000_000)
	require.NoError(t, err)
	return b
}

func TestBankRoundTrip(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	s := New(db)

	groupID := uuid.New()
	b := testBank(t, groupID)
	require.NoError(t, b.ChangeDepositShares(num.FromUint64(1000)))
	require.NoError(t, b.ChangeLiabilityShares(num.FromUint64(500)))

	require.NoError(t, s.PutBank(b))

	got, err := s.GetBank(b.ID)
	require.NoError(t, err)
	require.Equal(t, b.ID, got.ID)
	require.Equal(t, b.GroupID, got.GroupID)
	require.Equal(t, b.Mint, got.Mint)
	require.True(t, b.DepositShareValue.Equal(got.DepositShareValue))
	require.True(t, b.LiabilityShareValue.Equal(got.LiabilityShareValue))
	require.True(t, b.TotalDepositShares.Equal(got.TotalDepositShares))
	require.True(t, b.TotalBorrowShares.Equal(got.TotalBorrowShares))
	require.Equal(t, b.Config.Oracle, got.Config.Oracle)
	require.Equal(t, b.Config.OperationalState, got.Config.OperationalState)
	require.True(t, b.Config.MaxCapacity.Equal(got.Config.MaxCapacity))
	require.True(t, b.Config.InterestRateConfig.MaxInterestRate.Equal(got.Config.InterestRateConfig.MaxInterestRate))
	require.Equal(t, b.CreatedAt, got.CreatedAt)
	require.Equal(t, b.LastUpdate, got.LastUpdate)
}

func TestBankRoundTripAfterAccrual(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	s := New(db)

	b := testBank(t, uuid.New())
	require.NoError(t, b.ChangeDepositShares(num.FromUint64(1000)))
	require.NoError(t, b.ChangeLiabilityShares(num.FromUint64(500)))
	_, _, err := b.AccrueInterest(nil, b.LastUpdate+3600)
	require.NoError(t, err)

	require.NoError(t, s.PutBank(b))
	got, err := s.GetBank(b.ID)
	require.NoError(t, err)

	// Fractional share values must survive the round trip bit for bit.
	require.True(t, b.DepositShareValue.Equal(got.DepositShareValue))
	require.True(t, b.LiabilityShareValue.Equal(got.LiabilityShareValue))
	require.Equal(t, b.LastUpdate, got.LastUpdate)
}

func TestGetBankMissing(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	s := New(db)

	_, err := s.GetBank(uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListBanksByGroup(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	s := New(db)

	groupID := uuid.New()
	otherGroup := uuid.New()
	b1 := testBank(t, groupID)
	b2 := testBank(t, groupID)
	b3 := testBank(t, otherGroup)
	require.NoError(t, s.PutBank(b1))
	require.NoError(t, s.PutBank(b2))
	require.NoError(t, s.PutBank(b3))

	banks, err := s.ListBanks(groupID)
	require.NoError(t, err)
	require.Len(t, banks, 2)
	require.Equal(t, b1.ID, banks[0].ID)
	require.Equal(t, b2.ID, banks[1].ID)

	// Rewriting an existing bank must not duplicate the index entry.
	require.NoError(t, s.PutBank(b1))
	banks, err = s.ListBanks(groupID)
	require.NoError(t, err)
	require.Len(t, banks, 2)
}

func TestDeleteBank(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	s := New(db)

	groupID := uuid.New()
	b := testBank(t, groupID)
	require.NoError(t, s.PutBank(b))
	require.NoError(t, s.DeleteBank(b.ID))

	_, err := s.GetBank(b.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	banks, err := s.ListBanks(groupID)
	require.NoError(t, err)
	require.Empty(t, banks)

	// Deleting a missing bank is a no-op.
	require.NoError(t, s.DeleteBank(b.ID))
}

func TestGroupRoundTrip(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	s := New(db)

	g := bank.NewGroup(uuid.New())
	require.NoError(t, s.PutGroup(g))

	got, err := s.GetGroup(g.ID)
	require.NoError(t, err)
	require.Equal(t, g.ID, got.ID)
	require.Equal(t, g.Admin, got.Admin)

	_, err = s.GetGroup(uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}
