package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"yieldstacks/core/types"
	"yieldstacks/crypto"
	"yieldstacks/native/vault"
	"yieldstacks/storage"
)

func testAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[len(raw)-1] = suffix
	return crypto.NewAddress(crypto.STXPrefix, raw)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func TestPlatformConfigRoundTrip(t *testing.T) {
	manager := newTestManager(t)

	cfg, err := manager.PlatformGet()
	require.NoError(t, err)
	require.Nil(t, cfg)

	owner := testAddress(0x01)
	stored := &vault.PlatformConfig{
		Owner:            owner.Bytes(),
		Admins:           [][]byte{testAddress(0x02).Bytes()},
		FeeRateBps:       50,
		EmergencyPause:   true,
		Treasury:         owner.Bytes(),
		TotalVaults:      2,
		TotalStrategies:  3,
		TotalValueLocked: big.NewInt(12_345),
	}
	require.NoError(t, manager.PlatformPut(stored))

	loaded, err := manager.PlatformGet()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, stored.Owner, loaded.Owner)
	require.Equal(t, stored.Admins, loaded.Admins)
	require.Equal(t, uint64(50), loaded.FeeRateBps)
	require.True(t, loaded.EmergencyPause)
	require.Equal(t, uint64(2), loaded.TotalVaults)
	require.Zero(t, loaded.TotalValueLocked.Cmp(big.NewInt(12_345)))
}

func TestStrategyIndexTracksIDs(t *testing.T) {
	manager := newTestManager(t)

	ids, err := manager.StrategyIDs()
	require.NoError(t, err)
	require.Empty(t, ids)

	for id := uint64(1); id <= 3; id++ {
		require.NoError(t, manager.StrategyPut(&vault.Strategy{
			ID:              id,
			Name:            "Strategy",
			Protocol:        "proto",
			APYBps:          id * 100,
			TVLCapacity:     big.NewInt(1_000),
			CurrentTVL:      big.NewInt(0),
			RiskScore:       id,
			Active:          true,
			ContractAddress: testAddress(byte(id)).Bytes(),
		}))
	}

	ids, err = manager.StrategyIDs()
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, ids)

	// Re-writing an existing strategy must not duplicate its index entry.
	require.NoError(t, manager.StrategyPut(&vault.Strategy{
		ID:              2,
		TVLCapacity:     big.NewInt(2_000),
		CurrentTVL:      big.NewInt(0),
		ContractAddress: testAddress(0x02).Bytes(),
	}))
	ids, err = manager.StrategyIDs()
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, ids)

	s, ok, err := manager.StrategyGet(2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, s.TVLCapacity.Cmp(big.NewInt(2_000)))

	_, ok, err = manager.StrategyGet(42)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVaultRoundTrip(t *testing.T) {
	manager := newTestManager(t)

	_, ok, err := manager.VaultGet(1)
	require.NoError(t, err)
	require.False(t, ok)

	stored := &vault.Vault{
		ID:          1,
		Name:        "Conservative",
		Asset:       "stx-token",
		TotalShares: big.NewInt(1_000_000),
		TotalAssets: big.NewInt(1_080_000),
		StrategyID:  2,
		RiskLevel:   1,
		MinDeposit:  big.NewInt(1_000),
		Active:      true,
		CreatedAt:   10,
		LastHarvest: 20,
	}
	require.NoError(t, manager.VaultPut(stored))

	loaded, ok, err := manager.VaultGet(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, stored.Name, loaded.Name)
	require.Equal(t, stored.StrategyID, loaded.StrategyID)
	require.Zero(t, loaded.TotalShares.Cmp(stored.TotalShares))
	require.Zero(t, loaded.TotalAssets.Cmp(stored.TotalAssets))
	require.Equal(t, uint64(20), loaded.LastHarvest)
}

func TestPositionLifecycle(t *testing.T) {
	manager := newTestManager(t)
	user := testAddress(0x05)

	_, ok, err := manager.PositionGet(1, user)
	require.NoError(t, err)
	require.False(t, ok)

	stored := &vault.UserPosition{
		Shares:         big.NewInt(500),
		DepositedAt:    7,
		LastCompound:   9,
		TotalDeposited: big.NewInt(500),
		TotalWithdrawn: big.NewInt(0),
	}
	require.NoError(t, manager.PositionPut(1, user, stored))

	loaded, ok, err := manager.PositionGet(1, user)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, loaded.Shares.Cmp(big.NewInt(500)))
	require.Equal(t, uint64(7), loaded.DepositedAt)

	// The same principal in another vault is a distinct record.
	_, ok, err = manager.PositionGet(2, user)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, manager.PositionDelete(1, user))
	_, ok, err = manager.PositionGet(1, user)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserVaultList(t *testing.T) {
	manager := newTestManager(t)
	user := testAddress(0x06)

	ids, err := manager.UserVaultsGet(user)
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, manager.UserVaultsPut(user, []uint64{1, 3}))
	ids, err = manager.UserVaultsGet(user)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 3}, ids)
}

func TestAccountRoundTrip(t *testing.T) {
	manager := newTestManager(t)
	user := testAddress(0x07)

	acc, err := manager.GetAccount(user)
	require.NoError(t, err)
	require.Nil(t, acc)

	require.NoError(t, manager.PutAccount(user, &types.Account{
		Nonce:      3,
		BalanceSTX: big.NewInt(1_000_000),
	}))

	loaded, err := manager.GetAccount(user)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, uint64(3), loaded.Nonce)
	require.Zero(t, loaded.BalanceSTX.Cmp(big.NewInt(1_000_000)))
}
