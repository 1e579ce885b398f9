package vault

import (
	"math/big"
	"testing"
)

func TestSetPlatformFeeEnforcesCap(t *testing.T) {
	engine, state, owner := newTestEngine(t)
	outsider := makeAddress(0x02)

	applied, err := engine.SetPlatformFee(owner, MaxFeeRateBps)
	if err != nil {
		t.Fatalf("set fee at cap: %v", err)
	}
	if applied != MaxFeeRateBps || state.platform.FeeRateBps != MaxFeeRateBps {
		t.Fatalf("fee not applied: %d", state.platform.FeeRateBps)
	}

	_, err = engine.SetPlatformFee(owner, MaxFeeRateBps+1)
	requireCode(t, err, CodeInvalidAmount)
	if state.platform.FeeRateBps != MaxFeeRateBps {
		t.Fatalf("rejected fee mutated state: %d", state.platform.FeeRateBps)
	}

	_, err = engine.SetPlatformFee(outsider, 100)
	requireCode(t, err, CodeNotAuthorized)
}

func TestAddAdminOwnerOnly(t *testing.T) {
	engine, state, owner := newTestEngine(t)
	admin := makeAddress(0x02)
	other := makeAddress(0x03)

	added, err := engine.AddAdmin(owner, admin)
	if err != nil || !added {
		t.Fatalf("add admin: ok=%v err=%v", added, err)
	}
	isAdmin, err := engine.IsAdmin(admin)
	if err != nil || !isAdmin {
		t.Fatalf("admin not recognised: ok=%v err=%v", isAdmin, err)
	}

	// Granted admins hold admin authority but cannot grant it onwards.
	_, err = engine.AddAdmin(admin, other)
	requireCode(t, err, CodeNotAuthorized)

	added, err = engine.AddAdmin(owner, admin)
	if err != nil || !added {
		t.Fatalf("duplicate add admin: ok=%v err=%v", added, err)
	}
	if len(state.platform.Admins) != 1 {
		t.Fatalf("duplicate admin stored: %d entries", len(state.platform.Admins))
	}
}

func TestGrantedAdminCanOperate(t *testing.T) {
	engine, _, owner := newTestEngine(t)
	admin := makeAddress(0x02)

	if _, err := engine.AddAdmin(owner, admin); err != nil {
		t.Fatalf("add admin: %v", err)
	}
	if _, err := engine.CreateVault(admin, "Admin-Vault", 1, big.NewInt(0)); err != nil {
		t.Fatalf("granted admin should create vaults: %v", err)
	}
	if _, err := engine.SetPlatformFee(admin, 100); err != nil {
		t.Fatalf("granted admin should set fees: %v", err)
	}
}

func TestTogglePauseReturnsNewValue(t *testing.T) {
	engine, _, owner := newTestEngine(t)
	outsider := makeAddress(0x02)

	paused, err := engine.ToggleEmergencyPause(owner)
	if err != nil {
		t.Fatalf("toggle pause: %v", err)
	}
	if !paused {
		t.Fatalf("first toggle should pause")
	}

	paused, err = engine.ToggleEmergencyPause(owner)
	if err != nil {
		t.Fatalf("toggle pause: %v", err)
	}
	if paused {
		t.Fatalf("second toggle should resume")
	}

	_, err = engine.ToggleEmergencyPause(outsider)
	requireCode(t, err, CodeNotAuthorized)
}

func TestPlatformStatsReflectsState(t *testing.T) {
	engine, _, owner := newTestEngine(t)
	user := makeAddress(0x02)

	stats, err := engine.PlatformStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVaults != 0 || stats.TotalStrategies != 3 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.PlatformFeeBps != DefaultFeeRateBps || stats.EmergencyPause {
		t.Fatalf("unexpected defaults: %+v", stats)
	}
	if stats.TotalValueLocked.Sign() != 0 {
		t.Fatalf("unexpected TVL: %s", stats.TotalValueLocked)
	}

	vaultID, err := engine.CreateVault(owner, "Conservative", 1, big.NewInt(0))
	if err != nil {
		t.Fatalf("create vault: %v", err)
	}
	state := engine.state.(*mockEngineState)
	state.fund(user, 1_000_000)
	if _, err := engine.Deposit(user, vaultID, big.NewInt(1_000_000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	stats, err = engine.PlatformStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVaults != 1 {
		t.Fatalf("unexpected vault count: %d", stats.TotalVaults)
	}
	if stats.TotalValueLocked.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("unexpected TVL: %s", stats.TotalValueLocked)
	}
}
