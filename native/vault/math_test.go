package vault

import (
	"math/big"
	"testing"
)

func TestSharesForDeposit(t *testing.T) {
	// Empty vault mints one share per unit.
	got := sharesForDeposit(big.NewInt(1000), big.NewInt(0), big.NewInt(0))
	if got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("first deposit: got %s", got)
	}

	// Assets grew to 2x the share supply, so half as many shares mint.
	got = sharesForDeposit(big.NewInt(1000), big.NewInt(500), big.NewInt(1000))
	if got.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("proportional deposit: got %s", got)
	}

	// Division floors.
	got = sharesForDeposit(big.NewInt(10), big.NewInt(3), big.NewInt(7))
	if got.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("floored deposit: got %s", got)
	}

	if sharesForDeposit(nil, big.NewInt(1), big.NewInt(1)).Sign() != 0 {
		t.Fatalf("nil amount should mint nothing")
	}
}

func TestAssetsForShares(t *testing.T) {
	got := assetsForShares(big.NewInt(500), big.NewInt(1000), big.NewInt(2000))
	if got.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("redeem half: got %s", got)
	}

	got = assetsForShares(big.NewInt(1), big.NewInt(3), big.NewInt(10))
	if got.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("floored redeem: got %s", got)
	}

	if assetsForShares(big.NewInt(1), big.NewInt(0), big.NewInt(10)).Sign() != 0 {
		t.Fatalf("empty vault should redeem nothing")
	}
}

func TestFeeFor(t *testing.T) {
	got := feeFor(big.NewInt(3_000_000), 50)
	if got.Cmp(big.NewInt(15_000)) != 0 {
		t.Fatalf("50 bps fee: got %s", got)
	}

	got = feeFor(big.NewInt(199), 50)
	if got.Sign() != 0 {
		t.Fatalf("sub-unit fee should floor to zero: got %s", got)
	}

	if feeFor(big.NewInt(1000), 0).Sign() != 0 {
		t.Fatalf("zero rate should charge nothing")
	}
}

func TestAccruedYield(t *testing.T) {
	// A full year at 1200 bps yields 12%.
	got := accruedYield(big.NewInt(1_000_000_000), 1200, blocksPerYear)
	if got.Cmp(big.NewInt(120_000_000)) != 0 {
		t.Fatalf("full year accrual: got %s", got)
	}

	// Half a year yields half.
	got = accruedYield(big.NewInt(1_000_000_000), 1200, blocksPerYear/2)
	if got.Cmp(big.NewInt(60_000_000)) != 0 {
		t.Fatalf("half year accrual: got %s", got)
	}

	if accruedYield(big.NewInt(1_000_000), 1200, 0).Sign() != 0 {
		t.Fatalf("zero elapsed should accrue nothing")
	}
	if accruedYield(nil, 1200, 100).Sign() != 0 {
		t.Fatalf("nil principal should accrue nothing")
	}
}
