package vault

import "math/big"

var basisPoints = big.NewInt(10_000)

// blocksPerYear matches the ~10 minute cadence of the host chain.
const blocksPerYear = 52_560

// sharesForDeposit converts a deposited amount into minted shares. The first
// deposit into an empty vault mints 1:1; afterwards the standard
// proportional-ownership formula floor(amount * totalShares / totalAssets)
// keeps existing holders' per-share value unchanged.
func sharesForDeposit(amount, totalShares, totalAssets *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	if totalShares == nil || totalShares.Sign() == 0 || totalAssets == nil || totalAssets.Sign() == 0 {
		return new(big.Int).Set(amount)
	}
	minted := new(big.Int).Mul(amount, totalShares)
	return minted.Quo(minted, totalAssets)
}

// assetsForShares converts a share amount into its current redeemable asset
// value, floor(shares * totalAssets / totalShares).
func assetsForShares(shares, totalShares, totalAssets *big.Int) *big.Int {
	if shares == nil || shares.Sign() <= 0 || totalShares == nil || totalShares.Sign() == 0 {
		return big.NewInt(0)
	}
	value := new(big.Int).Mul(shares, totalAssets)
	return value.Quo(value, totalShares)
}

// feeFor computes the platform fee on a gross withdrawal amount,
// floor(gross * feeBps / 10000).
func feeFor(gross *big.Int, feeBps uint64) *big.Int {
	if gross == nil || gross.Sign() <= 0 || feeBps == 0 {
		return big.NewInt(0)
	}
	fee := new(big.Int).Mul(gross, new(big.Int).SetUint64(feeBps))
	return fee.Quo(fee, basisPoints)
}

// accruedYield computes the simulated yield earned by totalAssets at apyBps
// over elapsed blocks using simple linear accrual,
// floor(totalAssets * apyBps * elapsed / (10000 * blocksPerYear)).
func accruedYield(totalAssets *big.Int, apyBps uint64, elapsed uint64) *big.Int {
	if totalAssets == nil || totalAssets.Sign() <= 0 || apyBps == 0 || elapsed == 0 {
		return big.NewInt(0)
	}
	yield := new(big.Int).Mul(totalAssets, new(big.Int).SetUint64(apyBps))
	yield.Mul(yield, new(big.Int).SetUint64(elapsed))
	denom := new(big.Int).Mul(basisPoints, big.NewInt(blocksPerYear))
	return yield.Quo(yield, denom)
}
