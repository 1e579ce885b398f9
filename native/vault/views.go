package vault

import (
	"math/big"

	"yieldstacks/crypto"
)

// VaultInfo returns the vault record, or ok=false when absent.
func (e *Engine) VaultInfo(id uint64) (*Vault, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	v, ok, err := e.state.VaultGet(id)
	if err != nil || !ok {
		return nil, false, err
	}
	v.normalize()
	return v, true, nil
}

// StrategyInfo returns the strategy record, or ok=false when absent.
func (e *Engine) StrategyInfo(id uint64) (*Strategy, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	s, ok, err := e.state.StrategyGet(id)
	if err != nil || !ok {
		return nil, false, err
	}
	s.normalize()
	return s, true, nil
}

// UserPosition returns the principal's position in a vault, or ok=false when
// the principal holds no shares there.
func (e *Engine) UserPosition(vaultID uint64, addr crypto.Address) (*UserPosition, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	p, ok, err := e.state.PositionGet(vaultID, addr)
	if err != nil || !ok {
		return nil, false, err
	}
	p.normalize()
	return p, true, nil
}

// UserVaults lists the vault ids the principal has ever deposited into.
func (e *Engine) UserVaults(addr crypto.Address) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	ids, err := e.state.UserVaultsGet(addr)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return ids, nil
}

// UserVaultValue returns the current redeemable asset value of a principal's
// position, zero when they hold no shares.
func (e *Engine) UserVaultValue(vaultID uint64, addr crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	v, ok, err := e.state.VaultGet(vaultID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	v.normalize()
	p, ok, err := e.state.PositionGet(vaultID, addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	p.normalize()
	return assetsForShares(p.Shares, v.TotalShares, v.TotalAssets), nil
}
