package state

import (
	"yieldstacks/core/types"
	"yieldstacks/crypto"
	"yieldstacks/native/vault"
)

// The accessors below satisfy the vault engine's state interface.

// PlatformGet returns the singleton platform config, nil when the state has
// not been bootstrapped yet.
func (m *Manager) PlatformGet() (*vault.PlatformConfig, error) {
	cfg := new(vault.PlatformConfig)
	ok, err := m.load(hashKey(platformKeyBytes), cfg)
	if err != nil || !ok {
		return nil, err
	}
	return cfg, nil
}

// PlatformPut persists the singleton platform config.
func (m *Manager) PlatformPut(cfg *vault.PlatformConfig) error {
	return m.store(hashKey(platformKeyBytes), cfg)
}

// StrategyGet returns the strategy record for id.
func (m *Manager) StrategyGet(id uint64) (*vault.Strategy, bool, error) {
	s := new(vault.Strategy)
	ok, err := m.load(hashKey(strategyPrefix, idBytes(id)), s)
	if err != nil || !ok {
		return nil, false, err
	}
	return s, true, nil
}

// StrategyPut persists a strategy record and indexes its id.
func (m *Manager) StrategyPut(s *vault.Strategy) error {
	ids, err := m.StrategyIDs()
	if err != nil {
		return err
	}
	found := false
	for _, existing := range ids {
		if existing == s.ID {
			found = true
			break
		}
	}
	if !found {
		ids = append(ids, s.ID)
		if err := m.store(hashKey(strategyListBytes), ids); err != nil {
			return err
		}
	}
	return m.store(hashKey(strategyPrefix, idBytes(s.ID)), s)
}

// StrategyIDs lists the registered strategy ids in insertion order, which is
// ascending because ids are assigned sequentially.
func (m *Manager) StrategyIDs() ([]uint64, error) {
	var ids []uint64
	ok, err := m.load(hashKey(strategyListBytes), &ids)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []uint64{}, nil
	}
	return ids, nil
}

// VaultGet returns the vault record for id.
func (m *Manager) VaultGet(id uint64) (*vault.Vault, bool, error) {
	v := new(vault.Vault)
	ok, err := m.load(hashKey(vaultPrefix, idBytes(id)), v)
	if err != nil || !ok {
		return nil, false, err
	}
	return v, true, nil
}

// VaultPut persists a vault record.
func (m *Manager) VaultPut(v *vault.Vault) error {
	return m.store(hashKey(vaultPrefix, idBytes(v.ID)), v)
}

// PositionGet returns the position record for (vault, principal).
func (m *Manager) PositionGet(vaultID uint64, addr crypto.Address) (*vault.UserPosition, bool, error) {
	p := new(vault.UserPosition)
	ok, err := m.load(hashKey(positionPrefix, idBytes(vaultID), addr.Bytes()), p)
	if err != nil || !ok {
		return nil, false, err
	}
	return p, true, nil
}

// PositionPut persists a position record.
func (m *Manager) PositionPut(vaultID uint64, addr crypto.Address, p *vault.UserPosition) error {
	return m.store(hashKey(positionPrefix, idBytes(vaultID), addr.Bytes()), p)
}

// PositionDelete removes a position record. Positions are deleted rather
// than kept as zero rows when fully withdrawn.
func (m *Manager) PositionDelete(vaultID uint64, addr crypto.Address) error {
	return m.db.Delete(hashKey(positionPrefix, idBytes(vaultID), addr.Bytes()))
}

// UserVaultsGet lists the vault ids a principal has deposited into.
func (m *Manager) UserVaultsGet(addr crypto.Address) ([]uint64, error) {
	var ids []uint64
	ok, err := m.load(hashKey(userVaultsPrefix, addr.Bytes()), &ids)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []uint64{}, nil
	}
	return ids, nil
}

// UserVaultsPut persists a principal's vault id list.
func (m *Manager) UserVaultsPut(addr crypto.Address, ids []uint64) error {
	return m.store(hashKey(userVaultsPrefix, addr.Bytes()), ids)
}

// GetAccount returns the token account for a principal, nil when the
// principal has never held a balance.
func (m *Manager) GetAccount(addr crypto.Address) (*types.Account, error) {
	acc := new(types.Account)
	ok, err := m.load(hashKey(accountPrefix, addr.Bytes()), acc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return acc, nil
}

// PutAccount persists the token account for a principal.
func (m *Manager) PutAccount(addr crypto.Address, acc *types.Account) error {
	return m.store(hashKey(accountPrefix, addr.Bytes()), acc)
}
