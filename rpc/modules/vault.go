package modules

import (
	"math/big"
	"net/http"

	"yieldstacks/core"
	"yieldstacks/crypto"
	"yieldstacks/native/vault"
)

// VaultModule exposes the vault ledger's operations to the RPC layer. Every
// method serialises through the node, so callers never touch the engine or
// state manager directly.
type VaultModule struct {
	node *core.Node
}

func NewVaultModule(node *core.Node) *VaultModule {
	return &VaultModule{node: node}
}

func (m *VaultModule) moduleUnavailable() *ModuleError {
	return &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "vault module not available"}
}

// wrapError translates an engine failure into a transport error. Coded engine
// errors are client faults and carry their stable numeric code in Data.
func (m *VaultModule) wrapError(err error) *ModuleError {
	if err == nil {
		return nil
	}
	status := http.StatusInternalServerError
	rpcCode := codeServerError
	var data interface{}
	if code, ok := vault.ErrorCode(err); ok {
		status = http.StatusBadRequest
		rpcCode = codeInvalidParams
		data = code
	}
	return &ModuleError{HTTPStatus: status, Code: rpcCode, Message: err.Error(), Data: data}
}

func (m *VaultModule) CreateVault(caller crypto.Address, name string, riskLevel uint64, minDeposit *big.Int) (uint64, *ModuleError) {
	if m == nil || m.node == nil {
		return 0, m.moduleUnavailable()
	}
	id, err := m.node.CreateVault(caller, name, riskLevel, minDeposit)
	if err != nil {
		return 0, m.wrapError(err)
	}
	return id, nil
}

func (m *VaultModule) Deposit(caller crypto.Address, vaultID uint64, amount *big.Int) (*big.Int, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	shares, err := m.node.Deposit(caller, vaultID, amount)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return shares, nil
}

func (m *VaultModule) Withdraw(caller crypto.Address, vaultID uint64, shares *big.Int) (*big.Int, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	net, err := m.node.Withdraw(caller, vaultID, shares)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return net, nil
}

func (m *VaultModule) Harvest(caller crypto.Address, vaultID uint64) (bool, *ModuleError) {
	if m == nil || m.node == nil {
		return false, m.moduleUnavailable()
	}
	ok, err := m.node.HarvestVault(caller, vaultID)
	if err != nil {
		return false, m.wrapError(err)
	}
	return ok, nil
}

func (m *VaultModule) Rebalance(caller crypto.Address, vaultID, strategyID uint64) (bool, *ModuleError) {
	if m == nil || m.node == nil {
		return false, m.moduleUnavailable()
	}
	ok, err := m.node.RebalanceVault(caller, vaultID, strategyID)
	if err != nil {
		return false, m.wrapError(err)
	}
	return ok, nil
}

func (m *VaultModule) AddStrategy(caller crypto.Address, name, protocol string, apyBps uint64, capacity *big.Int, riskScore uint64, contract crypto.Address) (uint64, *ModuleError) {
	if m == nil || m.node == nil {
		return 0, m.moduleUnavailable()
	}
	id, err := m.node.AddStrategy(caller, name, protocol, apyBps, capacity, riskScore, contract)
	if err != nil {
		return 0, m.wrapError(err)
	}
	return id, nil
}

func (m *VaultModule) UpdateStrategyAPY(caller crypto.Address, id, apyBps uint64) (uint64, *ModuleError) {
	if m == nil || m.node == nil {
		return 0, m.moduleUnavailable()
	}
	updated, err := m.node.UpdateStrategyAPY(caller, id, apyBps)
	if err != nil {
		return 0, m.wrapError(err)
	}
	return updated, nil
}

func (m *VaultModule) SetPlatformFee(caller crypto.Address, rateBps uint64) (uint64, *ModuleError) {
	if m == nil || m.node == nil {
		return 0, m.moduleUnavailable()
	}
	applied, err := m.node.SetPlatformFee(caller, rateBps)
	if err != nil {
		return 0, m.wrapError(err)
	}
	return applied, nil
}

func (m *VaultModule) AddAdmin(caller, admin crypto.Address) (bool, *ModuleError) {
	if m == nil || m.node == nil {
		return false, m.moduleUnavailable()
	}
	ok, err := m.node.AddAdmin(caller, admin)
	if err != nil {
		return false, m.wrapError(err)
	}
	return ok, nil
}

func (m *VaultModule) ToggleEmergencyPause(caller crypto.Address) (bool, *ModuleError) {
	if m == nil || m.node == nil {
		return false, m.moduleUnavailable()
	}
	paused, err := m.node.ToggleEmergencyPause(caller)
	if err != nil {
		return false, m.wrapError(err)
	}
	return paused, nil
}

func (m *VaultModule) GetVault(id uint64) (*vault.Vault, bool, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, false, m.moduleUnavailable()
	}
	v, ok, err := m.node.VaultInfo(id)
	if err != nil {
		return nil, false, m.wrapError(err)
	}
	return v, ok, nil
}

func (m *VaultModule) GetStrategy(id uint64) (*vault.Strategy, bool, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, false, m.moduleUnavailable()
	}
	s, ok, err := m.node.StrategyInfo(id)
	if err != nil {
		return nil, false, m.wrapError(err)
	}
	return s, ok, nil
}

func (m *VaultModule) GetPosition(vaultID uint64, addr crypto.Address) (*vault.UserPosition, bool, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, false, m.moduleUnavailable()
	}
	pos, ok, err := m.node.UserPosition(vaultID, addr)
	if err != nil {
		return nil, false, m.wrapError(err)
	}
	return pos, ok, nil
}

func (m *VaultModule) GetUserVaults(addr crypto.Address) ([]uint64, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	ids, err := m.node.UserVaults(addr)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return ids, nil
}

func (m *VaultModule) GetUserValue(vaultID uint64, addr crypto.Address) (*big.Int, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	value, err := m.node.UserVaultValue(vaultID, addr)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return value, nil
}

func (m *VaultModule) PlatformStats() (*vault.PlatformStats, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	stats, err := m.node.PlatformStats()
	if err != nil {
		return nil, m.wrapError(err)
	}
	return stats, nil
}

func (m *VaultModule) BestAPY() (uint64, *ModuleError) {
	if m == nil || m.node == nil {
		return 0, m.moduleUnavailable()
	}
	id, err := m.node.BestAPY()
	if err != nil {
		return 0, m.wrapError(err)
	}
	return id, nil
}

func (m *VaultModule) IsAdmin(addr crypto.Address) (bool, *ModuleError) {
	if m == nil || m.node == nil {
		return false, m.moduleUnavailable()
	}
	ok, err := m.node.IsUserAdmin(addr)
	if err != nil {
		return false, m.wrapError(err)
	}
	return ok, nil
}

func (m *VaultModule) Balance(addr crypto.Address) (*big.Int, *ModuleError) {
	if m == nil || m.node == nil {
		return nil, m.moduleUnavailable()
	}
	balance, err := m.node.Balance(addr)
	if err != nil {
		return nil, m.wrapError(err)
	}
	return balance, nil
}
