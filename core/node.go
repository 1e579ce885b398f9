package core

import (
	"math/big"
	"sync"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"yieldstacks/core/events"
	"yieldstacks/core/state"
	"yieldstacks/core/types"
	"yieldstacks/crypto"
	"yieldstacks/native/vault"
	"yieldstacks/observability"
	"yieldstacks/storage"
)

// ModuleAddress is the custody account holding all pooled vault deposits.
// It is derived deterministically so every node agrees on it.
var ModuleAddress = crypto.NewAddress(crypto.STXPrefix, ethcrypto.Keccak256([]byte("yieldstacks/vault-module"))[12:])

// Node owns the ledger state and serialises every mutating operation. Each
// call runs to completion under the write lock before the next is admitted,
// so engine operations never observe half-applied state.
type Node struct {
	mu     sync.RWMutex
	db     storage.Database
	state  *state.Manager
	engine *vault.Engine
	height uint64
	fresh  bool
}

// NewNode wires the state manager and vault engine over the provided
// database and bootstraps genesis data when the state is empty.
func NewNode(db storage.Database, owner crypto.Address) (*Node, error) {
	manager := state.NewManager(db)
	engine := vault.NewEngine(ModuleAddress)
	engine.SetState(manager)

	existing, err := manager.PlatformGet()
	if err != nil {
		return nil, err
	}

	n := &Node{
		db:     db,
		state:  manager,
		engine: engine,
		fresh:  existing == nil,
	}
	engine.SetBlockHeight(n.height)
	if err := engine.Bootstrap(owner); err != nil {
		return nil, err
	}
	return n, nil
}

// FreshGenesis reports whether this node initialised an empty ledger on
// startup. Genesis allocations are only applied when it returns true.
func (n *Node) FreshGenesis() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.fresh
}

// SetEmitter wires an event emitter into the engine.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetEmitter(emitter)
}

// GetHeight returns the current block height.
func (n *Node) GetHeight() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.height
}

// SetHeight moves the block height forward. Heights never move backwards.
func (n *Node) SetHeight(height uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if height > n.height {
		n.height = height
	}
}

// AdvanceHeight increments the block height by delta and returns the new
// value.
func (n *Node) AdvanceHeight(delta uint64) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.height += delta
	return n.height
}

// Credit adds balance to a principal's token account. Used for genesis
// allocations and faucet tooling; not part of the ledger surface.
func (n *Node) Credit(addr crypto.Address, amount *big.Int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	acc, err := n.state.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc == nil {
		acc = &types.Account{BalanceSTX: big.NewInt(0)}
	}
	if acc.BalanceSTX == nil {
		acc.BalanceSTX = big.NewInt(0)
	}
	acc.BalanceSTX = new(big.Int).Add(acc.BalanceSTX, amount)
	return n.state.PutAccount(addr, acc)
}

// Balance returns a principal's token balance.
func (n *Node) Balance(addr crypto.Address) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	acc, err := n.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.BalanceSTX == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(acc.BalanceSTX), nil
}

// --- Mutating ledger operations ---

func (n *Node) CreateVault(caller crypto.Address, name string, riskLevel uint64, minDeposit *big.Int) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	id, err := n.engine.CreateVault(caller, name, riskLevel, minDeposit)
	if err == nil {
		observability.Vaults().RecordVaultCreated()
	}
	return id, err
}

func (n *Node) Deposit(caller crypto.Address, vaultID uint64, amount *big.Int) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	minted, err := n.engine.Deposit(caller, vaultID, amount)
	if err == nil {
		observability.Vaults().RecordDeposit(amount)
		n.refreshTVLGauge()
	}
	return minted, err
}

func (n *Node) Withdraw(caller crypto.Address, vaultID uint64, shares *big.Int) (*big.Int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	net, err := n.engine.Withdraw(caller, vaultID, shares)
	if err == nil {
		observability.Vaults().RecordWithdrawal(net)
		n.refreshTVLGauge()
	}
	return net, err
}

func (n *Node) HarvestVault(caller crypto.Address, vaultID uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	done, err := n.engine.HarvestVault(caller, vaultID)
	if err == nil {
		observability.Vaults().RecordHarvest()
		n.refreshTVLGauge()
	}
	return done, err
}

func (n *Node) RebalanceVault(caller crypto.Address, vaultID, strategyID uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.RebalanceVault(caller, vaultID, strategyID)
}

func (n *Node) AddStrategy(caller crypto.Address, name, protocol string, apyBps uint64, capacity *big.Int, riskScore uint64, contract crypto.Address) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.AddStrategy(caller, name, protocol, apyBps, capacity, riskScore, contract)
}

func (n *Node) UpdateStrategyAPY(caller crypto.Address, id, apyBps uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.UpdateStrategyAPY(caller, id, apyBps)
}

func (n *Node) SetPlatformFee(caller crypto.Address, rateBps uint64) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.SetPlatformFee(caller, rateBps)
}

func (n *Node) AddAdmin(caller, admin crypto.Address) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.AddAdmin(caller, admin)
}

func (n *Node) ToggleEmergencyPause(caller crypto.Address) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.engine.SetBlockHeight(n.height)
	return n.engine.ToggleEmergencyPause(caller)
}

// --- Read-only accessors ---

func (n *Node) VaultInfo(id uint64) (*vault.Vault, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.VaultInfo(id)
}

func (n *Node) StrategyInfo(id uint64) (*vault.Strategy, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.StrategyInfo(id)
}

func (n *Node) UserPosition(vaultID uint64, addr crypto.Address) (*vault.UserPosition, bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.UserPosition(vaultID, addr)
}

func (n *Node) UserVaults(addr crypto.Address) ([]uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.UserVaults(addr)
}

func (n *Node) UserVaultValue(vaultID uint64, addr crypto.Address) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.UserVaultValue(vaultID, addr)
}

func (n *Node) PlatformStats() (*vault.PlatformStats, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.PlatformStats()
}

func (n *Node) BestAPY() (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.BestAPY()
}

func (n *Node) IsUserAdmin(addr crypto.Address) (bool, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.engine.IsAdmin(addr)
}

func (n *Node) refreshTVLGauge() {
	stats, err := n.engine.PlatformStats()
	if err != nil || stats == nil {
		return
	}
	observability.Vaults().SetTVL(stats.TotalValueLocked)
}
