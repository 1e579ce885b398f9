package vault

import (
	"bytes"
	"math/big"

	"yieldstacks/core/events"
	"yieldstacks/core/types"
	"yieldstacks/crypto"
)

// AssetSTX is the asset reference stamped on every vault.
const AssetSTX = "stx-token"

// riskStrategy is the fixed risk-level to strategy assignment used at vault
// creation. The table is literal data from the original deployment and is
// not derived from strategy risk scores.
var riskStrategy = map[uint64]uint64{
	1: 2,
	2: 1,
	3: 1,
}

type engineState interface {
	PlatformGet() (*PlatformConfig, error)
	PlatformPut(*PlatformConfig) error
	StrategyGet(id uint64) (*Strategy, bool, error)
	StrategyPut(*Strategy) error
	StrategyIDs() ([]uint64, error)
	VaultGet(id uint64) (*Vault, bool, error)
	VaultPut(*Vault) error
	PositionGet(vaultID uint64, addr crypto.Address) (*UserPosition, bool, error)
	PositionPut(vaultID uint64, addr crypto.Address, position *UserPosition) error
	PositionDelete(vaultID uint64, addr crypto.Address) error
	UserVaultsGet(addr crypto.Address) ([]uint64, error)
	UserVaultsPut(addr crypto.Address, ids []uint64) error
	GetAccount(addr crypto.Address) (*types.Account, error)
	PutAccount(addr crypto.Address, account *types.Account) error
}

// Engine orchestrates every state transition of the vault ledger. It is the
// only writer to the platform config, strategy registry, vault registry and
// position records; callers serialise operations externally.
type Engine struct {
	state         engineState
	emitter       events.Emitter
	moduleAddress crypto.Address
	blockHeight   uint64
}

// NewEngine constructs a vault engine holding pooled deposits in the module
// custody account.
func NewEngine(moduleAddr crypto.Address) *Engine {
	return &Engine{
		moduleAddress: moduleAddr,
		emitter:       events.NoopEmitter{},
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetBlockHeight records the height stamped on mutations and used for yield
// accrual deltas.
func (e *Engine) SetBlockHeight(height uint64) {
	if e == nil {
		return
	}
	e.blockHeight = height
}

// SetEmitter configures the event emitter. Passing nil restores the no-op
// emitter.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// CreateVault registers a new vault and auto-assigns its strategy from the
// risk level. Admin only; the new vault id is returned.
func (e *Engine) CreateVault(caller crypto.Address, name string, riskLevel uint64, minDeposit *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return 0, err
	}
	if !e.isAdmin(cfg, caller) {
		return 0, ErrNotAuthorized
	}
	if cfg.EmergencyPause {
		return 0, ErrVaultPaused
	}
	strategyID, ok := riskStrategy[riskLevel]
	if !ok {
		return 0, ErrInvalidAmount
	}
	if minDeposit == nil || minDeposit.Sign() < 0 {
		return 0, ErrInvalidAmount
	}

	id := cfg.TotalVaults + 1
	v := &Vault{
		ID:          id,
		Name:        name,
		Asset:       AssetSTX,
		TotalShares: big.NewInt(0),
		TotalAssets: big.NewInt(0),
		StrategyID:  strategyID,
		RiskLevel:   riskLevel,
		MinDeposit:  new(big.Int).Set(minDeposit),
		Active:      true,
		CreatedAt:   e.blockHeight,
		LastHarvest: e.blockHeight,
	}
	cfg.TotalVaults = id

	if err := e.state.VaultPut(v); err != nil {
		return 0, err
	}
	if err := e.state.PlatformPut(cfg); err != nil {
		return 0, err
	}
	e.emit(NewVaultCreatedEvent(v))
	return id, nil
}

// Deposit moves amount from the caller into vault custody and mints shares
// at the current share price. The minted share amount is returned.
func (e *Engine) Deposit(caller crypto.Address, vaultID uint64, amount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return nil, err
	}
	if cfg.EmergencyPause {
		return nil, ErrVaultPaused
	}
	v, ok, err := e.state.VaultGet(vaultID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVaultNotFound
	}
	v.normalize()
	if !v.Active {
		return nil, ErrVaultPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount.Cmp(v.MinDeposit) < 0 {
		return nil, ErrMinimumDepositNotMet
	}
	// The custody account cannot hold a position in its own vaults.
	if bytes.Equal(caller.Bytes(), e.moduleAddress.Bytes()) {
		return nil, ErrNotAuthorized
	}

	callerAcc, err := e.loadAccount(caller)
	if err != nil {
		return nil, err
	}
	if callerAcc.BalanceSTX.Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}
	moduleAcc, err := e.loadAccount(e.moduleAddress)
	if err != nil {
		return nil, err
	}

	minted := sharesForDeposit(amount, v.TotalShares, v.TotalAssets)

	position, hasPosition, err := e.state.PositionGet(vaultID, caller)
	if err != nil {
		return nil, err
	}
	if !hasPosition {
		position = &UserPosition{DepositedAt: e.blockHeight}
	}
	position.normalize()

	vaultIDs, err := e.state.UserVaultsGet(caller)
	if err != nil {
		return nil, err
	}

	strategy, hasStrategy, err := e.state.StrategyGet(v.StrategyID)
	if err != nil {
		return nil, err
	}

	// All validation passed; commit.
	callerAcc.BalanceSTX = new(big.Int).Sub(callerAcc.BalanceSTX, amount)
	moduleAcc.BalanceSTX = new(big.Int).Add(moduleAcc.BalanceSTX, amount)
	if err := e.persistAccount(caller, callerAcc); err != nil {
		return nil, err
	}
	if err := e.persistAccount(e.moduleAddress, moduleAcc); err != nil {
		return nil, err
	}

	v.TotalShares = new(big.Int).Add(v.TotalShares, minted)
	v.TotalAssets = new(big.Int).Add(v.TotalAssets, amount)

	position.Shares = new(big.Int).Add(position.Shares, minted)
	position.LastCompound = e.blockHeight
	position.TotalDeposited = new(big.Int).Add(position.TotalDeposited, amount)

	if !containsID(vaultIDs, vaultID) {
		vaultIDs = append(vaultIDs, vaultID)
		if err := e.state.UserVaultsPut(caller, vaultIDs); err != nil {
			return nil, err
		}
	}

	cfg.TotalValueLocked = new(big.Int).Add(cfg.TotalValueLocked, amount)

	if hasStrategy {
		strategy.normalize()
		strategy.CurrentTVL = new(big.Int).Add(strategy.CurrentTVL, amount)
		if err := e.state.StrategyPut(strategy); err != nil {
			return nil, err
		}
	}

	if err := e.state.PositionPut(vaultID, caller, position); err != nil {
		return nil, err
	}
	if err := e.state.VaultPut(v); err != nil {
		return nil, err
	}
	if err := e.state.PlatformPut(cfg); err != nil {
		return nil, err
	}

	e.emit(NewDepositEvent(v, caller, amount, minted))
	return minted, nil
}

// Withdraw burns the caller's shares and pays out their current asset value
// net of the platform fee. The net amount paid to the caller is returned;
// the fee is credited to the treasury account.
func (e *Engine) Withdraw(caller crypto.Address, vaultID uint64, shares *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return nil, err
	}
	if cfg.EmergencyPause {
		return nil, ErrVaultPaused
	}
	v, ok, err := e.state.VaultGet(vaultID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrVaultNotFound
	}
	v.normalize()
	if !v.Active {
		return nil, ErrVaultPaused
	}
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if bytes.Equal(caller.Bytes(), e.moduleAddress.Bytes()) {
		return nil, ErrNotAuthorized
	}
	position, hasPosition, err := e.state.PositionGet(vaultID, caller)
	if err != nil {
		return nil, err
	}
	if !hasPosition {
		return nil, ErrInsufficientBalance
	}
	position.normalize()
	if shares.Cmp(position.Shares) > 0 {
		return nil, ErrWithdrawalTooLarge
	}

	gross := assetsForShares(shares, v.TotalShares, v.TotalAssets)
	fee := feeFor(gross, cfg.FeeRateBps)
	net := new(big.Int).Sub(gross, fee)

	callerAcc, err := e.loadAccount(caller)
	if err != nil {
		return nil, err
	}
	moduleAcc, err := e.loadAccount(e.moduleAddress)
	if err != nil {
		return nil, err
	}
	treasury := crypto.NewAddress(caller.Prefix(), append([]byte(nil), cfg.Treasury...))
	treasuryAcc, err := e.loadAccount(treasury)
	if err != nil {
		return nil, err
	}

	strategy, hasStrategy, err := e.state.StrategyGet(v.StrategyID)
	if err != nil {
		return nil, err
	}

	// All validation passed; commit. The full gross amount leaves custody:
	// net to the caller, fee to the treasury.
	moduleAcc.BalanceSTX = new(big.Int).Sub(moduleAcc.BalanceSTX, gross)
	callerAcc.BalanceSTX = new(big.Int).Add(callerAcc.BalanceSTX, net)
	if bytes.Equal(treasury.Bytes(), caller.Bytes()) {
		callerAcc.BalanceSTX = new(big.Int).Add(callerAcc.BalanceSTX, fee)
	} else {
		treasuryAcc.BalanceSTX = new(big.Int).Add(treasuryAcc.BalanceSTX, fee)
		if err := e.persistAccount(treasury, treasuryAcc); err != nil {
			return nil, err
		}
	}
	if err := e.persistAccount(e.moduleAddress, moduleAcc); err != nil {
		return nil, err
	}
	if err := e.persistAccount(caller, callerAcc); err != nil {
		return nil, err
	}

	v.TotalShares = new(big.Int).Sub(v.TotalShares, shares)
	v.TotalAssets = new(big.Int).Sub(v.TotalAssets, gross)

	remaining := new(big.Int).Sub(position.Shares, shares)
	if remaining.Sign() == 0 {
		if err := e.state.PositionDelete(vaultID, caller); err != nil {
			return nil, err
		}
	} else {
		position.Shares = remaining
		position.TotalWithdrawn = new(big.Int).Add(position.TotalWithdrawn, net)
		if err := e.state.PositionPut(vaultID, caller, position); err != nil {
			return nil, err
		}
	}

	cfg.TotalValueLocked = new(big.Int).Sub(cfg.TotalValueLocked, gross)
	if cfg.TotalValueLocked.Sign() < 0 {
		cfg.TotalValueLocked = big.NewInt(0)
	}

	if hasStrategy {
		strategy.normalize()
		strategy.CurrentTVL = new(big.Int).Sub(strategy.CurrentTVL, gross)
		if strategy.CurrentTVL.Sign() < 0 {
			strategy.CurrentTVL = big.NewInt(0)
		}
		if err := e.state.StrategyPut(strategy); err != nil {
			return nil, err
		}
	}

	if err := e.state.VaultPut(v); err != nil {
		return nil, err
	}
	if err := e.state.PlatformPut(cfg); err != nil {
		return nil, err
	}

	e.emit(NewWithdrawEvent(v, caller, shares, net, fee))
	return net, nil
}

// HarvestVault compounds the assigned strategy's simulated yield into the
// vault's asset total using linear accrual over the blocks elapsed since the
// last harvest. Share supply is untouched, which is exactly how yield raises
// each share's redeemable value.
func (e *Engine) HarvestVault(caller crypto.Address, vaultID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return false, err
	}
	if !e.isAdmin(cfg, caller) {
		return false, ErrNotAuthorized
	}
	if cfg.EmergencyPause {
		return false, ErrVaultPaused
	}
	v, ok, err := e.state.VaultGet(vaultID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrVaultNotFound
	}
	v.normalize()

	var elapsed uint64
	if e.blockHeight > v.LastHarvest {
		elapsed = e.blockHeight - v.LastHarvest
	}

	yield := big.NewInt(0)
	strategy, hasStrategy, err := e.state.StrategyGet(v.StrategyID)
	if err != nil {
		return false, err
	}
	if hasStrategy && elapsed > 0 {
		yield = accruedYield(v.TotalAssets, strategy.APYBps, elapsed)
	}

	if yield.Sign() > 0 {
		v.TotalAssets = new(big.Int).Add(v.TotalAssets, yield)
		cfg.TotalValueLocked = new(big.Int).Add(cfg.TotalValueLocked, yield)
		moduleAcc, err := e.loadAccount(e.moduleAddress)
		if err != nil {
			return false, err
		}
		moduleAcc.BalanceSTX = new(big.Int).Add(moduleAcc.BalanceSTX, yield)
		if err := e.persistAccount(e.moduleAddress, moduleAcc); err != nil {
			return false, err
		}
		if hasStrategy {
			strategy.normalize()
			strategy.CurrentTVL = new(big.Int).Add(strategy.CurrentTVL, yield)
			if err := e.state.StrategyPut(strategy); err != nil {
				return false, err
			}
		}
		if err := e.state.PlatformPut(cfg); err != nil {
			return false, err
		}
	}

	v.LastHarvest = e.blockHeight
	if err := e.state.VaultPut(v); err != nil {
		return false, err
	}

	e.emit(NewHarvestEvent(v, yield))
	return true, nil
}

// RebalanceVault reassigns the vault to a different strategy and resets the
// harvest clock. No assets move; the assignment is metadata.
func (e *Engine) RebalanceVault(caller crypto.Address, vaultID, strategyID uint64) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return false, err
	}
	if !e.isAdmin(cfg, caller) {
		return false, ErrNotAuthorized
	}
	v, ok, err := e.state.VaultGet(vaultID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrVaultNotFound
	}
	v.normalize()
	if _, found, err := e.state.StrategyGet(strategyID); err != nil {
		return false, err
	} else if !found {
		return false, ErrStrategyNotFound
	}

	previous := v.StrategyID
	v.StrategyID = strategyID
	v.LastHarvest = e.blockHeight
	if err := e.state.VaultPut(v); err != nil {
		return false, err
	}

	e.emit(NewRebalanceEvent(v, previous))
	return true, nil
}

func (e *Engine) loadPlatform() (*PlatformConfig, error) {
	cfg, err := e.state.PlatformGet()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errNilPlatform
	}
	cfg.normalize()
	return cfg, nil
}

func (e *Engine) isAdmin(cfg *PlatformConfig, addr crypto.Address) bool {
	raw := addr.Bytes()
	if len(raw) == 0 {
		return false
	}
	if bytes.Equal(cfg.Owner, raw) {
		return true
	}
	for _, admin := range cfg.Admins {
		if bytes.Equal(admin, raw) {
			return true
		}
	}
	return false
}

func (e *Engine) loadAccount(addr crypto.Address) (*types.Account, error) {
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = &types.Account{}
	}
	if acc.BalanceSTX == nil {
		acc.BalanceSTX = big.NewInt(0)
	}
	return acc, nil
}

func (e *Engine) persistAccount(addr crypto.Address, acc *types.Account) error {
	return e.state.PutAccount(addr, acc)
}

func containsID(ids []uint64, id uint64) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
