package vault

import (
	"math/big"
)

// Strategy describes a yield source that vault capital can be routed to.
// Amount values are big integers in the token's smallest unit; rates are
// basis points out of 10,000.
type Strategy struct {
	// ID is the unique strategy identifier, assigned sequentially from 1.
	ID uint64
	// Name is the human-readable strategy label.
	Name string
	// Protocol names the external protocol backing the strategy.
	Protocol string
	// APYBps is the advertised annual yield in basis points.
	APYBps uint64
	// TVLCapacity caps the capital the strategy is meant to absorb.
	TVLCapacity *big.Int
	// CurrentTVL mirrors the capital currently attributed to the strategy.
	CurrentTVL *big.Int
	// RiskScore grades the strategy from 1 (safest) to 10.
	RiskScore uint64
	// Active reports whether the strategy accepts new capital.
	Active bool
	// ContractAddress is the principal of the backing contract.
	ContractAddress []byte
	// LastUpdated records the block height of the most recent mutation.
	LastUpdated uint64
}

// Vault is a pooled deposit container whose ownership is tracked in shares.
type Vault struct {
	// ID is the unique vault identifier, assigned sequentially from 1.
	ID uint64
	// Name is the human-readable vault label.
	Name string
	// Asset references the underlying fungible token.
	Asset string
	// TotalShares is the aggregate share supply across all positions.
	TotalShares *big.Int
	// TotalAssets is the pooled asset value backing the shares. It grows on
	// harvest without changing the share supply, which is how yield raises
	// the per-share redemption value.
	TotalAssets *big.Int
	// StrategyID is the strategy the vault's capital is routed to.
	StrategyID uint64
	// RiskLevel is the vault's declared risk tier (1..3).
	RiskLevel uint64
	// MinDeposit is the smallest accepted deposit amount.
	MinDeposit *big.Int
	// Active reports whether the vault accepts mutations.
	Active bool
	// CreatedAt is the block height at creation.
	CreatedAt uint64
	// LastHarvest is the block height yield was last compounded at.
	LastHarvest uint64
}

// UserPosition tracks one principal's stake in one vault. The record is
// deleted when its share balance reaches zero.
type UserPosition struct {
	// Shares is the position's current share balance.
	Shares *big.Int
	// DepositedAt is the height of the first deposit; later deposits keep it.
	DepositedAt uint64
	// LastCompound is the height of the most recent deposit or compound.
	LastCompound uint64
	// TotalDeposited accumulates every deposited amount.
	TotalDeposited *big.Int
	// TotalWithdrawn accumulates every net amount paid out.
	TotalWithdrawn *big.Int
}

// PlatformConfig is the singleton platform record: admin set, fee policy,
// pause flag and the running counters reported by platform stats.
type PlatformConfig struct {
	// Owner is the deployer principal; only the owner may add admins.
	Owner []byte
	// Admins are the additional admin principals granted by the owner.
	Admins [][]byte
	// FeeRateBps is the withdrawal fee in basis points, capped at 1000.
	FeeRateBps uint64
	// EmergencyPause is the global kill switch for vault mutations.
	EmergencyPause bool
	// Treasury receives withdrawal fees. Defaults to the owner.
	Treasury []byte
	// TotalVaults counts vaults ever created.
	TotalVaults uint64
	// TotalStrategies counts strategies ever registered.
	TotalStrategies uint64
	// TotalValueLocked aggregates assets under management platform-wide.
	TotalValueLocked *big.Int
}

// PlatformStats is the read-only aggregate returned by platform stats
// queries.
type PlatformStats struct {
	TotalValueLocked *big.Int `json:"totalValueLocked"`
	TotalVaults      uint64   `json:"totalVaults"`
	TotalStrategies  uint64   `json:"totalStrategies"`
	PlatformFeeBps   uint64   `json:"platformFeeRate"`
	EmergencyPause   bool     `json:"emergencyPause"`
}

func (c *PlatformConfig) normalize() {
	if c.TotalValueLocked == nil {
		c.TotalValueLocked = big.NewInt(0)
	}
	if c.Admins == nil {
		c.Admins = [][]byte{}
	}
	if len(c.Treasury) == 0 {
		c.Treasury = append([]byte(nil), c.Owner...)
	}
}

func (s *Strategy) normalize() {
	if s.TVLCapacity == nil {
		s.TVLCapacity = big.NewInt(0)
	}
	if s.CurrentTVL == nil {
		s.CurrentTVL = big.NewInt(0)
	}
}

func (v *Vault) normalize() {
	if v.TotalShares == nil {
		v.TotalShares = big.NewInt(0)
	}
	if v.TotalAssets == nil {
		v.TotalAssets = big.NewInt(0)
	}
	if v.MinDeposit == nil {
		v.MinDeposit = big.NewInt(0)
	}
}

func (p *UserPosition) normalize() {
	if p.Shares == nil {
		p.Shares = big.NewInt(0)
	}
	if p.TotalDeposited == nil {
		p.TotalDeposited = big.NewInt(0)
	}
	if p.TotalWithdrawn == nil {
		p.TotalWithdrawn = big.NewInt(0)
	}
}
