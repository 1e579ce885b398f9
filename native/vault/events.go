package vault

import (
	"math/big"
	"strconv"

	"yieldstacks/core/types"
	"yieldstacks/crypto"
)

const (
	EventTypeVaultCreated       = "vault.created"
	EventTypeDeposit            = "vault.deposit"
	EventTypeWithdraw           = "vault.withdraw"
	EventTypeHarvest            = "vault.harvested"
	EventTypeRebalance          = "vault.rebalanced"
	EventTypeStrategyAdded      = "strategy.added"
	EventTypeStrategyAPYUpdated = "strategy.apy_updated"
	EventTypeAdminAdded         = "platform.admin_added"
	EventTypePauseToggled       = "platform.pause_toggled"
	EventTypeFeeUpdated         = "platform.fee_updated"
)

type vaultEvent struct {
	evt *types.Event
}

func (e vaultEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e vaultEvent) Event() *types.Event { return e.evt }

func uintAttr(v uint64) string { return strconv.FormatUint(v, 10) }

func amountAttr(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// NewVaultCreatedEvent returns the canonical payload for a newly created
// vault.
func NewVaultCreatedEvent(v *Vault) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeVaultCreated,
		Attributes: map[string]string{
			"vaultId":    uintAttr(v.ID),
			"name":       v.Name,
			"riskLevel":  uintAttr(v.RiskLevel),
			"strategyId": uintAttr(v.StrategyID),
			"minDeposit": amountAttr(v.MinDeposit),
		},
	}}
}

// NewDepositEvent returns the payload emitted when shares are minted for a
// deposit.
func NewDepositEvent(v *Vault, caller crypto.Address, amount, minted *big.Int) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeDeposit,
		Attributes: map[string]string{
			"vaultId": uintAttr(v.ID),
			"caller":  caller.String(),
			"amount":  amountAttr(amount),
			"shares":  amountAttr(minted),
		},
	}}
}

// NewWithdrawEvent returns the payload emitted when shares are burned for a
// withdrawal.
func NewWithdrawEvent(v *Vault, caller crypto.Address, shares, net, fee *big.Int) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeWithdraw,
		Attributes: map[string]string{
			"vaultId": uintAttr(v.ID),
			"caller":  caller.String(),
			"shares":  amountAttr(shares),
			"net":     amountAttr(net),
			"fee":     amountAttr(fee),
		},
	}}
}

// NewHarvestEvent returns the payload emitted when yield is compounded into
// a vault.
func NewHarvestEvent(v *Vault, yield *big.Int) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeHarvest,
		Attributes: map[string]string{
			"vaultId":     uintAttr(v.ID),
			"yield":       amountAttr(yield),
			"totalAssets": amountAttr(v.TotalAssets),
			"height":      uintAttr(v.LastHarvest),
		},
	}}
}

// NewRebalanceEvent returns the payload emitted when a vault is reassigned
// to a new strategy.
func NewRebalanceEvent(v *Vault, previous uint64) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeRebalance,
		Attributes: map[string]string{
			"vaultId":      uintAttr(v.ID),
			"fromStrategy": uintAttr(previous),
			"toStrategy":   uintAttr(v.StrategyID),
		},
	}}
}

// NewStrategyAddedEvent returns the payload for a newly registered strategy.
func NewStrategyAddedEvent(s *Strategy) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeStrategyAdded,
		Attributes: map[string]string{
			"strategyId": uintAttr(s.ID),
			"name":       s.Name,
			"protocol":   s.Protocol,
			"apyBps":     uintAttr(s.APYBps),
			"riskScore":  uintAttr(s.RiskScore),
		},
	}}
}

// NewStrategyAPYUpdatedEvent returns the payload for an APY change.
func NewStrategyAPYUpdatedEvent(s *Strategy) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeStrategyAPYUpdated,
		Attributes: map[string]string{
			"strategyId": uintAttr(s.ID),
			"apyBps":     uintAttr(s.APYBps),
		},
	}}
}

// NewAdminAddedEvent returns the payload for an admin grant.
func NewAdminAddedEvent(admin crypto.Address) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeAdminAdded,
		Attributes: map[string]string{
			"admin": admin.String(),
		},
	}}
}

// NewPauseToggledEvent returns the payload for a pause flip.
func NewPauseToggledEvent(paused bool) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypePauseToggled,
		Attributes: map[string]string{
			"paused": strconv.FormatBool(paused),
		},
	}}
}

// NewFeeUpdatedEvent returns the payload for a fee rate change.
func NewFeeUpdatedEvent(rateBps uint64) vaultEvent {
	return vaultEvent{evt: &types.Event{
		Type: EventTypeFeeUpdated,
		Attributes: map[string]string{
			"feeBps": uintAttr(rateBps),
		},
	}}
}
