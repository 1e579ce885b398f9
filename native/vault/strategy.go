package vault

import (
	"math/big"

	"yieldstacks/crypto"
)

// Genesis strategies pre-populated at deployment. Ids 1..3 cover the
// conservative, balanced and aggressive tiers used by vault auto-assignment.
func genesisStrategies(owner crypto.Address, height uint64) []*Strategy {
	contract := append([]byte(nil), owner.Bytes()...)
	return []*Strategy{
		{
			ID:              1,
			Name:            "STX-Staking-Strategy",
			Protocol:        "stx-vault",
			APYBps:          1200,
			TVLCapacity:     big.NewInt(100_000_000_000),
			CurrentTVL:      big.NewInt(0),
			RiskScore:       3,
			Active:          true,
			ContractAddress: contract,
			LastUpdated:     height,
		},
		{
			ID:              2,
			Name:            "Lending-Protocol-Strategy",
			Protocol:        "arkadiko",
			APYBps:          800,
			TVLCapacity:     big.NewInt(50_000_000_000),
			CurrentTVL:      big.NewInt(0),
			RiskScore:       5,
			Active:          true,
			ContractAddress: contract,
			LastUpdated:     height,
		},
		{
			ID:              3,
			Name:            "LP-Farming-Strategy",
			Protocol:        "alex",
			APYBps:          1500,
			TVLCapacity:     big.NewInt(25_000_000_000),
			CurrentTVL:      big.NewInt(0),
			RiskScore:       7,
			Active:          true,
			ContractAddress: contract,
			LastUpdated:     height,
		},
	}
}

// DefaultFeeRateBps is the platform withdrawal fee applied at genesis.
const DefaultFeeRateBps uint64 = 50

// MaxFeeRateBps caps the platform fee at 10%.
const MaxFeeRateBps uint64 = 1000

// Bootstrap initialises the platform config and genesis strategies against
// an empty state. It is a no-op when a platform config already exists.
func (e *Engine) Bootstrap(owner crypto.Address) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	existing, err := e.state.PlatformGet()
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	cfg := &PlatformConfig{
		Owner:            append([]byte(nil), owner.Bytes()...),
		Admins:           [][]byte{},
		FeeRateBps:       DefaultFeeRateBps,
		Treasury:         append([]byte(nil), owner.Bytes()...),
		TotalValueLocked: big.NewInt(0),
	}
	for _, s := range genesisStrategies(owner, e.blockHeight) {
		if err := e.state.StrategyPut(s); err != nil {
			return err
		}
		cfg.TotalStrategies++
	}
	return e.state.PlatformPut(cfg)
}

// AddStrategy registers a new yield strategy. Admin only; the new strategy
// id is returned.
func (e *Engine) AddStrategy(caller crypto.Address, name, protocol string, apyBps uint64, capacity *big.Int, riskScore uint64, contract crypto.Address) (uint64, error) {
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
	if riskScore < 1 || riskScore > 10 {
		return 0, ErrInvalidAmount
	}
	if capacity == nil || capacity.Sign() < 0 {
		return 0, ErrInvalidAmount
	}

	id := cfg.TotalStrategies + 1
	s := &Strategy{
		ID:              id,
		Name:            name,
		Protocol:        protocol,
		APYBps:          apyBps,
		TVLCapacity:     new(big.Int).Set(capacity),
		CurrentTVL:      big.NewInt(0),
		RiskScore:       riskScore,
		Active:          true,
		ContractAddress: append([]byte(nil), contract.Bytes()...),
		LastUpdated:     e.blockHeight,
	}
	cfg.TotalStrategies = id

	if err := e.state.StrategyPut(s); err != nil {
		return 0, err
	}
	if err := e.state.PlatformPut(cfg); err != nil {
		return 0, err
	}
	e.emit(NewStrategyAddedEvent(s))
	return id, nil
}

// UpdateStrategyAPY updates a strategy's advertised yield. Admin only; the
// new APY is returned.
func (e *Engine) UpdateStrategyAPY(caller crypto.Address, id, apyBps uint64) (uint64, error) {
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
	s, ok, err := e.state.StrategyGet(id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrStrategyNotFound
	}
	s.normalize()
	s.APYBps = apyBps
	s.LastUpdated = e.blockHeight
	if err := e.state.StrategyPut(s); err != nil {
		return 0, err
	}
	e.emit(NewStrategyAPYUpdatedEvent(s))
	return apyBps, nil
}

// BestAPY scans the registry in ascending id order and returns the highest
// advertised APY. Ties keep the lowest id because only a strictly greater
// value replaces the running maximum.
func (e *Engine) BestAPY() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	ids, err := e.state.StrategyIDs()
	if err != nil {
		return 0, err
	}
	var best uint64
	for _, id := range ids {
		s, ok, err := e.state.StrategyGet(id)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		if s.APYBps > best {
			best = s.APYBps
		}
	}
	return best, nil
}
