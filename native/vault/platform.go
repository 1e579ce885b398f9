package vault

import (
	"bytes"
	"math/big"

	"yieldstacks/crypto"
)

// IsAdmin reports whether the principal is the owner or a granted admin.
func (e *Engine) IsAdmin(addr crypto.Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return false, err
	}
	return e.isAdmin(cfg, addr), nil
}

// AddAdmin grants admin authority to a principal. Owner only; adding an
// existing admin is a no-op success.
func (e *Engine) AddAdmin(caller, admin crypto.Address) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return false, err
	}
	if !bytes.Equal(cfg.Owner, caller.Bytes()) {
		return false, ErrNotAuthorized
	}
	raw := admin.Bytes()
	for _, existing := range cfg.Admins {
		if bytes.Equal(existing, raw) {
			return true, nil
		}
	}
	cfg.Admins = append(cfg.Admins, append([]byte(nil), raw...))
	if err := e.state.PlatformPut(cfg); err != nil {
		return false, err
	}
	e.emit(NewAdminAddedEvent(admin))
	return true, nil
}

// ToggleEmergencyPause flips the global kill switch. Admin only; the new
// pause value is returned.
func (e *Engine) ToggleEmergencyPause(caller crypto.Address) (bool, error) {
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
	cfg.EmergencyPause = !cfg.EmergencyPause
	if err := e.state.PlatformPut(cfg); err != nil {
		return false, err
	}
	e.emit(NewPauseToggledEvent(cfg.EmergencyPause))
	return cfg.EmergencyPause, nil
}

// SetPlatformFee updates the withdrawal fee rate. Admin only; rates above
// MaxFeeRateBps are rejected. The new rate is returned.
func (e *Engine) SetPlatformFee(caller crypto.Address, rateBps uint64) (uint64, error) {
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
	if rateBps > MaxFeeRateBps {
		return 0, ErrInvalidAmount
	}
	cfg.FeeRateBps = rateBps
	if err := e.state.PlatformPut(cfg); err != nil {
		return 0, err
	}
	e.emit(NewFeeUpdatedEvent(rateBps))
	return rateBps, nil
}

// PlatformStats returns the read-only platform aggregate.
func (e *Engine) PlatformStats() (*PlatformStats, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cfg, err := e.loadPlatform()
	if err != nil {
		return nil, err
	}
	return &PlatformStats{
		TotalValueLocked: new(big.Int).Set(cfg.TotalValueLocked),
		TotalVaults:      cfg.TotalVaults,
		TotalStrategies:  cfg.TotalStrategies,
		PlatformFeeBps:   cfg.FeeRateBps,
		EmergencyPause:   cfg.EmergencyPause,
	}, nil
}
