package vault

import "errors"

// Stable numeric codes surfaced to callers. They match the on-chain contract
// this ledger mirrors and must not be renumbered.
const (
	CodeNotAuthorized        uint64 = 200
	CodeInsufficientBalance  uint64 = 201
	CodeInvalidAmount        uint64 = 202
	CodeVaultNotFound        uint64 = 203
	CodeStrategyNotFound     uint64 = 204
	CodeVaultPaused          uint64 = 205
	CodeMinimumDepositNotMet uint64 = 206
	CodeWithdrawalTooLarge   uint64 = 207
)

// Error is a coded failure returned by engine operations. Every precondition
// failure short-circuits with one of these before any state mutation.
type Error struct {
	code uint64
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns the stable numeric error code.
func (e *Error) Code() uint64 { return e.code }

var (
	ErrNotAuthorized        = &Error{CodeNotAuthorized, "vault engine: caller lacks admin authority"}
	ErrInsufficientBalance  = &Error{CodeInsufficientBalance, "vault engine: insufficient balance"}
	ErrInvalidAmount        = &Error{CodeInvalidAmount, "vault engine: amount out of valid range"}
	ErrVaultNotFound        = &Error{CodeVaultNotFound, "vault engine: vault not found"}
	ErrStrategyNotFound     = &Error{CodeStrategyNotFound, "vault engine: strategy not found"}
	ErrVaultPaused          = &Error{CodeVaultPaused, "vault engine: operation blocked by emergency pause"}
	ErrMinimumDepositNotMet = &Error{CodeMinimumDepositNotMet, "vault engine: deposit below vault minimum"}
	ErrWithdrawalTooLarge   = &Error{CodeWithdrawalTooLarge, "vault engine: withdrawal exceeds held position"}
)

// Wiring failures, distinct from the coded taxonomy above.
var (
	errNilState    = errors.New("vault engine: state not configured")
	errNilPlatform = errors.New("vault engine: platform config not initialised")
)

// ErrorCode extracts the stable numeric code from an engine error. The second
// return is false for wiring or storage failures that carry no code.
func ErrorCode(err error) (uint64, bool) {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.code, true
	}
	return 0, false
}
