package modules

// ModuleError conveys a handler failure with its HTTP status and JSON-RPC
// error code. Data carries the ledger's stable numeric error code when the
// failure originated in the vault engine.
type ModuleError struct {
	HTTPStatus int
	Code       int
	Message    string
	Data       interface{}
}

const (
	codeInvalidParams = -32602
	codeServerError   = -32000
)
