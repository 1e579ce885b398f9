package state

var (
	platformKeyBytes  = []byte("vault/platform")
	strategyListBytes = []byte("vault/strategy-list")
	strategyPrefix    = []byte("vault/strategy/")
	vaultPrefix       = []byte("vault/record/")
	positionPrefix    = []byte("vault/position/")
	userVaultsPrefix  = []byte("vault/user-vaults/")
	accountPrefix     = []byte("account/")
)
