package rpc

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strings"

	"yieldstacks/crypto"
	"yieldstacks/native/vault"
)

type vaultCreateParams struct {
	Caller     string `json:"caller"`
	Name       string `json:"name"`
	RiskLevel  uint64 `json:"riskLevel"`
	MinDeposit string `json:"minDeposit"`
}

type vaultDepositParams struct {
	Caller  string `json:"caller"`
	VaultID uint64 `json:"vaultId"`
	Amount  string `json:"amount"`
}

type vaultWithdrawParams struct {
	Caller  string `json:"caller"`
	VaultID uint64 `json:"vaultId"`
	Shares  string `json:"shares"`
}

type vaultIDParams struct {
	Caller  string `json:"caller,omitempty"`
	VaultID uint64 `json:"vaultId"`
}

type vaultRebalanceParams struct {
	Caller     string `json:"caller"`
	VaultID    uint64 `json:"vaultId"`
	StrategyID uint64 `json:"strategyId"`
}

type strategyAddParams struct {
	Caller      string `json:"caller"`
	Name        string `json:"name"`
	Protocol    string `json:"protocol"`
	APYBps      uint64 `json:"apyBps"`
	TVLCapacity string `json:"tvlCapacity"`
	RiskScore   uint64 `json:"riskScore"`
	Contract    string `json:"contract"`
}

type strategyUpdateAPYParams struct {
	Caller     string `json:"caller"`
	StrategyID uint64 `json:"strategyId"`
	APYBps     uint64 `json:"apyBps"`
}

type platformFeeParams struct {
	Caller  string `json:"caller"`
	RateBps uint64 `json:"rateBps"`
}

type platformAdminParams struct {
	Caller string `json:"caller"`
	Admin  string `json:"admin"`
}

type addressParams struct {
	Address string `json:"address"`
}

type positionParams struct {
	Address string `json:"address"`
	VaultID uint64 `json:"vaultId"`
}

type vaultCreateResult struct {
	VaultID uint64 `json:"vaultId"`
}

type vaultDepositResult struct {
	VaultID uint64   `json:"vaultId"`
	Shares  *big.Int `json:"sharesMinted"`
}

type vaultWithdrawResult struct {
	VaultID uint64   `json:"vaultId"`
	Payout  *big.Int `json:"payout"`
}

type vaultHarvestResult struct {
	VaultID   uint64 `json:"vaultId"`
	Harvested bool   `json:"harvested"`
}

type vaultRebalanceResult struct {
	VaultID    uint64 `json:"vaultId"`
	StrategyID uint64 `json:"strategyId"`
	Rebalanced bool   `json:"rebalanced"`
}

type strategyAddResult struct {
	StrategyID uint64 `json:"strategyId"`
}

type strategyAPYResult struct {
	StrategyID uint64 `json:"strategyId,omitempty"`
	APYBps     uint64 `json:"apyBps"`
}

type platformFeeResult struct {
	RateBps uint64 `json:"rateBps"`
}

type platformAdminResult struct {
	Admin string `json:"admin"`
	Added bool   `json:"added"`
}

type platformPauseResult struct {
	Paused bool `json:"paused"`
}

type userVaultsResult struct {
	Address  string   `json:"address"`
	VaultIDs []uint64 `json:"vaultIds"`
}

type userValueResult struct {
	Address string   `json:"address"`
	VaultID uint64   `json:"vaultId"`
	Value   *big.Int `json:"value"`
}

type isAdminResult struct {
	Address string `json:"address"`
	Admin   bool   `json:"admin"`
}

type balanceResult struct {
	Address string   `json:"address"`
	Balance *big.Int `json:"balance"`
}

type heightResult struct {
	Height uint64 `json:"height"`
}

type vaultResult struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Asset       string   `json:"asset"`
	TotalShares *big.Int `json:"totalShares"`
	TotalAssets *big.Int `json:"totalAssets"`
	StrategyID  uint64   `json:"strategyId"`
	RiskLevel   uint64   `json:"riskLevel"`
	MinDeposit  *big.Int `json:"minDeposit"`
	Active      bool     `json:"active"`
	CreatedAt   uint64   `json:"createdAt"`
	LastHarvest uint64   `json:"lastHarvest"`
}

type strategyResult struct {
	ID          uint64   `json:"id"`
	Name        string   `json:"name"`
	Protocol    string   `json:"protocol"`
	APYBps      uint64   `json:"apyBps"`
	TVLCapacity *big.Int `json:"tvlCapacity"`
	CurrentTVL  *big.Int `json:"currentTvl"`
	RiskScore   uint64   `json:"riskScore"`
	Active      bool     `json:"active"`
	Contract    string   `json:"contract"`
	LastUpdated uint64   `json:"lastUpdated"`
}

type positionResult struct {
	Shares         *big.Int `json:"shares"`
	DepositedAt    uint64   `json:"depositedAt"`
	LastCompound   uint64   `json:"lastCompound"`
	TotalDeposited *big.Int `json:"totalDeposited"`
	TotalWithdrawn *big.Int `json:"totalWithdrawn"`
}

func newVaultResult(v *vault.Vault) vaultResult {
	return vaultResult{
		ID:          v.ID,
		Name:        v.Name,
		Asset:       v.Asset,
		TotalShares: v.TotalShares,
		TotalAssets: v.TotalAssets,
		StrategyID:  v.StrategyID,
		RiskLevel:   v.RiskLevel,
		MinDeposit:  v.MinDeposit,
		Active:      v.Active,
		CreatedAt:   v.CreatedAt,
		LastHarvest: v.LastHarvest,
	}
}

func newStrategyResult(s *vault.Strategy) strategyResult {
	contract := crypto.NewAddress(crypto.STXPrefix, s.ContractAddress)
	return strategyResult{
		ID:          s.ID,
		Name:        s.Name,
		Protocol:    s.Protocol,
		APYBps:      s.APYBps,
		TVLCapacity: s.TVLCapacity,
		CurrentTVL:  s.CurrentTVL,
		RiskScore:   s.RiskScore,
		Active:      s.Active,
		Contract:    contract.String(),
		LastUpdated: s.LastUpdated,
	}
}

func newPositionResult(p *vault.UserPosition) positionResult {
	return positionResult{
		Shares:         p.Shares,
		DepositedAt:    p.DepositedAt,
		LastCompound:   p.LastCompound,
		TotalDeposited: p.TotalDeposited,
		TotalWithdrawn: p.TotalWithdrawn,
	}
}

func decodeParams(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "expected parameter object", nil)
		return false
	}
	if err := json.Unmarshal(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}

func parseAddress(w http.ResponseWriter, req *RPCRequest, field, value string) (crypto.Address, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, field+" required", nil)
		return crypto.Address{}, false
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid "+field, err.Error())
		return crypto.Address{}, false
	}
	return addr, true
}

func parseAmount(w http.ResponseWriter, req *RPCRequest, field, value string) (*big.Int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, field+" required", nil)
		return nil, false
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid "+field, trimmed)
		return nil, false
	}
	return amount, true
}

func (s *Server) handleVaultCreate(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input vaultCreateParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "name required", nil)
		return
	}
	minDeposit, ok := parseAmount(w, req, "minDeposit", input.MinDeposit)
	if !ok {
		return
	}
	id, moduleErr := s.vault.CreateVault(caller, input.Name, input.RiskLevel, minDeposit)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultCreateResult{VaultID: id})
}

func (s *Server) handleVaultDeposit(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input vaultDepositParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	amount, ok := parseAmount(w, req, "amount", input.Amount)
	if !ok {
		return
	}
	shares, moduleErr := s.vault.Deposit(caller, input.VaultID, amount)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultDepositResult{VaultID: input.VaultID, Shares: shares})
}

func (s *Server) handleVaultWithdraw(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input vaultWithdrawParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	shares, ok := parseAmount(w, req, "shares", input.Shares)
	if !ok {
		return
	}
	payout, moduleErr := s.vault.Withdraw(caller, input.VaultID, shares)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultWithdrawResult{VaultID: input.VaultID, Payout: payout})
}

func (s *Server) handleVaultHarvest(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input vaultIDParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	harvested, moduleErr := s.vault.Harvest(caller, input.VaultID)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultHarvestResult{VaultID: input.VaultID, Harvested: harvested})
}

func (s *Server) handleVaultRebalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input vaultRebalanceParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	rebalanced, moduleErr := s.vault.Rebalance(caller, input.VaultID, input.StrategyID)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, vaultRebalanceResult{VaultID: input.VaultID, StrategyID: input.StrategyID, Rebalanced: rebalanced})
}

func (s *Server) handleStrategyAdd(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input strategyAddParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "name required", nil)
		return
	}
	if strings.TrimSpace(input.Protocol) == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "protocol required", nil)
		return
	}
	capacity, ok := parseAmount(w, req, "tvlCapacity", input.TVLCapacity)
	if !ok {
		return
	}
	contract, ok := parseAddress(w, req, "contract", input.Contract)
	if !ok {
		return
	}
	id, moduleErr := s.vault.AddStrategy(caller, input.Name, input.Protocol, input.APYBps, capacity, input.RiskScore, contract)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, strategyAddResult{StrategyID: id})
}

func (s *Server) handleStrategyUpdateAPY(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input strategyUpdateAPYParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	applied, moduleErr := s.vault.UpdateStrategyAPY(caller, input.StrategyID, input.APYBps)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, strategyAPYResult{StrategyID: input.StrategyID, APYBps: applied})
}

func (s *Server) handlePlatformSetFee(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input platformFeeParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	applied, moduleErr := s.vault.SetPlatformFee(caller, input.RateBps)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, platformFeeResult{RateBps: applied})
}

func (s *Server) handlePlatformAddAdmin(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input platformAdminParams
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	admin, ok := parseAddress(w, req, "admin", input.Admin)
	if !ok {
		return
	}
	added, moduleErr := s.vault.AddAdmin(caller, admin)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, platformAdminResult{Admin: admin.String(), Added: added})
}

func (s *Server) handlePlatformTogglePause(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input struct {
		Caller string `json:"caller"`
	}
	if !decodeParams(w, req, &input) {
		return
	}
	caller, ok := parseAddress(w, req, "caller", input.Caller)
	if !ok {
		return
	}
	paused, moduleErr := s.vault.ToggleEmergencyPause(caller)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, platformPauseResult{Paused: paused})
}

func parseIDParam(w http.ResponseWriter, req *RPCRequest, field string) (uint64, bool) {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "expected "+field+" parameter", nil)
		return 0, false
	}
	var direct uint64
	if err := json.Unmarshal(req.Params[0], &direct); err == nil {
		return direct, true
	}
	var wrapper map[string]uint64
	if err := json.Unmarshal(req.Params[0], &wrapper); err == nil {
		if v, ok := wrapper[field]; ok {
			return v, true
		}
	}
	writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid "+field+" parameter", nil)
	return 0, false
}

func (s *Server) handleVaultGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	id, ok := parseIDParam(w, req, "vaultId")
	if !ok {
		return
	}
	v, found, moduleErr := s.vault.GetVault(id)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "vault not found", vault.CodeVaultNotFound)
		return
	}
	writeResult(w, req.ID, newVaultResult(v))
}

func (s *Server) handleStrategyGet(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	id, ok := parseIDParam(w, req, "strategyId")
	if !ok {
		return
	}
	strategy, found, moduleErr := s.vault.GetStrategy(id)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "strategy not found", vault.CodeStrategyNotFound)
		return
	}
	writeResult(w, req.ID, newStrategyResult(strategy))
}

func (s *Server) handleStrategyBestAPY(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	best, moduleErr := s.vault.BestAPY()
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, strategyAPYResult{APYBps: best})
}

func (s *Server) handleVaultGetPosition(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input positionParams
	if !decodeParams(w, req, &input) {
		return
	}
	addr, ok := parseAddress(w, req, "address", input.Address)
	if !ok {
		return
	}
	pos, found, moduleErr := s.vault.GetPosition(input.VaultID, addr)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, req.ID, codeServerError, "position not found", nil)
		return
	}
	writeResult(w, req.ID, newPositionResult(pos))
}

func (s *Server) handleVaultGetUserVaults(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input addressParams
	if !decodeParams(w, req, &input) {
		return
	}
	addr, ok := parseAddress(w, req, "address", input.Address)
	if !ok {
		return
	}
	ids, moduleErr := s.vault.GetUserVaults(addr)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	if ids == nil {
		ids = []uint64{}
	}
	writeResult(w, req.ID, userVaultsResult{Address: addr.String(), VaultIDs: ids})
}

func (s *Server) handleVaultGetUserValue(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input positionParams
	if !decodeParams(w, req, &input) {
		return
	}
	addr, ok := parseAddress(w, req, "address", input.Address)
	if !ok {
		return
	}
	value, moduleErr := s.vault.GetUserValue(input.VaultID, addr)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, userValueResult{Address: addr.String(), VaultID: input.VaultID, Value: value})
}

func (s *Server) handlePlatformStats(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	stats, moduleErr := s.vault.PlatformStats()
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, stats)
}

func (s *Server) handlePlatformIsAdmin(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input addressParams
	if !decodeParams(w, req, &input) {
		return
	}
	addr, ok := parseAddress(w, req, "address", input.Address)
	if !ok {
		return
	}
	admin, moduleErr := s.vault.IsAdmin(addr)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, isAdminResult{Address: addr.String(), Admin: admin})
}

func (s *Server) handleGetBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var input addressParams
	if !decodeParams(w, req, &input) {
		return
	}
	addr, ok := parseAddress(w, req, "address", input.Address)
	if !ok {
		return
	}
	balance, moduleErr := s.vault.Balance(addr)
	if moduleErr != nil {
		writeModuleError(w, req.ID, moduleErr)
		return
	}
	writeResult(w, req.ID, balanceResult{Address: addr.String(), Balance: balance})
}

func (s *Server) handleGetHeight(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if len(req.Params) != 0 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "no parameters expected", nil)
		return
	}
	writeResult(w, req.ID, heightResult{Height: s.node.GetHeight()})
}
