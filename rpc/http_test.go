package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http/httptest"
	"testing"

	"yieldstacks/core"
	"yieldstacks/crypto"
	"yieldstacks/storage"
)

func newTestServer(t *testing.T) (*Server, crypto.Address) {
	t.Helper()
	raw := make([]byte, 20)
	raw[19] = 0x01
	owner := crypto.NewAddress(crypto.STXPrefix, raw)
	node, err := core.NewNode(storage.NewMemDB(), owner)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return NewServer(node), owner
}

func call(t *testing.T, s *Server, method string, params ...interface{}) *RPCResponse {
	t.Helper()
	rawParams := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		encoded, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("marshal param: %v", err)
		}
		rawParams = append(rawParams, encoded)
	}
	body, err := json.Marshal(&RPCRequest{JSONRPC: jsonRPCVersion, Method: method, Params: rawParams, ID: 1})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest("POST", "/", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	s.handle(recorder, req)

	resp := &RPCResponse{}
	if err := json.Unmarshal(recorder.Body.Bytes(), resp); err != nil {
		t.Fatalf("unmarshal response: %v (body %s)", err, recorder.Body.String())
	}
	return resp
}

func resultInto(t *testing.T, resp *RPCResponse, out interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error: %+v", resp.Error)
	}
	encoded, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("re-marshal result: %v", err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func TestHandleRejectsUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t)
	resp := call(t, s, "vault_doesNotExist")
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp.Error)
	}
}

func TestHandleRejectsMissingBody(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest("POST", "/", bytes.NewReader(nil))
	recorder := httptest.NewRecorder()
	s.handle(recorder, req)

	resp := &RPCResponse{}
	if err := json.Unmarshal(recorder.Body.Bytes(), resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeInvalidRequest {
		t.Fatalf("expected invalid-request error, got %+v", resp.Error)
	}
}

func TestVaultLifecycleOverRPC(t *testing.T) {
	s, owner := newTestServer(t)
	userRaw := make([]byte, 20)
	userRaw[19] = 0x02
	user := crypto.NewAddress(crypto.STXPrefix, userRaw)
	if err := s.node.Credit(user, big.NewInt(3_000_000)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	resp := call(t, s, "vault_create", map[string]interface{}{
		"caller":     owner.String(),
		"name":       "Conservative",
		"riskLevel":  1,
		"minDeposit": "0",
	})
	var created vaultCreateResult
	resultInto(t, resp, &created)
	if created.VaultID != 1 {
		t.Fatalf("unexpected vault id: %d", created.VaultID)
	}

	resp = call(t, s, "vault_deposit", map[string]interface{}{
		"caller":  user.String(),
		"vaultId": created.VaultID,
		"amount":  "3000000",
	})
	var deposited vaultDepositResult
	resultInto(t, resp, &deposited)
	if deposited.Shares.Cmp(big.NewInt(3_000_000)) != 0 {
		t.Fatalf("unexpected shares: %s", deposited.Shares)
	}

	resp = call(t, s, "vault_getPosition", map[string]interface{}{
		"address": user.String(),
		"vaultId": created.VaultID,
	})
	var pos positionResult
	resultInto(t, resp, &pos)
	if pos.Shares.Cmp(big.NewInt(3_000_000)) != 0 {
		t.Fatalf("unexpected position shares: %s", pos.Shares)
	}

	resp = call(t, s, "vault_withdraw", map[string]interface{}{
		"caller":  user.String(),
		"vaultId": created.VaultID,
		"shares":  "3000000",
	})
	var withdrawn vaultWithdrawResult
	resultInto(t, resp, &withdrawn)
	if withdrawn.Payout.Cmp(big.NewInt(2_985_000)) != 0 {
		t.Fatalf("unexpected payout: %s", withdrawn.Payout)
	}

	resp = call(t, s, "ys_getBalance", map[string]interface{}{"address": user.String()})
	var balance balanceResult
	resultInto(t, resp, &balance)
	if balance.Balance.Cmp(big.NewInt(2_985_000)) != 0 {
		t.Fatalf("unexpected balance: %s", balance.Balance)
	}
}

func TestEngineCodesSurfaceInErrorData(t *testing.T) {
	s, owner := newTestServer(t)

	resp := call(t, s, "vault_create", map[string]interface{}{
		"caller":     owner.String(),
		"name":       "Guarded",
		"riskLevel":  1,
		"minDeposit": "1000000",
	})
	var created vaultCreateResult
	resultInto(t, resp, &created)

	userRaw := make([]byte, 20)
	userRaw[19] = 0x03
	user := crypto.NewAddress(crypto.STXPrefix, userRaw)
	if err := s.node.Credit(user, big.NewInt(10_000_000)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	resp = call(t, s, "vault_deposit", map[string]interface{}{
		"caller":  user.String(),
		"vaultId": created.VaultID,
		"amount":  "500000",
	})
	if resp.Error == nil {
		t.Fatalf("expected deposit below minimum to fail")
	}
	if fmt.Sprintf("%v", resp.Error.Data) != "206" {
		t.Fatalf("expected code 206 in error data, got %v", resp.Error.Data)
	}
}

func TestReadOnlyQueries(t *testing.T) {
	s, owner := newTestServer(t)

	resp := call(t, s, "platform_stats")
	var stats struct {
		TotalStrategies uint64 `json:"totalStrategies"`
		PlatformFeeBps  uint64 `json:"platformFeeRate"`
	}
	resultInto(t, resp, &stats)
	if stats.TotalStrategies != 3 || stats.PlatformFeeBps != 50 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	resp = call(t, s, "strategy_bestApy")
	var best strategyAPYResult
	resultInto(t, resp, &best)
	if best.APYBps != 1500 {
		t.Fatalf("unexpected best apy: %d", best.APYBps)
	}

	resp = call(t, s, "strategy_get", uint64(2))
	var strategy strategyResult
	resultInto(t, resp, &strategy)
	if strategy.Protocol != "arkadiko" || strategy.APYBps != 800 {
		t.Fatalf("unexpected strategy: %+v", strategy)
	}

	resp = call(t, s, "vault_get", uint64(9))
	if resp.Error == nil {
		t.Fatalf("expected missing vault error")
	}

	resp = call(t, s, "platform_isAdmin", map[string]interface{}{"address": owner.String()})
	var admin isAdminResult
	resultInto(t, resp, &admin)
	if !admin.Admin {
		t.Fatalf("owner should be admin")
	}
}
