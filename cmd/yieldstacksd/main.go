package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"strings"

	"yieldstacks/config"
	"yieldstacks/core"
	"yieldstacks/crypto"
	"yieldstacks/observability/logging"
	"yieldstacks/rpc"
	"yieldstacks/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("YSD_ENV"))
	logger := logging.Setup("yieldstacksd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	owner, err := cfg.Owner()
	if err != nil {
		logger.Error("Failed to resolve owner principal", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node, err := core.NewNode(db, owner)
	if err != nil {
		logger.Error("Failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}

	if node.FreshGenesis() {
		if err := applyGenesisAccounts(node, cfg.GenesisAccounts); err != nil {
			logger.Error("Failed to apply genesis allocations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	logger.Info("Node initialised",
		slog.String("network", cfg.NetworkName),
		slog.String("owner", owner.String()),
		slog.Uint64("height", node.GetHeight()),
	)

	if strings.TrimSpace(cfg.MetricsAddress) != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddress, mux); err != nil {
				logger.Error("Metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	server := rpc.NewServer(node)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// applyGenesisAccounts credits the configured opening balances against a
// freshly bootstrapped ledger.
func applyGenesisAccounts(node *core.Node, allocations []config.GenesisAllocation) error {
	for _, alloc := range allocations {
		addr, err := crypto.DecodeAddress(strings.TrimSpace(alloc.Address))
		if err != nil {
			return fmt.Errorf("genesis allocation %q: %w", alloc.Address, err)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(alloc.Amount), 10)
		if !ok || amount.Sign() < 0 {
			return fmt.Errorf("genesis allocation %q: invalid amount %q", alloc.Address, alloc.Amount)
		}
		if err := node.Credit(addr, amount); err != nil {
			return err
		}
	}
	return nil
}
