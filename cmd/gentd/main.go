package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"gentstaking/config"
	"gentstaking/core"
	"gentstaking/observability/logging"
	"gentstaking/rpc"
	"gentstaking/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("GENT_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup("gentd", env, cfg.LogFile)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	opts := []core.NodeOption{core.WithLogger(logger)}
	if cfg.EarlyAdopterBonusBps > 0 {
		opts = append(opts, core.WithEarlyAdopterBonusBps(cfg.EarlyAdopterBonusBps))
	}
	if trimmed := strings.TrimSpace(cfg.MinStakeAmount); trimmed != "" {
		min, ok := new(big.Int).SetString(trimmed, 10)
		if !ok || min.Sign() < 0 {
			logger.Error("Invalid MinStakeAmount in config", slog.String("value", cfg.MinStakeAmount))
			os.Exit(1)
		}
		opts = append(opts, core.WithMinStakeAmount(min))
	}

	node := core.NewNode(db, opts...)

	logger.Info("Starting staking node",
		slog.String("network", cfg.NetworkName),
		slog.String("dataDir", cfg.DataDir),
		slog.String("rpc", cfg.RPCAddress),
	)

	server := rpc.NewServer(node)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
