package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stakevault/config"
	"stakevault/core"
	"stakevault/explorer"
	"stakevault/native/assets"
	"stakevault/native/staking"
	"stakevault/observability/logging"
	"stakevault/observability/metrics"
	"stakevault/observability/otel"
	"stakevault/rpc"
	"stakevault/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	env := strings.TrimSpace(os.Getenv("STAKEVAULT_ENV"))
	logger := logging.Setup("stakevaultd", env, logging.Options{
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
		shutdown, err := otel.Init(context.Background(), otel.Config{
			ServiceName: "stakevaultd",
			Environment: env,
			Endpoint:    endpoint,
			Insecure:    cfg.OTLPInsecure,
			Headers:     otel.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		})
		if err != nil {
			logger.Error("Failed to initialise telemetry", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Error("Telemetry shutdown failed", slog.Any("error", err))
			}
		}()
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	indexer, err := explorer.Open(cfg.ExplorerDSN, logger)
	if err != nil {
		logger.Error("Failed to open explorer store", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		_ = indexer.Close()
	}()

	node, err := core.NewNode(db, core.NodeConfig{
		Custody:     assets.NewCollectible(),
		RewardAsset: assets.NewRewardToken(big.NewInt(cfg.MaxStakingRewards)),
		Vault:       cfg.Vault(),
		Params: staking.Params{
			RewardsPerHour:    big.NewInt(cfg.RewardsPerHour),
			MaxStakingRewards: big.NewInt(cfg.MaxStakingRewards),
		},
		Emitter: indexer,
		Logger:  logger,
		Metrics: metrics.Staking(),
	})
	if err != nil {
		logger.Error("Failed to start node", slog.Any("error", err))
		os.Exit(1)
	}

	if addr := strings.TrimSpace(cfg.MetricsAddress); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			logger.Info("Serving metrics", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("Metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	if addr := strings.TrimSpace(cfg.ExplorerAddress); addr != "" {
		go func() {
			logger.Info("Serving explorer API", slog.String("addr", addr))
			if err := http.ListenAndServe(addr, indexer.Router()); err != nil {
				logger.Error("Explorer server stopped", slog.Any("error", err))
			}
		}()
	}

	server := rpc.NewServer(node)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
