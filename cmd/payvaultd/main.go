package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payvault/config"
	"payvault/core"
	"payvault/core/events"
	"payvault/core/genesis"
	"payvault/core/types"
	"payvault/native/access"
	"payvault/observability"
	"payvault/observability/logging"
	"payvault/storage"
)

const genesisPathEnv = "PAYVAULT_GENESIS"

// eventLogger writes every committed ledger event as a structured log line.
type eventLogger struct {
	log *slog.Logger
}

func (s *eventLogger) Emit(e events.Event) {
	attrs := []any{slog.String("type", e.EventType())}
	if flat, ok := e.(interface{ Event() *types.Event }); ok {
		for key, value := range flat.Event().Attributes {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	s.log.Info("Ledger event", attrs...)
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis YAML file (overrides PAYVAULT_GENESIS and config GenesisFile)")
	memoryFlag := flag.Bool("memory", false, "DEV ONLY: keep state in memory instead of the data directory")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("PAYVAULT_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if env == "" {
		env = cfg.ServiceEnv
	}

	logger := logging.Setup("payvaultd", env, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))

	var db storage.Database
	if *memoryFlag {
		db = storage.NewMemDB()
	} else {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			logger.Error("Failed to prepare data directory", slog.Any("error", err))
			os.Exit(1)
		}
		leveldb, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
		if err != nil {
			logger.Error("Failed to open database", slog.Any("error", err))
			os.Exit(1)
		}
		defer leveldb.Close()
		db = leveldb
	}

	ledger := core.NewLedger(db, observability.NewEventRecorder(&eventLogger{log: logger}))

	genesisPath := resolveGenesisPath(*genesisFlag, cfg.GenesisFile, os.LookupEnv)
	if _, err := ledger.Owner(); err != nil {
		if !errors.Is(err, access.ErrNotBootstrapped) {
			logger.Error("Failed to read owner role", slog.Any("error", err))
			os.Exit(1)
		}
		if genesisPath == "" {
			logger.Error("Fresh data directory requires a genesis document")
			os.Exit(1)
		}
		doc, err := genesis.Load(genesisPath)
		if err != nil {
			logger.Error("Failed to load genesis document", slog.Any("error", err))
			os.Exit(1)
		}
		if err := doc.Apply(ledger); err != nil {
			logger.Error("Failed to apply genesis document", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Applied genesis document", slog.String("path", genesisPath))
	}

	owner, err := ledger.Owner()
	if err != nil {
		logger.Error("Ledger left unbootstrapped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Ledger ready",
		slog.String("owner", common.Address(owner).Hex()),
		slog.Bool("payments_allowed", ledger.PaymentsAllowed()),
	)

	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddress,
		Handler: promhttp.Handler(),
	}
	go func() {
		logger.Info("Serving metrics", slog.String("address", cfg.MetricsAddress))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", slog.String("signal", sig.String()))
	_ = metricsSrv.Close()
}

// resolveGenesisPath picks the genesis document location: CLI flag first, then
// environment, then the configured file.
func resolveGenesisPath(flagValue, configured string, lookup func(string) (string, bool)) string {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return trimmed
	}
	if fromEnv, ok := lookup(genesisPathEnv); ok {
		if trimmed := strings.TrimSpace(fromEnv); trimmed != "" {
			return trimmed
		}
	}
	return strings.TrimSpace(configured)
}
