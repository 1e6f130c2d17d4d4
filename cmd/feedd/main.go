// feedd streams the venue user channel, normalizes every payload into
// canonical execution reports, journals them, and serves the ops API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/betbot/govenue/binance"
	"github.com/betbot/govenue/internal/feed"
	"github.com/betbot/govenue/internal/journal"
	"github.com/betbot/govenue/internal/ops"
	"github.com/betbot/govenue/pkg/config"
	"github.com/betbot/govenue/pkg/logger"
	"github.com/betbot/govenue/pkg/report"
	"github.com/betbot/govenue/pkg/secretstore"
	"github.com/betbot/govenue/pkg/shutdown"
	"github.com/betbot/govenue/polymarket"
)

func main() {
	configPath := flag.String("config", "", "config file path (.yaml, .yml, .json)")
	envPath := flag.String("env", ".env", "dotenv file path, loaded best-effort")
	flag.Parse()

	_ = godotenv.Load(*envPath)

	if err := logger.InitDefault(); err != nil {
		panic(fmt.Sprintf("init logging: %v", err))
	}

	if *configPath != "" {
		config.SetConfigPath(*configPath)
		logrus.Infof("using config file: %s", *configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		logrus.Errorf("load config: %v", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Errorf("invalid config: %v", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		logrus.Errorf("init logging: %v", err)
		os.Exit(1)
	}

	if err := hydrateSecrets(); err != nil {
		logrus.Errorf("load secret store: %v", err)
		os.Exit(1)
	}

	creds, err := polymarket.CredentialsFromEnv()
	if err != nil {
		logrus.Errorf("venue credentials: %v", err)
		os.Exit(1)
	}
	makerAddr, err := polymarket.MakerAddressFromEnv()
	if err != nil {
		logrus.Errorf("maker address: %v", err)
		os.Exit(1)
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	stopper := shutdown.NewManager()

	var jnl *journal.Journal
	if !cfg.Journal.Disabled {
		jnl, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logrus.Errorf("open journal: %v", err)
			os.Exit(1)
		}
		stopper.OnShutdown("journal", func(ctx context.Context) {
			if err := jnl.Close(); err != nil {
				logrus.Errorf("close journal: %v", err)
			}
		})
		logrus.Infof("journal open: %s", cfg.Journal.Path)
	} else {
		logrus.Warn("journal disabled, reports are not persisted")
	}

	registries, err := bootstrapBinance(rootCtx, cfg)
	if err != nil {
		logrus.Errorf("binance bootstrap: %v", err)
		os.Exit(1)
	}

	instruments := make(map[string]report.Instrument, len(cfg.Instruments))
	for _, ic := range cfg.Instruments {
		id := ic.Symbol
		if id == "" {
			id = ic.AssetID
		}
		instruments[ic.AssetID] = report.Instrument{
			ID:             id,
			Venue:          "POLYMARKET",
			PricePrecision: ic.PricePrecision,
			SizePrecision:  ic.SizePrecision,
		}
	}

	feedCfg := polymarket.DefaultFeedConfig()
	if cfg.Feed.WSURL != "" {
		feedCfg.URL = cfg.Feed.WSURL
	}
	feedCfg.ProxyURL = cfg.Feed.ProxyURL
	feedCfg.Markets = cfg.Feed.Markets
	if cfg.Feed.MaxReconnects > 0 {
		feedCfg.MaxReconnects = cfg.Feed.MaxReconnects
	}
	if cfg.Feed.ReconnectDelay > 0 {
		feedCfg.ReconnectDelay = cfg.Feed.ReconnectDelay
	}

	svc, err := feed.New(feed.Config{
		AccountID:    cfg.AccountID,
		MakerAddress: makerAddr,
		Instruments:  instruments,
		Credentials:  creds,
		Feed:         feedCfg,
		Journal:      jnl,
	})
	if err != nil {
		logrus.Errorf("build feed service: %v", err)
		os.Exit(1)
	}
	if err := svc.Start(rootCtx); err != nil {
		logrus.Errorf("start feed service: %v", err)
		os.Exit(1)
	}
	stopper.OnShutdown("user feed", func(ctx context.Context) { svc.Stop() })

	if !cfg.Ops.Disabled {
		opsCfg := ops.Config{Addr: cfg.Ops.Addr, Registries: registries}
		if jnl != nil {
			opsCfg.Journal = jnl
		}
		opsSrv := ops.New(opsCfg)
		if err := opsSrv.StartAsync(rootCtx); err != nil {
			logrus.Errorf("start ops server: %v", err)
			os.Exit(1)
		}
	}

	logrus.Info("feedd running, Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logrus.Info("stop signal received, shutting down")
	rootCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stopper.Shutdown(shutdownCtx)
}

// hydrateSecrets exports secrets from the encrypted store into the
// environment when GOVENUE_SECRET_DB is set. Variables already present in
// the environment win.
func hydrateSecrets() error {
	dbPath := os.Getenv("GOVENUE_SECRET_DB")
	if dbPath == "" {
		return nil
	}
	key, err := secretstore.ParseKey(os.Getenv("GOVENUE_SECRET_KEY"))
	if err != nil {
		return err
	}
	store, err := secretstore.Open(secretstore.OpenOptions{
		Path:          dbPath,
		EncryptionKey: key,
		ReadOnly:      true,
	})
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.HydrateEnv()
	if err != nil {
		return err
	}
	logrus.Infof("hydrated %d secrets from %s", n, dbPath)
	return nil
}

// bootstrapBinance resolves, pings, and warms the reference-data venue when
// enabled. The returned closure summarizes the shared caches for the ops
// API.
func bootstrapBinance(ctx context.Context, cfg *config.Config) (func() ops.RegistrySummary, error) {
	if !cfg.Binance.Enabled {
		return nil, nil
	}

	accountType, err := binance.ParseAccountType(cfg.Binance.AccountType)
	if err != nil {
		return nil, err
	}
	caches := binance.NewCaches()
	client, err := binance.NewExecClient(caches, binance.ClientConfig{
		AccountType: accountType,
		Testnet:     cfg.Binance.Testnet,
		US:          cfg.Binance.US,
		BaseURLHTTP: cfg.Binance.BaseURLHTTP,
		BaseURLWS:   cfg.Binance.BaseURLWS,
	})
	if err != nil {
		return nil, err
	}

	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := client.Ping(bootCtx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := client.ValidateCredentials(bootCtx); err != nil {
		return nil, fmt.Errorf("validate credentials: %w", err)
	}
	if err := client.Instruments().Load(bootCtx); err != nil {
		return nil, fmt.Errorf("load instruments: %w", err)
	}
	logrus.Infof("binance %s ready, %d instruments", accountType, client.Instruments().Count())

	return func() ops.RegistrySummary {
		return ops.RegistrySummary{
			ConnectionClients: caches.Clients.Len(),
			InstrumentProviders: map[string]int{
				string(accountType): client.Instruments().Count(),
			},
		}
	}, nil
}
