package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"chart-collab/src/candles"
	"chart-collab/src/collab"
	"chart-collab/src/config"
	"chart-collab/src/feed"
	"chart-collab/src/feed/exchanges"
	"chart-collab/src/interfaces"
	"chart-collab/src/logger"
	"chart-collab/src/models"
	"chart-collab/src/network"
	"chart-collab/src/server"
	"chart-collab/src/storage"
)

// -----------------------------------------------------------------------------

const initialBars = 300

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Setup Storage
	var db interfaces.IDrawingStore

	switch config.Storage.DBType {
	case "postgres":
		db, err = storage.NewPostgresStore(config.MConfig, appLogger)
	default:
		// Default to SQLite
		db, err = storage.NewSQLiteStore(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 3. Setup Network and Feeds
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(config.MConfig, appLogger)

	registry := feed.NewRegistry(appLogger)
	for _, exCfg := range config.Exchanges {
		switch exCfg.Name {
		case "coinbase":
			registry.Register(exchanges.NewCoinbase(), exCfg)
		case "binance":
			registry.Register(exchanges.NewBinance(), exCfg)
		case "kraken":
			registry.Register(exchanges.NewKraken(), exCfg)
		default:
			appLogger.Warning("No feed parser for exchange %s, skipping", exCfg.Name)
		}
	}
	defer registry.Destroy()

	// 4. Candle Pipeline
	history := candles.NewHistoryClient(config.History.BaseURL, networkManager, appLogger)
	aggregator := candles.NewAggregator(history, appLogger)

	// 5. Collaboration Engine
	engine := collab.NewEngine(config.Collab, db, networkManager, appLogger)
	defer engine.Close()

	// 6. Start Server (room relay + candle proxy)
	srv := server.NewServer(config, networkManager, appLogger)
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Attach the live feed to the active chart series
	unsubscribe, err := watchChart(engine, registry, aggregator, appLogger)
	if err != nil {
		appLogger.Error("Live feed unavailable: %v", err)
	} else {
		defer unsubscribe()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("chart-collab running")
	<-quit
	appLogger.Info("Shutting down...")
}

// -----------------------------------------------------------------------------

// watchChart subscribes the candle aggregator to the series the session
// currently displays and mirrors the feed connection status into the
// app state.
func watchChart(engine *collab.Engine, registry *feed.Registry, aggregator *candles.Aggregator, log *logger.Logger) (func(), error) {
	data := engine.State().Chart.Data

	if err := aggregator.SetSeries(data.Symbol, data.Exchange, data.Timeframe); err != nil {
		return nil, err
	}
	if _, err := aggregator.LoadHistory(initialBars); err != nil {
		log.Warning("Backfill failed, live ticks only: %v", err)
	}

	cancelTicks, err := registry.Subscribe(data.Symbol, data.Exchange, func(tick models.MTickData) {
		aggregator.ApplyTick(tick)
	})
	if err != nil {
		return nil, err
	}

	watchStatus, err := registry.ConnectionStatus(data.Exchange)
	if err != nil {
		cancelTicks()
		return nil, err
	}
	cancelStatus := watchStatus(func(state models.MConnectionState) {
		if action, err := models.NewAction(models.ActionSetChartStatus,
			models.MStatusPayload{Status: state.Status}); err == nil {
			engine.Dispatch(action)
		}
	})

	return func() {
		cancelStatus()
		cancelTicks()
	}, nil
}
