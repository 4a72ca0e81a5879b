// Package main is the entry point for the dividend portfolio service. It
// wires the two sqlite databases, the quote client, the analysis modules and
// the HTTP server, and runs the scheduled universe refresh.
package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/broadcast777/my-dividend-app/internal/clients/quotes"
	"github.com/broadcast777/my-dividend-app/internal/config"
	"github.com/broadcast777/my-dividend-app/internal/database"
	"github.com/broadcast777/my-dividend-app/internal/modules/calendar"
	"github.com/broadcast777/my-dividend-app/internal/modules/exposure"
	"github.com/broadcast777/my-dividend-app/internal/modules/portfolio"
	"github.com/broadcast777/my-dividend-app/internal/modules/recommendation"
	"github.com/broadcast777/my-dividend-app/internal/modules/simulation"
	"github.com/broadcast777/my-dividend-app/internal/modules/snapshots"
	"github.com/broadcast777/my-dividend-app/internal/modules/universe"
	"github.com/broadcast777/my-dividend-app/internal/scheduler"
	"github.com/broadcast777/my-dividend-app/internal/server"
	"github.com/broadcast777/my-dividend-app/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting dividend service")

	// universe.db holds the durable domain state: the security universe and
	// the look-through holdings. cache.db holds ephemeral data: snapshots and
	// stored recommendation results.
	universeDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "universe.db"),
		Profile: database.ProfileStandard,
		Name:    "universe",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open universe database")
	}
	defer universeDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, schema := range []struct {
		db  *database.DB
		ddl string
	}{
		{universeDB, universe.Schema},
		{universeDB, exposure.Schema},
		{cacheDB, snapshots.Schema},
		{cacheDB, recommendation.Schema},
	} {
		if err := schema.db.ApplySchema(schema.ddl); err != nil {
			log.Fatal().Err(err).Str("db", schema.db.Name()).Msg("Failed to apply schema")
		}
	}

	quoteClient := quotes.NewClient(quotes.Config{
		DomesticBaseURL:     cfg.DomesticQuoteBaseURL,
		OverseasBaseURL:     cfg.OverseasQuoteBaseURL,
		MaxRetries:          cfg.QuoteMaxRetries,
		RetryBackoff:        time.Duration(cfg.QuoteRetryBackoffMS) * time.Millisecond,
		Timeout:             time.Duration(cfg.QuoteTimeoutSeconds) * time.Second,
		DivergenceThreshold: cfg.DivergenceThreshold,
	}, log)

	// Universe module
	securityRepo := universe.NewSecurityRepository(universeDB.Conn(), log)
	enricher := universe.NewEnricher(quoteClient, cfg.RefreshWorkers, log)
	refresher := universe.NewRefresher(securityRepo, quoteClient, cfg.RefreshWorkers, log)
	progressHub := universe.NewProgressHub()
	snapshotStore := snapshots.NewStore(cacheDB.Conn(),
		time.Duration(cfg.SnapshotTTLMinutes)*time.Minute, log)
	universeHandler := universe.NewHandler(securityRepo, enricher, refresher, snapshotStore, progressHub, log)

	// Exposure module
	holdingsRepo := exposure.NewHoldingsRepository(universeDB.Conn(), log)
	exposureService := exposure.NewService(holdingsRepo, log)
	exposureHandler := exposure.NewHandler(exposureService, log)

	// Recommendation module
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	engine := recommendation.NewEngine(rng, log)
	recommendationRepo := recommendation.NewRepository(cacheDB.Conn(), log)
	recommendationHandler := recommendation.NewHandler(engine, recommendationRepo, securityRepo, enricher, log)

	// Simulation, portfolio and calendar modules
	simulationHandler := simulation.NewHandler(log)
	portfolioHandler := portfolio.NewHandler(securityRepo, log)
	calendarHandler := calendar.NewHandler(securityRepo, log)

	// Scheduled refresh
	sched := scheduler.New(log)
	refreshJob := universe.NewRefreshJob(refresher, progressHub, snapshotStore, log)
	if err := sched.AddJob(cfg.RefreshCron, refreshJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshCron).Msg("Failed to register refresh job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:                   log,
		Cfg:                   cfg,
		UniverseDB:            universeDB,
		CacheDB:               cacheDB,
		UniverseHandler:       universeHandler,
		ExposureHandler:       exposureHandler,
		RecommendationHandler: recommendationHandler,
		SimulationHandler:     simulationHandler,
		PortfolioHandler:      portfolioHandler,
		CalendarHandler:       calendarHandler,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
