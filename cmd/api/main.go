package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/woodchen-ink/aice-ps/internal/batch"
	"github.com/woodchen-ink/aice-ps/internal/editor"
	"github.com/woodchen-ink/aice-ps/internal/genai"
	"github.com/woodchen-ink/aice-ps/internal/http/handlers"
	"github.com/woodchen-ink/aice-ps/internal/http/httpapi"
	"github.com/woodchen-ink/aice-ps/internal/infra"
	"github.com/woodchen-ink/aice-ps/internal/infra/geoip"
	"github.com/woodchen-ink/aice-ps/internal/infra/settings"
	"github.com/woodchen-ink/aice-ps/internal/middleware"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// DB is optional: without it the settings store and gallery are off.
	var (
		sqlRunner     infra.SQLExecutor
		settingsStore *settings.Store
	)
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		runner := infra.NewSQLRunner(dbpool, logger)
		sqlRunner = runner
		settingsStore = settings.NewStore(runner)
	}

	apiKey := cfg.GeminiAPIKey
	baseURL := cfg.GeminiBaseURL
	if settingsStore != nil {
		if stored, err := settingsStore.GeminiAPIKey(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to load stored gemini key")
		} else if stored != "" {
			apiKey = stored
		}
		if stored, err := settingsStore.GeminiBaseURL(ctx); err == nil && stored != "" {
			baseURL = stored
		}
	}

	provider, err := genai.NewProvider(genai.Options{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini provider")
	}
	if !provider.Configured() {
		logger.Warn().Msg("gemini api key not configured; edits will fail until one is set")
	}

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable")
	} else if resolver != nil {
		defer resolver.Close()
		countryLookup = resolver.Func()
	}

	sessionStore := editor.NewSessionStore()
	service := editor.NewService(provider, sessionStore, cfg.UploadMaxBytes, logger)
	pool := batch.NewPool(cfg.BatchConcurrency)

	app := handlers.NewApp(handlers.Options{
		Config:     cfg,
		Logger:     logger,
		Service:    service,
		Generator:  provider,
		Pool:       pool,
		Configurer: provider,
		Settings:   settingsStore,
		SQL:        sqlRunner,
	})

	router := httpapi.New(app, httpapi.Options{
		Config:        cfg,
		Logger:        logger,
		CountryLookup: countryLookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	// Drop sessions nobody has touched in a while.
	pruneDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := sessionStore.PruneIdle(cfg.SessionMaxIdle); n > 0 {
					logger.Info().Int("sessions", n).Msg("pruned idle sessions")
				}
			case <-pruneDone:
				return
			}
		}
	}()

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	close(pruneDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
