package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"scriptreel/internal/adapter/repo"
	"scriptreel/internal/http/handlers"
	httpapi "scriptreel/internal/http/httpapi"
	"scriptreel/internal/infra"
	"scriptreel/internal/providers/genai"
	"scriptreel/internal/providers/video"
	"scriptreel/internal/relay"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	bootLogger := infra.NewLogger(os.Getenv("APP_ENV"))
	cfg, err := infra.LoadConfig()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Generation ledger (optional)
	var ledger handlers.Ledger = repo.NopRepo{}
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	if dbpool != nil {
		defer dbpool.Close()
		generations := repo.NewGenerationRepo(infra.NewSQLRunner(dbpool, logger))
		if err := generations.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare generation ledger")
		}
		ledger = generations
		logger.Info().Msg("generation ledger enabled")
	}

	gemini := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.ProviderTimeout},
		Logger:     &logger,
	})

	allowed := append([]string{}, cfg.RelayAllowedHosts...)
	if u, err := url.Parse(cfg.GeminiBaseURL); err == nil && u.Hostname() != "" {
		allowed = append(allowed, u.Hostname())
	}
	downloads := relay.New(relay.Options{
		Authorizer:   gemini,
		AllowedHosts: allowed,
		Logger:       &logger,
	})

	app := handlers.NewApp(handlers.Deps{
		Videos:           video.NewVeoGenerator(gemini, &logger),
		Downloads:        downloads,
		Ledger:           ledger,
		Logger:           &logger,
		APIKeyConfigured: gemini.Configured(),
	})

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             &logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Strs("relay_hosts", allowed).Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
