package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medscan/medscan/internal/config"
	"github.com/medscan/medscan/internal/domain/analysis"
	"github.com/medscan/medscan/internal/domain/report"
	"github.com/medscan/medscan/internal/platform/db"
	"github.com/medscan/medscan/internal/platform/llm"
	"github.com/medscan/medscan/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medscan-server",
		Short: "Medical Report Scanner API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the report scanner API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the saved_reports schema on Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := report.EnsureSchema(ctx, pool); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}

	// Storage
	ctx := context.Background()
	repo, cleanup, durableConnected := buildRepository(ctx, cfg, logger)
	defer cleanup()

	// LLM client
	llmClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, logger)
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY is not set, analysis requests will fail")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// API group
	api := e.Group("/api")
	api.GET("/", rootHandler(durableConnected))
	api.GET("/health", healthHandler(repo, durableConnected))

	reportHandler := report.NewHandler(report.NewService(repo))
	reportHandler.RegisterRoutes(api)

	analysisHandler := analysis.NewHandler(analysis.NewService(llmClient))
	analysisHandler.RegisterRoutes(api)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("storage", repo.Name()).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

// buildRepository selects the storage backend: MongoDB when MONGO_URL
// is set, Postgres when DATABASE_URL is set, process memory otherwise.
// A durable store that cannot be reached at startup degrades the
// server to memory with a warning instead of failing boot. The third
// return value reports whether a durable store is in use.
func buildRepository(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (report.ReportRepository, func(), bool) {
	memory := report.NewReportRepoMemory()

	if !cfg.HasDurableStore() {
		logger.Warn().Msg("no durable store configured, using in-memory storage")
		return memory, func() {}, false
	}

	if cfg.MongoURL != "" {
		client, err := db.NewMongo(ctx, cfg.MongoURL)
		if err != nil {
			logger.Warn().Err(err).Msg("mongodb unreachable, using in-memory storage")
			return memory, func() {}, false
		}
		logger.Info().Str("db", cfg.DBName).Msg("connected to mongodb")
		durable := report.NewReportRepoMongo(client, cfg.DBName)
		cleanup := func() { _ = client.Disconnect(context.Background()) }
		return report.NewReportRepoFallback(durable, memory, logger), cleanup, true
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Warn().Err(err).Msg("postgres unreachable, using in-memory storage")
		return memory, func() {}, false
	}
	if err := report.EnsureSchema(ctx, pool); err != nil {
		logger.Warn().Err(err).Msg("postgres schema setup failed, using in-memory storage")
		pool.Close()
		return memory, func() {}, false
	}
	logger.Info().Msg("connected to postgres")
	durable := report.NewReportRepoPG(pool)
	return report.NewReportRepoFallback(durable, memory, logger), pool.Close, true
}

func rootHandler(durableConnected bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message":           "Medical Report Scanner API",
			"version":           "1.0",
			"durable_connected": durableConnected,
		})
	}
}

func healthHandler(repo report.ReportRepository, durableConnected bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		durable := "disconnected"
		if durableConnected {
			if err := repo.Ping(c.Request().Context()); err != nil {
				durable = "error: " + err.Error()
			} else {
				durable = "connected"
			}
		}
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"storage": repo.Name(),
			"durable": durable,
		})
	}
}
