// CLAUDE:SUMMARY Entry point for the maquette HTTP service — chi router, shield stack, optional MCP stdio mode.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hazyhaar/maquette/maquette"
	"github.com/hazyhaar/maquette/shield"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/natefinch/lumberjack.v2"
	_ "modernc.org/sqlite"
)

func main() {
	godotenv.Load()

	port := env("PORT", "8000")
	logLevel := env("LOG_LEVEL", "info")
	logFile := env("LOG_FILE", "")
	mcpTransport := env("MCP_TRANSPORT", "")

	// Logging. In stdio MCP mode stdout carries the protocol, so logs go to
	// stderr (plus the rotated file when configured).
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	var console io.Writer = os.Stdout
	if mcpTransport == "stdio" {
		console = os.Stderr
	}
	out := console
	if logFile != "" {
		out = io.MultiWriter(console, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 5,
		})
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Config: defaults, optional YAML file, then environment.
	cfg, err := maquette.LoadConfig(env("MAQUETTE_CONFIG", ""))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = env("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OutputDir = env("OUTPUT_DIR", cfg.OutputDir)
	cfg.RunsDB = env("RUNS_DB", cfg.RunsDB)
	cfg.ChromeURL = env("CHROME_URL", cfg.ChromeURL)
	cfg.ProjectTag = env("FIREBASE_PROJECT_ID", cfg.ProjectTag)
	cfg.DefaultFramework = env("DEFAULT_FRAMEWORK", cfg.DefaultFramework)

	svc, err := maquette.New(ctx, cfg, logger)
	if err != nil {
		slog.Error("maquette service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	svc.Start(ctx)

	// Stdio MCP mode: serve tools over stdin/stdout instead of HTTP.
	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "maquette",
			Version: maquette.Version,
		}, nil)
		svc.RegisterMCP(mcpSrv)

		slog.Info("MCP stdio serving")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// Rate limiting: clone runs are expensive, reads are not.
	limiter := shield.NewRateLimiter(map[string]shield.RateLimitConfig{
		"POST /clone": {MaxRequests: 10, WindowSeconds: 60, Enabled: true},
	})
	limiter.StartGC(ctx.Done())

	// Router: shield stack in front of the service routes.
	r := chi.NewRouter()
	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
	r.Use(shield.MaxBody(1 << 20))
	r.Use(limiter.Middleware)
	r.Mount("/", svc.Handler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // a clone run spans browser + two model calls
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
