package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/JarviousX/yogitrack-studio-management/internal/config"
	"github.com/JarviousX/yogitrack-studio-management/internal/database"
	"github.com/JarviousX/yogitrack-studio-management/internal/handlers"
	"github.com/JarviousX/yogitrack-studio-management/internal/metrics"
	"github.com/JarviousX/yogitrack-studio-management/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx, configDir())
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := setupLogger(cfg.App)
	slog.SetDefault(log)
	log.Info("starting", slog.String("app", cfg.App.Name), slog.String("env", cfg.App.Environment))

	// money is sent as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	openCtx, cancel := context.WithTimeout(ctx, time.Minute)
	st, err := database.Open(openCtx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to open store", slog.Any("error", err))
		os.Exit(1)
	}
	defer st.Close()

	svc := service.New(st, service.WithLogger(log))
	h := handlers.New(svc,
		handlers.WithLogger(log),
		handlers.WithTimeout(cfg.Server.RequestTimeout),
		handlers.WithProduction(cfg.App.IsProduction()),
		handlers.WithProblemBaseURL(cfg.Server.ProblemBaseURL),
	)

	engine := html.New(cfg.Server.TemplatePath, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		AppName:      cfg.App.Name,
		ViewsLayout:  "layouts/base",
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: h.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(compress.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: corsOrigins(cfg.Server.CORSOrigins)}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, try again later")
		},
	}))
	app.Use(etag.New())

	if cfg.Metrics.Enabled {
		app.Use(metrics.Middleware())
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	app.Static("/static", cfg.Server.StaticPath)
	h.Register(app)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", cfg.Server.Port))
		errCh <- app.Listen(cfg.Server.Port)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", slog.Any("error", err))
		}
	}

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Error("failed to stop server", slog.Any("error", err))
	}
	log.Info("stopped")
}

// configDir holds config.yaml; YOGITRACK_CONFIG_DIR overrides the working
// directory.
func configDir() string {
	if dir := os.Getenv("YOGITRACK_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

func setupLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	switch app.Environment {
	case "local", "development", "dev":
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func corsOrigins(v string) string {
	if strings.TrimSpace(v) == "" {
		return "*"
	}
	return v
}
