package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/lacandula/weather-dashboard/internal/api/http"
	"github.com/lacandula/weather-dashboard/internal/blob"
	"github.com/lacandula/weather-dashboard/internal/config"
	"github.com/lacandula/weather-dashboard/internal/store"
	"github.com/lacandula/weather-dashboard/internal/sweeper"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Relational store for history, notes, images and photos.
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	// Disk blob store for uploaded binaries.
	blobs, err := blob.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to open blob store: %v", err)
	}

	// Periodic orphan-blob reconciliation.
	sw := sweeper.New(st, blobs, cfg.SweepInterval, cfg.SweepMinAge)
	if err := sw.Start(); err != nil {
		log.Fatalf("failed to start sweeper: %v", err)
	}
	defer sw.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dashboard",
		})
	})

	// Uploaded binaries are served statically under the same prefix the
	// image_url rows carry.
	app.Static(httpapi.UploadURLPrefix, blobs.Dir())

	// API routes.
	httpapi.RegisterRoutes(app, st, blobs)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
