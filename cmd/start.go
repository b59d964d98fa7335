package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"stocktake/core/config"
	"stocktake/core/database"
	"stocktake/core/loader"
	"stocktake/core/logger"
	"stocktake/core/middleware/auth"
	"stocktake/core/middleware/rayid"
	"stocktake/core/storage"

	"stocktake/feature/archive"
	"stocktake/feature/counting"
	"stocktake/feature/counting/models"
	"stocktake/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "stocktake/docs/swagger"
)

// @title Stocktake API
// @version 1.0
// @description API for collaborative inventory counting sessions.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the counting server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (required: all session state lives here)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		if err := models.AutoMigrate(db); err != nil {
			logg.Fatal("Database migration failed", zap.Error(err))
		}
		if err := database.VerifySchema(db, models.Tables()); err != nil {
			logg.Fatal("Schema verification failed", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 5. Initialize Storage (optional: only backs snapshot archival)
		var store storage.Client
		if cfg.Storage.Enabled {
			s, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			store = s
			logg.Info("Snapshot archive enabled", zap.String("bucket", cfg.Storage.Bucket))
		}

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		archiveFeature := archive.NewFeature(store, cfg.Storage.Bucket, logg, db)
		var archiver counting.Archiver
		if archiveFeature.IsEnabled() {
			archiver = archiveFeature.Service()
		}
		mgr.Register(counting.NewFeature(db, logg, archiver))
		mgr.Register(archiveFeature)
		mgr.Register(integrity.NewFeature(store, cfg.Storage.Bucket, logg, db))

		// Middleware Registration
		// RayID must be first so every log line can be traced.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Liveness probe and docs stay public.
		app.Get("/healthz", func(c *fiber.Ctx) error {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Context())
			}
			if err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
			}
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Everything else requires the API key.
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
