package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"forum-importer/core/config"
	"forum-importer/core/database"
	"forum-importer/core/loader"
	"forum-importer/core/logger"
	"forum-importer/core/middleware/auth"
	"forum-importer/core/middleware/rayid"
	"forum-importer/feature/zendesk"
	"forum-importer/feature/zendesk/staging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "forum-importer/docs/swagger"
)

// @title Forum Importer API
// @version 1.0
// @description Read-only status of forum dump migrations.
// @host localhost:8080
// @BasePath /

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the migration status API",
	Long:  `Starts the HTTP server exposing the staging store's audit trail.`,
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

		// 3. Connect to the staging store (optional: the status feature stays off without it)
		var store *staging.Store
		if conn, err := database.Connect(cfg.Staging); err != nil {
			logg.Warn("Staging database connection failed", zap.Error(err))
		} else {
			store = staging.NewStore(conn)
			logg.Info("Connected to staging database")
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 4. Register Features
		mgr := loader.NewManager()
		mgr.Register(zendesk.NewFeature(store, logg))

		// RayID first so every later log line can carry it
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

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
