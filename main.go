package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/sehatsaathi/sehat-backend/database"
	"github.com/sehatsaathi/sehat-backend/internal/advice"
	"github.com/sehatsaathi/sehat-backend/internal/cache"
	"github.com/sehatsaathi/sehat-backend/internal/chat"
	"github.com/sehatsaathi/sehat-backend/internal/config"
	"github.com/sehatsaathi/sehat-backend/internal/geo"
	"github.com/sehatsaathi/sehat-backend/internal/handlers"
	"github.com/sehatsaathi/sehat-backend/internal/jobs"
	"github.com/sehatsaathi/sehat-backend/internal/logging"
	"github.com/sehatsaathi/sehat-backend/internal/notify"
	"github.com/sehatsaathi/sehat-backend/internal/routes"
	"github.com/sehatsaathi/sehat-backend/internal/session"
	"github.com/sehatsaathi/sehat-backend/internal/storage"
)

const (
	serviceName = "sehat-saathi"
	version     = "2.0.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "sehat-backend",
		Short:         "Sehat Saathi rural healthcare chatbot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("❌ Command failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chatbot API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and seed the doctor and service catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg.DSN(), cfg.IsDevelopment())
			if err != nil {
				return err
			}
			defer database.Close(db)

			return prepareDatabase(cmd.Context(), storage.NewDatabaseStore(db))
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

// loadConfig reads .env files for local development, then the environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("environments/.env.development"); err != nil {
			fmt.Fprintln(os.Stderr, "⚠️  No .env file found - checking environment variables")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(serviceName, cfg.Environment)
	return cfg, nil
}

type migrator interface {
	Migrate(ctx context.Context) error
	SeedDefaults(ctx context.Context) error
}

func prepareDatabase(ctx context.Context, store migrator) error {
	log.Info().Msg("🔄 Running database migrations...")
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := store.SeedDefaults(ctx); err != nil {
		return err
	}
	log.Info().Msg("✅ Database migrations completed!")
	return nil
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	if cfg.UseMemoryStore {
		log.Warn().Msg("⚠️  Using in-memory storage (not for production!)")
		mem := storage.NewMemoryStore()
		if err := mem.SeedDefaults(ctx); err != nil {
			return err
		}
		store = mem
	} else {
		log.Info().Msg("📦 Connecting to PostgreSQL database...")
		db, err := database.Connect(cfg.DSN(), cfg.IsDevelopment())
		if err != nil {
			return err
		}
		defer database.Close(db)

		dbStore := storage.NewDatabaseStore(db)
		if err := prepareDatabase(ctx, dbStore); err != nil {
			return err
		}
		store = dbStore
		log.Info().Msg("✅ Using PostgreSQL database storage")
	}

	// Redis backs sessions and the geocode cache when configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			if cfg.SessionBackend == "redis" {
				return err
			}
			log.Warn().Err(err).Msg("⚠️  Redis unavailable, geocode cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var sessions session.Store
	if cfg.SessionBackend == "redis" {
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
		log.Info().Msg("✅ Using Redis session store")
	} else {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		defer mem.Close()
		sessions = mem
	}

	var geoCache geo.Cache
	if redisClient != nil {
		geoCache = cache.NewRedisCache(redisClient, "geocode:")
	}
	locator := geo.NewLocator(
		geo.NewNominatimGeocoder(cfg.NominatimURL, nil),
		geo.NewOverpassSearcher(cfg.OverpassURL, nil),
		geoCache, cfg.SearchRadiusM, cfg.SearchLimit,
	)

	var llm advice.TextGenerator
	if cfg.GeminiEnabled() {
		llm = advice.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, "", nil)
		log.Info().Str("model", cfg.GeminiModel).Msg("✅ Gemini advice enabled")
	} else {
		log.Warn().Msg("⚠️  GEMINI_API_KEY not set - using fallback health advice")
	}
	adviser := advice.NewGenerator(llm)

	sender := notify.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
	engine := chat.NewEngine(store, sessions, locator, adviser, sender)

	// Without Twilio the webhook answers inline
	var webhookSender notify.Sender
	if cfg.TwilioEnabled() {
		webhookSender = sender
	}

	reminders := jobs.NewReminderJob(store, sender, cfg.ReminderInterval)
	reminders.Start(ctx)
	defer reminders.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Sehat Saathi v" + version,
		ErrorHandler: handlers.ErrorHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Chat:     handlers.NewChatHandler(engine),
		WhatsApp: handlers.NewWhatsAppHandler(engine, webhookSender),
		Admin: handlers.NewAdminHandler(store, sender, handlers.AdminConfig{
			Username:     cfg.AdminUsername,
			Password:     cfg.AdminPassword,
			PasswordHash: cfg.AdminPasswordHash,
			Secret:       cfg.SecretKey,
			SecureCookie: !cfg.IsDevelopment(),
		}),
		Health: handlers.NewHealthHandler(store, sessions, handlers.HealthInfo{
			Version:       version,
			Mode:          cfg.StorageMode(),
			TwilioEnabled: cfg.TwilioEnabled(),
			GeminiEnabled: adviser.Enabled(),
		}),
	}, routes.Options{
		Development:              cfg.IsDevelopment(),
		DisableWebhookValidation: cfg.DisableWebhookValidation,
		TwilioAuthToken:          cfg.TwilioAuthToken,
		SecretKey:                cfg.SecretKey,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("🛑 Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("❌ Server shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("storage", cfg.StorageMode()).
		Str("sessions", cfg.SessionBackend).
		Str("environment", cfg.Environment).
		Bool("whatsapp", cfg.TwilioEnabled()).
		Bool("gemini", adviser.Enabled()).
		Msg("🚀 Sehat Saathi starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
