package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/agencyportal/internal/app/controllers"
	appMigrations "github.com/yigit/agencyportal/internal/app/migrations"
	appRepos "github.com/yigit/agencyportal/internal/app/repositories"
	appRoutes "github.com/yigit/agencyportal/internal/app/routes"
	appServices "github.com/yigit/agencyportal/internal/app/services"
	"github.com/yigit/agencyportal/internal/config"
	"github.com/yigit/agencyportal/internal/db"
	appMiddleware "github.com/yigit/agencyportal/internal/middleware"
	pkgAuth "github.com/yigit/agencyportal/internal/pkg/auth"
	"github.com/yigit/agencyportal/internal/pkg/email"
	"github.com/yigit/agencyportal/internal/pkg/filestorage"
	"github.com/yigit/agencyportal/internal/pkg/helpers"
	"github.com/yigit/agencyportal/internal/pkg/logger"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
	"github.com/yigit/agencyportal/internal/pkg/validation"
	"github.com/yigit/agencyportal/internal/seed"
)

// Databases holds the two backing stores
type Databases struct {
	Postgres *db.PostgresDB
	Mongo    *db.MongoDB
}

// Close releases both stores
func (d *Databases) Close() {
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.Mongo != nil {
		_ = d.Mongo.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    *appControllers.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Sessions       *pkgAuth.SessionService
	Hub            *realtime.Hub
	FileStorage    *filestorage.LocalStorage
	Logger         zerolog.Logger
}

// ConfigPath returns the config file location, CONFIG_PATH overrides the default
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join("configs", "config.yaml")
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects Postgres and MongoDB and applies the SQL migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*Databases, error) {
	lgr.Info().Msg("Establishing database connection...")
	pg, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	dbs := &Databases{Postgres: pg}

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbs.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(pg.Pool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbs.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	lgr.Info().Msg("Connecting to document store...")
	mongoDB, err := db.NewMongoDB(cfg)
	if err != nil {
		dbs.Close()
		lgr.Error().Err(err).Msg("Failed to connect to MongoDB")
		return nil, err
	}
	dbs.Mongo = mongoDB
	lgr.Info().Str("database", cfg.Mongo.Database).Msg("Document store connected.")

	return dbs, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbs *Databases, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps := &Dependencies{Logger: lgr}
	maxUploadBytes := int64(cfg.Server.MaxUploadMB) << 20
	deps.Repos = appRepos.NewRepositories(dbs.Postgres.Pool, dbs.Mongo.Database)

	if err := seed.CreateDefaultData(context.Background(), deps.Repos, seed.AdminAccount{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	sessionTTL := helpers.ParseDuration(cfg.Session.Expiration, 24*time.Hour)
	deps.Sessions = pkgAuth.NewSessionService(pkgAuth.SessionConfig{
		SecretKey:   cfg.Session.Secret,
		Expiration:  sessionTTL,
		TokenIssuer: cfg.Session.Issuer,
	})

	deps.Hub = realtime.NewHub(cfg.Realtime.ClientBuffer, logger.Component("realtime"))

	var mailer email.EmailService = email.NopEmailService{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewEmailService(email.SMTPConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Username:  cfg.SMTP.Username,
			Password:  cfg.SMTP.Password,
			FromName:  cfg.SMTP.FromName,
			FromEmail: cfg.SMTP.FromEmail,
			UseTLS:    cfg.SMTP.UseTLS,
		}, logger.Component("email"))
	} else {
		lgr.Warn().Msg("SMTP host not configured, notification emails are disabled")
	}

	deps.Services = appServices.NewServices(appServices.Deps{
		Repos:    deps.Repos,
		Sessions: deps.Sessions,
		Events:   deps.Hub,
		Mailer:   mailer,
		Storage:  deps.FileStorage,
		Logger:   lgr,
		Options: appServices.Options{
			DefaultCommissionRate: cfg.Payments.DefaultCommissionRate,
			Currency:              cfg.Payments.Currency,
			MaxUploadBytes:        maxUploadBytes,
		},
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Sessions, cfg.Session.CookieName)

	deps.Controllers = appControllers.NewControllers(deps.Services, appControllers.Options{
		Cookie:    appControllers.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		Hub:       deps.Hub,
		Upgrader:  realtime.NewUpgrader(cfg.Server.AllowedOrigins),
		Heartbeat: helpers.ParseDuration(cfg.Realtime.HeartbeatInterval, 30*time.Second),
		HealthChecks: map[string]appControllers.HealthCheck{
			"postgres": dbs.Postgres.Ping,
			"mongo":    dbs.Mongo.Ping,
		},
		MaxUploadBytes: maxUploadBytes,
	}, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.AccessLog(logger.Component("http")),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	return router
}
