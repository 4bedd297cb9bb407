package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/ad-management/internal"
	"github.com/frahmantamala/ad-management/internal/ad"
	adPostgres "github.com/frahmantamala/ad-management/internal/ad/postgres"
	"github.com/frahmantamala/ad-management/internal/adattribute"
	attrPostgres "github.com/frahmantamala/ad-management/internal/adattribute/postgres"
	"github.com/frahmantamala/ad-management/internal/adgraphic"
	graphicPostgres "github.com/frahmantamala/ad-management/internal/adgraphic/postgres"
	"github.com/frahmantamala/ad-management/internal/auth"
	authPostgres "github.com/frahmantamala/ad-management/internal/auth/postgres"
	"github.com/frahmantamala/ad-management/internal/core/events"
	"github.com/frahmantamala/ad-management/internal/mediahost"
	"github.com/frahmantamala/ad-management/internal/transport/rest"
	"github.com/frahmantamala/ad-management/internal/transport/swagger"
	"github.com/frahmantamala/ad-management/internal/user"
	userPostgres "github.com/frahmantamala/ad-management/internal/user/postgres"
	"github.com/frahmantamala/ad-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	MediaClient *mediahost.Client
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.MediaClient.Shutdown()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Observability.Logging.Format == "json" {
		logger.Init("production")
	} else {
		logger.Init("development")
	}
	lg := logger.LoggerWrapper()

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, fmt.Errorf("openapi spec: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	tokenService, err := auth.NewTokenServiceFromConfig(config.Security)
	if err != nil {
		return nil, fmt.Errorf("failed to build token service: %w", err)
	}

	// repositories
	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewRepository(gormDB)
	adRepo := adPostgres.NewRepository(gormDB)
	attrRepo := attrPostgres.NewRepository(gormDB)
	graphicRepo := graphicPostgres.NewRepository(gormDB)

	// services
	sessionService := auth.NewSessionService(authRepo)
	authService := auth.NewService(authRepo, sessionService, tokenService)
	userService := user.NewService(userRepo, config.Security.BCryptCost)
	adService := ad.NewService(adRepo)
	attrService := adattribute.NewService(attrRepo, adRepo)

	eventBus := events.NewEventBus(lg)
	graphicService := adgraphic.NewService(graphicRepo, eventBus, config.Media.UploadDir, lg)

	// media pipeline
	compressor := mediahost.NewCompressor(config.Media.FFmpegPath, config.Media.FFprobePath, config.Media.CompressionPercent)
	mediaClient := mediahost.NewClient(mediahost.Config{
		APIURL:         config.Media.APIURL,
		APIKey:         config.Media.APIKey,
		UploadTimeout:  config.Media.UploadTimeout,
		MaxWorkers:     config.Media.MaxWorkers,
		JobQueueSize:   config.Media.JobQueueSize,
		WorkerPoolSize: config.Media.WorkerPoolSize,
	}, compressor, graphicService.SetHostedURL, lg)
	eventBus.Subscribe(events.TypeGraphicUploaded, mediaClient.HandleGraphicUploaded)

	// authorization
	engine := auth.NewEngine(auth.DefaultRules(), map[auth.Resource]auth.OwnerResolver{
		auth.ResourceAd:          adRepo,
		auth.ResourceAdAttribute: attrRepo,
		auth.ResourceAdGraphic:   graphicRepo,
	}, lg)

	// handlers
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userService)
	adHandler := ad.NewHandler(adService)
	attrHandler := adattribute.NewHandler(attrService)
	graphicHandler := adgraphic.NewHandler(graphicService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB,
		authHandler, engine,
		userHandler, adHandler, attrHandler, graphicHandler,
		config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config:      config,
		DB:          db,
		GormDB:      gormDB,
		Router:      router,
		Logger:      lg,
		MediaClient: mediaClient,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
