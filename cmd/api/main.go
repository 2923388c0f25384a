package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	pkgvalidator "github.com/meetingnotes-team/meeting-notes/pkg/validator"

	"github.com/meetingnotes-team/meeting-notes/internal/adapter/handler"
	"github.com/meetingnotes-team/meeting-notes/internal/adapter/repository"
	"github.com/meetingnotes-team/meeting-notes/internal/domain/entities"
	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/cache"
	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/database"
	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/metrics"
	"github.com/meetingnotes-team/meeting-notes/internal/infrastructure/storage"
	"github.com/meetingnotes-team/meeting-notes/internal/usecase/analysis"
	pkgai "github.com/meetingnotes-team/meeting-notes/pkg/ai"
	"github.com/meetingnotes-team/meeting-notes/pkg/config"
	"github.com/meetingnotes-team/meeting-notes/pkg/jwt"
)

// @title           Meeting Notes API
// @version         1.0
// @description     API for chunked long-audio meeting analysis and report synthesis

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Apply optional section catalog overrides
	overrides, err := cfg.LoadSectionOverrides()
	if err != nil {
		log.Fatalf("Failed to load section catalog overrides: %v", err)
	}
	for _, o := range overrides {
		entities.OverrideSection(o.Key, o.Title, o.Description)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize job status cache, Redis with in-memory fallback
	log.Println("📦 Connecting to Redis...")
	var statusCache cache.StatusCache
	redisStore, err := cache.NewRedisStore(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable, falling back to in-memory status cache: %v", err)
		statusCache = cache.NewMemoryStore()
	} else {
		defer redisStore.Close()
		statusCache = redisStore
	}

	// Initialize object storage
	log.Println("🗄️  Initializing object storage...")
	minioClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO client: %v", err)
	}

	// Initialize Prometheus metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize AI clients
	log.Println("🤖 Initializing AI components...")
	voxtralClient := pkgai.NewVoxtralClient(&cfg.Mistral)

	var diarizer pkgai.Diarizer = pkgai.NoopDiarizer{}
	if cfg.Assembly.Enabled {
		diarizer = pkgai.NewAssemblyAIDiarizer(cfg.Assembly.APIKey, logger)
		log.Println("🗣️  Speaker diarization enabled (AssemblyAI)")
	} else {
		log.Println("⚠️  Speaker diarization disabled")
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	jobRepo := repository.NewAnalysisJobRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Initialize analysis service and worker pool
	log.Println("🧠 Initializing analysis service...")
	analysisService := analysis.NewService(
		jobRepo,
		reportRepo,
		statusCache,
		minioClient,
		diarizer,
		voxtralClient,
		m,
		cfg,
		logger,
	)
	if err := analysisService.StartWorkerPool(context.Background(), cfg.Worker.Count); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}
	log.Printf("👷 Worker pool started with %d workers", cfg.Worker.Count)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	// Initialize handlers
	analysisHandler := handler.NewAnalysis(analysisService, logger)
	recordingHandler := handler.NewRecording(minioClient, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, analysisHandler, recordingHandler, jwtManager)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	if err := analysisService.StopWorkerPool(); err != nil {
		log.Printf("⚠️  Worker pool shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
