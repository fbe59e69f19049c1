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

	pkgvalidator "github.com/meetai-dev/meetai-backend/pkg/validator"

	"github.com/meetai-dev/meetai-backend/internal/adapter/handler"
	"github.com/meetai-dev/meetai-backend/internal/adapter/repository"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/cache"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/database"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/external/stream"
	httpmw "github.com/meetai-dev/meetai-backend/internal/infrastructure/http/middleware"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/jobs"
	"github.com/meetai-dev/meetai-backend/internal/infrastructure/storage"
	"github.com/meetai-dev/meetai-backend/internal/usecase/agents"
	"github.com/meetai-dev/meetai-backend/internal/usecase/chat"
	"github.com/meetai-dev/meetai-backend/internal/usecase/lifecycle"
	"github.com/meetai-dev/meetai-backend/internal/usecase/meetings"
	"github.com/meetai-dev/meetai-backend/internal/usecase/summarizer"
	"github.com/meetai-dev/meetai-backend/pkg/ai"
	"github.com/meetai-dev/meetai-backend/pkg/config"
	"github.com/meetai-dev/meetai-backend/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
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
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Apply migrations at startup only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate in CI/CD.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("Startup migrations are enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping startup migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	agentRepo := repository.NewAgentRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	jobRepo := repository.NewProcessingJobRepository(db)

	// Webhook deduplication backend. Redis survives restarts; memory is
	// enough for a single instance.
	var seenSet cache.SeenSet
	if cfg.Jobs.IdempotencyBackend == "redis" {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		seenSet = cache.NewRedisSeenSet(redisClient)
	} else {
		log.Println("📦 Using in-memory webhook deduplication")
		seenSet = cache.NewMemorySeenSet()
	}

	// Initialize call/chat provider clients
	log.Println("🎥 Initializing call provider clients...")
	videoClient := stream.NewVideoClient(&cfg.Stream)
	chatClient := stream.NewChatClient(&cfg.Stream)
	if cfg.Stream.UseMock {
		log.Println("⚠️  Call provider running in MOCK mode (no real server needed)")
	} else {
		log.Printf("✅ Call provider configured: %s", cfg.Stream.BaseURL)
	}

	// Initialize object storage for transcript/recording archives
	var archiver storage.Archiver
	if cfg.Storage.Enabled {
		log.Println("🗄️  Initializing object storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		archiver = minioClient
	} else {
		log.Println("🗄️  Object storage disabled; provider URLs stored as-is")
	}

	// Initialize LLM client
	log.Println("🤖 Initializing LLM client...")
	llmClient := ai.NewLLMClient(&cfg.LLM)

	// Initialize background job runner
	log.Println("⏱️  Initializing job runner...")
	jobClient := jobs.NewClient(jobRepo, logger)
	jobRunner := jobs.NewRunner(jobRepo, logger, cfg.Jobs.WorkerCount, cfg.Jobs.PollInterval)
	summarizer.NewService(meetingRepo, userRepo, agentRepo, llmClient, archiver, logger).Register(jobRunner)

	// Initialize usecase services
	log.Println("✨ Initializing services...")
	lifecycleService := lifecycle.NewService(meetingRepo, videoClient, jobClient, archiver, &cfg.LLM, logger)
	responder := chat.NewResponder(meetingRepo, agentRepo, chatClient, llmClient, seenSet, logger)
	agentService := agents.NewAgentService(agentRepo, meetingRepo)
	meetingService := meetings.NewMeetingService(meetingRepo, agentRepo, videoClient, chatClient)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authMW := httpmw.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	log.Println("🪝 Initializing handlers...")
	webhookHandler := handler.NewWebhook(lifecycleService, responder, cfg.Stream.APISecret, logger)
	agentHandler := handler.NewAgent(agentService, logger)
	meetingHandler := handler.NewMeeting(meetingService, logger)
	authHandler := handler.NewAuth(jwtManager, userRepo, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, webhookHandler, agentHandler, meetingHandler, authHandler, authMW)
	router.Setup(e)

	// Start job runner
	if err := jobRunner.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start job runner: %v", err)
	}

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

	if err := jobRunner.Stop(); err != nil {
		log.Printf("❌ Job runner shutdown error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
