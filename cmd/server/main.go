package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/driftchat/drift/configs"
	"github.com/driftchat/drift/internal/application/invalidation"
	"github.com/driftchat/drift/internal/application/services"
	"github.com/driftchat/drift/internal/core/ports"
	"github.com/driftchat/drift/internal/infrastructure/db"
	"github.com/driftchat/drift/internal/infrastructure/email"
	"github.com/driftchat/drift/internal/infrastructure/health"
	"github.com/driftchat/drift/internal/infrastructure/httpserver"
	"github.com/driftchat/drift/internal/infrastructure/llm"
	"github.com/driftchat/drift/internal/infrastructure/memcache"
	"github.com/driftchat/drift/internal/infrastructure/realtime"
	"github.com/driftchat/drift/internal/infrastructure/redis"
	"github.com/driftchat/drift/internal/infrastructure/repositories"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Setup logger
	logger := logrus.New()
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}

	logger.Info("Starting Drift server...")

	// Initialize database (apply pool settings from config)
	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	// Initialize Redis client
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	logger.Info("Connected to Redis successfully")

	// Run migrations
	if err := database.Migrate("./migrations"); err != nil {
		logger.Warn("Failed to run migrations:", err)
	}

	// appCtx cancels the background workers (cache sweeper, changefeed
	// listener) on shutdown.
	appCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Cache backend: in-process by default for single-instance deploys,
	// Redis when several replicas must share one invalidation domain.
	var cache ports.Cache
	switch cfg.Cache.Backend {
	case "memory":
		mc := memcache.New(cfg.Cache.MaxEntries, logger, memcache.WithMetrics(memcache.NewMetrics(prometheus.DefaultRegisterer)))
		mc.StartSweeper(appCtx, time.Minute)
		cache = mc
	default:
		cache = redis.NewRedisCache(redisClient, cfg.Cache.Prefix)
	}

	// The invalidation router is the single authority on which cache keys
	// each mutation makes stale.
	router := invalidation.NewRouter(cache, logger)

	// Redis-backed repositories
	rateLimitRepo := repositories.NewRateLimitRedisRepository(redisClient)
	inviteTokenRepo := repositories.NewInviteTokenRedisRepository(redisClient, logger)

	// Postgres repositories, decorated with caching
	baseUserRepo := repositories.NewUserRepository(database, logger)
	baseFriendRepo := repositories.NewFriendRepository(database, logger)
	chatRepo := repositories.NewChatRepository(database, logger)
	baseMessageRepo := repositories.NewMessageRepository(database, logger)

	userRepo := repositories.NewCachingUserRepository(baseUserRepo, cache, router)
	friendRepo := repositories.NewCachingFriendRepository(baseFriendRepo, cache, router)
	messageRepo := repositories.NewCachingMessageRepository(baseMessageRepo, cache, router)

	// Outbound adapters
	emailConfig := &email.EmailConfig{
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		AppName:        cfg.Email.AppName,
		BaseURL:        cfg.Email.BaseURL,
	}
	emailService, err := email.NewEmailService(emailConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service:", err)
	}

	llmClient := llm.NewOpenAIClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: float32(cfg.LLM.Temperature),
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	// Application services
	userService := services.NewUserService(userRepo, logger)
	messageService := services.NewMessageService(messageRepo, chatRepo, cache, logger)
	chatService := services.NewChatService(chatRepo, friendRepo, messageService, logger)
	friendService := services.NewFriendService(friendRepo, userRepo, chatRepo, inviteTokenRepo, emailService, cache, cfg.Server.BaseURL, logger)
	reactionService := services.NewReactionService(messageRepo, cache, logger)
	assistantService := services.NewAssistantService(chatService, messageRepo, llmClient, logger)

	rateLimiterConfig := &services.RateLimiterConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         cfg.RateLimit.KeyPrefix,
	}
	rateLimiter := services.NewRateLimiterService(rateLimitRepo, rateLimiterConfig, logger)

	// Changefeed listener: row changes made by other replicas reach the
	// cache through the same invalidation router.
	if cfg.Realtime.URL != "" {
		listener := realtime.NewListener(realtime.Config{URL: cfg.Realtime.URL, APIKey: cfg.Realtime.APIKey}, router, logger)
		go listener.Run(appCtx)
	} else {
		logger.Warn("REALTIME_URL not set - changefeed invalidation disabled")
	}

	hcSlice := []ports.HealthChecker{health.NewDBHealthChecker(database), health.NewRedisHealthChecker(redisClient)}

	// Create server configuration
	serverConfig := &httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}

	deps := httpserver.ServerDeps{
		UserService:      userService,
		FriendService:    friendService,
		ChatService:      chatService,
		MessageService:   messageService,
		ReactionService:  reactionService,
		AssistantService: assistantService,
		RateLimiter:      rateLimiter,
		HealthCheckers:   hcSlice,
	}

	server := httpserver.NewServer(serverConfig, cfg.JWT.Secret, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
