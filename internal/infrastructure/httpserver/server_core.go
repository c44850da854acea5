package httpserver

import (
	"time"

	"github.com/driftchat/drift/internal/core/ports"
	customMiddleware "github.com/driftchat/drift/internal/infrastructure/httpserver/middleware"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	AllowedOrigins []string
	Environment    string
}

type ServerDeps struct {
	UserService      ports.UserService
	FriendService    ports.FriendService
	ChatService      ports.ChatService
	MessageService   ports.MessageService
	ReactionService  ports.ReactionService
	AssistantService ports.AssistantService
	RateLimiter      ports.RateLimiter
	HealthCheckers   []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	userService    ports.UserService
	friendService  ports.FriendService
	chatService    ports.ChatService
	messageService ports.MessageService
	reactionSvc    ports.ReactionService
	assistantSvc   ports.AssistantService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, jwtSecret string, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		userService:    deps.UserService,
		friendService:  deps.FriendService,
		chatService:    deps.ChatService,
		messageService: deps.MessageService,
		reactionSvc:    deps.ReactionService,
		assistantSvc:   deps.AssistantService,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiter,
			logger,
			jwtSecret,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
