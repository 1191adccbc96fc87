package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atendezap/config"
	"atendezap/internal/handler"
	"atendezap/internal/hub"
	"atendezap/internal/middleware"
	"atendezap/internal/services"
	"atendezap/internal/transport/httpdto"
	"atendezap/pkg/database"
	"atendezap/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Message *handler.MessageHandler
	Ticket  *handler.TicketHandler
	Session *handler.SessionHandler
	Media   *handler.MediaHandler
	Socket  *hub.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	authed := middleware.AuthMiddleware(authService)

	messages := s.engine.Group("/v1/messages")
	{
		messages.POST("", authed, handlers.Message.Send)
		messages.GET("/:ticketId", authed, handlers.Message.List)
		messages.POST("/:ticketId/read", authed, handlers.Message.MarkRead)
	}

	tickets := s.engine.Group("/v1/tickets")
	{
		tickets.GET("", authed, handlers.Ticket.ListByStatus)
		tickets.GET("/:ticketId", authed, handlers.Ticket.Get)
		tickets.POST("/:ticketId/assign", authed, handlers.Ticket.Assign)
		tickets.POST("/:ticketId/status", authed, handlers.Ticket.SetStatus)
		tickets.POST("/:ticketId/ai", authed, handlers.Ticket.ToggleAI)
	}

	sessions := s.engine.Group("/v1/sessions")
	{
		sessions.POST("", authed, handlers.Session.Start)
		sessions.GET("/:sessionName", authed, handlers.Session.Get)
		sessions.POST("/:sessionName/qrcode", authed, handlers.Session.RefreshQR)
		sessions.GET("/:sessionName/check", authed, handlers.Session.Check)
		sessions.DELETE("/:sessionName", authed, handlers.Session.Close)
		sessions.POST("/send", authed, handlers.Session.Send)
	}

	if handlers.Media != nil {
		s.engine.POST("/v1/media", authed, handlers.Media.Upload)
	}

	// The socket authenticates with a token query param; browsers cannot set
	// headers on websocket upgrades.
	s.engine.GET("/ws", handlers.Socket.Connect)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
