package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"device-registry/internal/api/websocket"
	"device-registry/internal/auth"
	"device-registry/internal/config"
	"device-registry/internal/devices"
	"device-registry/internal/observability/metrics"
	"device-registry/internal/storage"
	"device-registry/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router        *gin.Engine
	logger        *zap.Logger
	server        *http.Server
	wsHub         *websocket.Hub
	authService   *auth.Service
	deviceService *devices.Service
}

func NewServer(cfg *config.Config, authService *auth.Service, deviceService *devices.Service, wsHub *websocket.Hub, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:        gin.New(),
		logger:        logger,
		wsHub:         wsHub,
		authService:   authService,
		deviceService: deviceService,
	}

	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("REST server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down REST API server")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes(cfg *config.Config) {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	s.router.Use(metrics.Middleware())

	// Public routes (no auth required)
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", metrics.Handler())

	// ==================== AUTH ENDPOINTS (PUBLIC) ====================
	authPublic := s.router.Group("/auth")
	{
		authPublic.POST("/register", s.register)
		authPublic.POST("/login", s.login)
	}

	// ==================== DEVICES ====================
	devs := s.router.Group("/devices")
	devs.Use(s.authService.Middleware())
	{
		// Read and edit: any authenticated role
		anyRole := auth.RequireRole(storage.RoleUser, storage.RoleAdmin)
		devs.GET("", anyRole, s.listDevices)
		devs.GET("/:id", anyRole, s.getDevice)
		devs.PUT("/:id", anyRole, s.updateDevice)
		devs.PATCH("/:id/status", anyRole, s.updateDeviceStatus)
		devs.PATCH("/:id/power", anyRole, s.updateDevicePower)
		devs.DELETE("/:id", anyRole, s.deleteDevice)

		// Create: Admin only
		devs.POST("/add", auth.RequireRole(storage.RoleAdmin), s.addDevice)
	}

	// ==================== WEBSOCKET (auth via first message) ====================
	s.router.GET("/ws/live", s.wsLiveConnection)
	s.router.GET("/ws/status", s.authService.Middleware(), s.wsStatus)

	// ==================== DASHBOARD ====================
	web.RegisterRoutes(s.router)
}

func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}
