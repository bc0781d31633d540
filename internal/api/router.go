package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/certwatch-io/certwatch/internal/api/handlers"
	"github.com/certwatch-io/certwatch/internal/api/middleware"
	"github.com/certwatch-io/certwatch/internal/config"
)

type Server struct {
	Config  *config.Config
	Router  *gin.Engine
	handler *handlers.Handler
}

func NewServer(cfg *config.Config, handler *handlers.Handler, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{
		Config:  cfg,
		Router:  router,
		handler: handler,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", handlers.HealthCheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.Router.Group("/api/v1")
	h := s.handler

	// Ad-hoc checks and history
	{
		api.POST("/check", h.CheckDomain)
		api.POST("/check/batch", h.CheckBatch)
		api.GET("/registration/:domain", h.GetRegistration)
		api.GET("/history", h.GetHistory)
		api.DELETE("/history", h.ClearHistory)
	}

	// Watch list
	{
		api.GET("/watched", h.ListWatched)
		api.POST("/watched", h.AddWatched)
		api.POST("/watched/refresh-all", h.RefreshAll)
		api.POST("/watched/quick-check", h.QuickCheck)
		api.POST("/watched/import", h.ImportDomains)
		api.GET("/watched/export", h.ExportWatched)
		api.GET("/watched/:id", h.GetWatched)
		api.DELETE("/watched/:id", h.DeleteWatched)
		api.PUT("/watched/:id/nickname", h.UpdateNickname)
		api.PUT("/watched/:id/notify", h.UpdateNotifySettings)
		api.POST("/watched/:id/refresh", h.RefreshWatched)
		api.PUT("/watched/:id/manual", h.SetManual)
		api.DELETE("/watched/:id/manual", h.ClearManual)
	}

	// Derived views
	{
		api.GET("/stats", h.GetStats)
		api.GET("/notifications", h.GetNotifications)
	}

	// Batch selection
	{
		api.GET("/selection", h.GetSelection)
		api.POST("/selection/enter", h.EnterBatchMode)
		api.POST("/selection/cancel", h.CancelBatchMode)
		api.POST("/selection/toggle/:id", h.ToggleSelection)
		api.POST("/selection/select-all", h.SelectAll)
		api.POST("/selection/clear", h.ClearSelection)
		api.POST("/selection/refresh", h.BatchRefresh)
		api.DELETE("/selection", h.BatchDelete)
		api.GET("/selection/export", h.ExportSelection)
	}

	// Settings
	{
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
	}
}
