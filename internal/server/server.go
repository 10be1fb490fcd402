// Package server assembles the launcher service: settings, inventory,
// resolver, process controller, confirmation coordinator and the HTTP/WS API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/voxlaunch/voxlaunch/internal/api/http"
	"github.com/voxlaunch/voxlaunch/internal/config"
	"github.com/voxlaunch/voxlaunch/internal/confirm"
	"github.com/voxlaunch/voxlaunch/internal/events"
	"github.com/voxlaunch/voxlaunch/internal/inventory"
	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/middleware"
	"github.com/voxlaunch/voxlaunch/internal/monitoring"
	"github.com/voxlaunch/voxlaunch/internal/orchestrator"
	"github.com/voxlaunch/voxlaunch/internal/process"
	"github.com/voxlaunch/voxlaunch/internal/resolver"
	"github.com/voxlaunch/voxlaunch/internal/settings"
	"github.com/voxlaunch/voxlaunch/internal/types"
	"github.com/voxlaunch/voxlaunch/internal/ws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg     *config.Config
	logger  *logging.Logger
	router  *gin.Engine
	httpSrv *http.Server

	store       *settings.Store
	cache       *inventory.Cache
	coordinator *confirm.Coordinator
	orch        *orchestrator.Service
	metrics     *monitoring.Metrics
}

// instrumentedPrompter counts prompts on their way to the hub.
type instrumentedPrompter struct {
	hub     *events.Hub
	metrics *monitoring.Metrics
}

func (p *instrumentedPrompter) Prompt(app types.AppIdentity, stage confirm.Stage) {
	p.metrics.PromptsTotal.Inc()
	p.hub.Prompt(app, stage)
}

// New builds a fully wired server.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	settingsPath := cfg.Settings.Path
	if settingsPath == "" {
		settingsPath = settings.DefaultPath()
	}
	store := settings.NewStore(settingsPath, logger.Named("settings"))
	if err := store.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize settings: %w", err)
	}

	scanner := inventory.NewBundleScanner(cfg.Inventory.Roots...)
	cache := inventory.NewCache(scanner, store, cfg.Inventory.TTL, logger.Named("inventory"))

	res := resolver.New(cache, store, cfg.Resolver, logger.Named("resolver"))
	cache.OnRefresh(res.Invalidate)
	store.OnChange(res.Invalidate)

	metrics := monitoring.New()
	cache.OnRefresh(func() {
		if snap := cache.Snapshot(); snap != nil {
			metrics.AppsKnown.Set(float64(len(snap.Apps)))
		}
	})

	controller := process.NewHostController(logger.Named("process"))
	hub := events.NewHub(logger.Named("events"))
	prompter := &instrumentedPrompter{hub: hub, metrics: metrics}

	coordinator := confirm.NewCoordinator(
		controller,
		prompter,
		hub,
		cfg.Confirm.MaxAttempts,
		store.DisableWindowManager,
		logger.Named("confirm"),
	)

	orch := orchestrator.NewService(res, controller, coordinator, hub, cache, logger.Named("orchestrator")).
		WithMetrics(metrics)

	s := &Server{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		cache:       cache,
		coordinator: coordinator,
		orch:        orch,
		metrics:     metrics,
	}
	s.router = s.buildRouter(hub)
	return s, nil
}

func (s *Server) buildRouter(hub *events.Hub) *gin.Engine {
	if !s.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if s.cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: s.cfg.RateLimit.RequestsPerSecond,
			Burst:             s.cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(s.orch, s.coordinator, s.cache, s.store, s.logger.Named("api"))
	wsHandler := ws.NewHandler(hub, s.coordinator, s.logger.Named("ws"))

	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	{
		v1.POST("/query", handlers.Query)
		v1.POST("/handle", handlers.Handle)
		v1.POST("/respond", handlers.Respond)

		v1.GET("/apps", handlers.ListApps)
		v1.POST("/apps/refresh", handlers.RefreshInventory)
		v1.GET("/apps/:name/running", handlers.IsRunning)
		v1.POST("/apps/:name/switch", handlers.SwitchTo)
		v1.POST("/apps/:name/close", handlers.CloseApp)

		v1.GET("/aliases", handlers.Aliases)
		v1.POST("/aliases", handlers.SetAlias)
		v1.POST("/commands", handlers.SetUserCommand)

		v1.GET("/processes", handlers.MatchProcesses)
	}

	router.GET("/ws", wsHandler.HandleConnection)
	return router
}

// Run performs the initial inventory scan and serves until the listener
// fails. A failed first scan is not fatal; the service starts with an empty
// inventory and keeps retrying on demand.
func (s *Server) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := s.cache.Refresh(ctx); err != nil {
		s.logger.Warn("initial inventory scan failed", zap.Error(err))
		s.metrics.ScansTotal.WithLabelValues("error").Inc()
	} else {
		s.metrics.ScansTotal.WithLabelValues("ok").Inc()
	}
	cancel()

	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections stay open
	}

	s.logger.Info("server listening", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	if s.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}
