package api

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/watchdeck/watchdeck/internal/auth"
	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/imdb"
	"github.com/watchdeck/watchdeck/internal/logger"
	"github.com/watchdeck/watchdeck/internal/media"
	"github.com/watchdeck/watchdeck/internal/notion"
	"github.com/watchdeck/watchdeck/internal/preview"
	"github.com/watchdeck/watchdeck/internal/websocket"
)

// Server handles HTTP requests for the WatchDeck API.
type Server struct {
	echo   *echo.Echo
	hub    *websocket.Hub
	logger zerolog.Logger
	cfg    *config.Config

	// Services
	authService    *auth.Service
	authMiddleware *auth.Middleware
	notionClient   *notion.Client
	imdbClient     *imdb.Client
	pageCache      *media.PageCache
	formRegistry   *media.Registry
	previewService *preview.Service
	refresher      *media.Refresher
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, hub *websocket.Hub, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		hub:    hub,
		logger: logger,
		cfg:    cfg,
	}

	authService, err := auth.NewService(
		cfg.Auth.Password,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.SessionMaxAge)*time.Second,
	)
	if err != nil {
		return nil, err
	}
	s.authService = authService
	s.authMiddleware = auth.NewMiddleware(authService)

	s.notionClient = notion.NewClient(cfg.Notion, logger)
	s.imdbClient = imdb.NewClient(cfg.IMDB, logger)

	s.pageCache = media.NewPageCache(
		s.notionClient,
		time.Duration(cfg.Cache.StaleMinutes)*time.Minute,
		logger,
	)

	s.formRegistry = media.NewRegistry(s.imdbClient, s.notionClient, s.pageCache, hub, logger)
	s.previewService = preview.NewService(logger)

	refresher, err := media.NewRefresher(
		s.pageCache,
		cfg.Notion.DatabaseIDs,
		time.Duration(cfg.Cache.RefreshMinutes)*time.Minute,
		logger,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize cache refresher")
	} else {
		s.refresher = refresher
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")

	// Auth routes are the only API surface reachable without a session.
	// Dev builds run over plain HTTP, so the cookie loses its Secure flag.
	authHandlers := auth.NewHandlers(s.authService, !logger.IsDevBuild())
	authHandlers.RegisterRoutes(api.Group("/auth"))

	protected := api.Group("", s.authMiddleware.RequireSession())

	imdbHandlers := imdb.NewHandlers(s.imdbClient, s.logger)
	imdbHandlers.RegisterRoutes(protected.Group("/imdb"))

	notionHandlers := notion.NewHandlers(s.notionClient, s.logger)
	notionHandlers.RegisterRoutes(protected.Group("/notion"))

	formHandlers := media.NewHandlers(s.formRegistry)
	formHandlers.RegisterRoutes(protected.Group("/form"))

	previewHandlers := preview.NewHandlers(s.previewService)
	previewHandlers.RegisterRoutes(protected.Group("/link"))

	protected.GET("/events", s.hub.HandleWebSocket)
}

// ServeFrontend serves the embedded frontend, redirecting unauthenticated
// page loads to the login page.
func (s *Server) ServeFrontend(staticFS fs.FS) {
	fileServer := http.FileServer(http.FS(staticFS))

	pages := s.echo.Group("", s.authMiddleware.RedirectToLogin())
	pages.GET("/", echo.WrapHandler(fileServer))
	pages.GET("/login", func(c echo.Context) error {
		data, err := fs.ReadFile(staticFS, "login.html")
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "login page unavailable")
		}
		return c.HTMLBlob(http.StatusOK, data)
	})
	pages.GET("/assets/*", echo.WrapHandler(fileServer))
}

// Start begins listening for HTTP requests and starts background jobs.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")

	if s.refresher != nil {
		if err := s.refresher.Start(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to start cache refresher")
		}
	}

	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if s.refresher != nil {
		if err := s.refresher.Stop(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to stop cache refresher")
		}
	}

	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
