// Package server exposes date conversion, month grids and document
// generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/content"
	"github.com/tsawler/patro/internal/config"
	"github.com/tsawler/patro/internal/logger"
)

// Options holds the dependencies of a Server.
type Options struct {
	Config *config.Config
	Logger *logger.Logger
	// Fetcher loads theme and chapter images. Nil rejects every image.
	Fetcher assets.Fetcher
	// Font is the fallback TrueType payload; nil keeps the base font.
	Font []byte
	// Now overrides the clock used to mark today in grids and calendars.
	Now func() time.Time
}

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	fetcher assets.Fetcher
	font    []byte
	now     func() time.Time
	metrics *metrics

	// generate serializes document generation: one document at a time.
	generate sync.Mutex
}

// recordValidator validates request bodies with the content record rules.
type recordValidator struct{}

// Validate implements echo.Validator.
func (recordValidator) Validate(i interface{}) error {
	return content.Validate(i)
}

// New creates a new server instance
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = assets.StaticFetcher(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = recordValidator{}
	e.HTTPErrorHandler = errorHandler(log)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	s := &Server{
		echo:    e,
		config:  cfg,
		logger:  log.WithComponent("server"),
		fetcher: fetcher,
		font:    opts.Font,
		now:     now,
	}

	s.setupMiddleware()
	if cfg.Metrics.Enabled {
		s.setupMetrics()
	}
	s.setupRoutes()
	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.LogHTTPRequest(v.Method, v.URI, v.RequestID, v.Status, v.Latency, v.Error)
			return nil
		},
	}))

	s.echo.Use(middleware.BodyLimit(s.config.Server.MaxBodyBytes))
}

// rateLimiter limits API calls per client IP.
func (s *Server) rateLimiter() echo.MiddlewareFunc {
	sc := s.config.Server
	limit := rate.Limit(float64(sc.RateLimitRequests) / sc.RateLimitWindow.Seconds())

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     sc.RateLimitRequests,
			ExpiresIn: sc.RateLimitWindow,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, errorBody{Message: "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, errorBody{Message: "rate limit exceeded"})
		},
	})
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.healthCheck)

	v1 := s.echo.Group("/api/v1", s.rateLimiter())
	v1.GET("/convert/ad/:date", s.convertAD)
	v1.GET("/convert/bs/:year/:month/:day", s.convertBS)
	v1.GET("/grid/:year/:month", s.monthGrid)
	v1.POST("/calendar/:file", s.calendarPDF)
	v1.POST("/chapter.pdf", s.chapterPDF)
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := s.config.Server.Address()
	s.logger.Infow("Starting server", "address", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

type errorBody struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// errorHandler writes every error as a JSON body.
func errorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		body := errorBody{Message: http.StatusText(code)}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			body.Message = fmt.Sprint(he.Message)
			if he.Internal != nil {
				body.Details = he.Internal.Error()
			}
		}

		if code == http.StatusInternalServerError {
			log.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Errorw("Error sending response", "error", err)
		}
	}
}
