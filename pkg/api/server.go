// Package api exposes the on-demand cycle trigger and status over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hindinews/pkg/pipeline"
)

const GracefulShutdownTimeout = 10 * time.Second

// Cycler is the orchestrator as seen by the API
type Cycler interface {
	Trigger(ctx context.Context) error
	State() pipeline.State
	LastReport() (pipeline.Report, bool)
}

// Counter reports how many articles are stored
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Server struct {
	Echo *echo.Echo

	addr   string
	cycler Cycler
	store  Counter
	logger *slog.Logger
}

func NewServer(addr string, cycler Cycler, store Counter, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Echo:   e,
		addr:   addr,
		cycler: cycler,
		store:  store,
		logger: logger.With("component", "api"),
	}

	e.Use(requestLogger(s.logger))
	e.Use(middleware.Recover())

	e.GET("/health", s.health)
	e.GET("/api/cycle", s.status)
	e.POST("/api/cycle", s.trigger)

	return s
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		if err := s.Echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()
	return s.Echo.Shutdown(shutdownCtx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	State      string           `json:"state"`
	Articles   *int64           `json:"articles,omitempty"`
	LastReport *pipeline.Report `json:"last_report,omitempty"`
}

func (s *Server) status(c echo.Context) error {
	resp := statusResponse{State: s.cycler.State().String()}

	if report, ok := s.cycler.LastReport(); ok {
		resp.LastReport = &report
	}

	n, err := s.store.Count(c.Request().Context())
	if err != nil {
		s.logger.Warn("count failed", "error", err)
	} else {
		resp.Articles = &n
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) trigger(c echo.Context) error {
	err := s.cycler.Trigger(c.Request().Context())
	if errors.Is(err, pipeline.ErrCycleRunning) {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
}
