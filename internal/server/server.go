// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the search pipeline over HTTP: a synchronous
// endpoint for small interactive queries and asynchronous task endpoints
// for long-running surveys.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/paper-survey/internal/task"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// Server wires the executor and task store into an echo instance.
type Server struct {
	echo  *echo.Echo
	exec  *task.Executor
	store *task.Store
	cfg   types.ServerConfig
	log   *slog.Logger
}

// New builds the server and registers all routes.
func New(exec *task.Executor, store *task.Store, cfg types.ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status}
			if v.Error != nil {
				attrs = append(attrs, "err", v.Error)
				log.Error("request", attrs...)
			} else {
				log.Info("request", attrs...)
			}
			return nil
		},
	}))

	s := &Server{echo: e, exec: exec, store: store, cfg: cfg, log: log}
	e.GET("/search", s.handleSearch)
	e.POST("/v1/search/tasks", s.handleCreateTask)
	e.GET("/v1/search/tasks/:id", s.handleGetTask)
	e.GET("/healthz", s.handleHealth)
	return s
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutCtx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// handleSearch runs the pipeline synchronously. Pipeline failures come back
// as 200 with the error field set and empty results, so a client can always
// decode the same shape.
func (s *Server) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query parameter q is required"})
	}
	resp := s.exec.Search(c.Request().Context(), query)
	return c.JSON(http.StatusOK, resp)
}

type createTaskRequest struct {
	Query string `json:"query"`
}

type createTaskResponse struct {
	TaskID    string           `json:"task_id"`
	Status    types.TaskStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// handleCreateTask registers a task and launches the executor. The task
// runs on a background context so it survives the creating request.
func (s *Server) handleCreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	created := s.store.Create(query)
	go s.exec.Run(context.Background(), created.ID, query)

	return c.JSON(http.StatusAccepted, createTaskResponse{
		TaskID:    created.ID,
		Status:    created.Status,
		CreatedAt: created.CreatedAt,
	})
}

func (s *Server) handleGetTask(c echo.Context) error {
	t, ok := s.store.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
