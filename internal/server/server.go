package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/julianstephens/deeply/internal/constants"
	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/service"
	"github.com/julianstephens/deeply/internal/telemetry"
)

//go:embed static
var staticFS embed.FS

type Server struct {
	svc     *service.Service
	handler http.Handler

	tracer   trace.Tracer
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

func New(svc *service.Service) (*Server, error) {
	meter := telemetry.Meter()
	requests, err := meter.Int64Counter("deeply.http.requests",
		metric.WithDescription("Number of HTTP requests served"))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	latency, err := meter.Float64Histogram("deeply.http.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}

	s := &Server{
		svc:      svc,
		tracer:   telemetry.Tracer(),
		requests: requests,
		latency:  latency,
	}
	s.handler = s.instrument(s.routes())
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("GET /healthz", s.health)

	mux.HandleFunc("GET /api/todos", s.listTodos)
	mux.HandleFunc("POST /api/todos", s.createTodo)
	mux.HandleFunc("PATCH /api/todos/{id}", s.updateTodo)
	mux.HandleFunc("DELETE /api/todos/{id}", s.deleteTodo)

	mux.HandleFunc("POST /api/sessions", s.logSession)
	mux.HandleFunc("GET /api/stats", s.stats)
	mux.HandleFunc("GET /api/insights", s.insights)
	mux.HandleFunc("GET /api/modes", s.modes)

	return mux
}

// Handler returns the instrumented router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe listens on addr and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, waiting up to the shutdown timeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  constants.ReadTimeout,
		WriteTimeout: constants.WriteTimeout,
		IdleTimeout:  constants.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		return nil
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(staticFS, "static/index.html")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
