// Package server exposes a keyforge workspace over a JSON HTTP API.
//
// Routes:
//
//	GET    /healthz                    liveness and build info
//	GET    /metrics                    Prometheus metrics
//	POST   /v1/layouts                 lay out a matrix sent in the body (nothing stored)
//	GET    /v1/keyboards               list stored keyboards
//	POST   /v1/keyboards               generate and store a keyboard from a stored matrix
//	GET    /v1/keyboards/{name}        fetch one keyboard
//	DELETE /v1/keyboards/{name}        delete one keyboard
//	GET    /v1/keyboards/{name}/svg    draw one keyboard
//
// Errors are JSON objects carrying the pkg/errors code; the HTTP status is
// derived from the code.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/keyforge/pkg/observability"
	"github.com/matzehuels/keyforge/pkg/pipeline"
	"github.com/matzehuels/keyforge/pkg/workspace"
)

// Timeouts.
const (
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxNodeLimit    = 10_000_000
	readHeaderTimeout      = 5 * time.Second
	maxBodyBytes           = 8 << 20
)

// Options configures a [Server].
type Options struct {
	// Gatherer backs /metrics. Nil serves the default registry.
	Gatherer prometheus.Gatherer

	// Layout carries the defaults for strategy and node limit.
	Layout pipeline.Options

	// MaxNodeLimit caps the node_limit a request may ask for. Zero means
	// DefaultMaxNodeLimit.
	MaxNodeLimit int

	// ShutdownTimeout bounds graceful shutdown. Zero means DefaultShutdownTimeout.
	ShutdownTimeout time.Duration
}

// Server serves the API.
type Server struct {
	ws     *workspace.Workspace
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New builds the router. ws serves the /v1/keyboards routes and runner the
// stateless /v1/layouts route; both may share a cache.
func New(ws *workspace.Workspace, runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MaxNodeLimit == 0 {
		opts.MaxNodeLimit = DefaultMaxNodeLimit
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{ws: ws, runner: runner, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/layouts", s.handleLayout)
		r.Route("/keyboards", func(r chi.Router) {
			r.Get("/", s.handleListKeyboards)
			r.Post("/", s.handleGenerateKeyboard)
			r.Get("/{name}", s.handleGetKeyboard)
			r.Delete("/{name}", s.handleDeleteKeyboard)
			r.Get("/{name}/svg", s.handleKeyboardSVG)
		})
	})
	return r
}

// observe reports every request to the HTTP hooks and the logger, keyed by
// the matched route pattern rather than the raw path.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", time.Since(start), "request_id", middleware.GetReqID(r.Context()))
	})
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("api listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
