package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/trackerhealth/auth"
	"github.com/jonwraymond/trackerhealth/cache"
	"github.com/jonwraymond/trackerhealth/health"
	"github.com/jonwraymond/trackerhealth/metainfo"
	"github.com/jonwraymond/trackerhealth/observe"
	"github.com/jonwraymond/trackerhealth/resilience"
)

// Server serves health checks over HTTP.
//
// Contract:
// - Concurrency: safe for concurrent use once built.
// - Options must not be applied after New returns.
type Server struct {
	checker  *health.Checker
	resolver health.Resolver
	defaults health.Config

	exec    *resilience.Executor
	reports *cache.ReportCache

	authn     auth.Authenticator
	authCfg   auth.MiddlewareConfig
	adminRole string
	origins  []string
	gatherer prometheus.Gatherer
	ready    func(context.Context) error
	logger   observe.Logger

	upgrader websocket.Upgrader
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithDefaults sets the check configuration each request is layered on.
func WithDefaults(cfg *health.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.defaults = *cfg
			s.defaults.OnOutcome = nil
		}
	}
}

// WithResolver sets the resolver used to derive cache keys. It should match
// the checker's resolver.
func WithResolver(r health.Resolver) Option {
	return func(s *Server) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithExecutor sets the admission controls for check requests.
func WithExecutor(e *resilience.Executor) Option {
	return func(s *Server) {
		if e != nil {
			s.exec = e
		}
	}
}

// WithReportCache serves repeated checks from rc.
func WithReportCache(rc *cache.ReportCache) Option {
	return func(s *Server) {
		s.reports = rc
	}
}

// WithAuth requires a on every /v1 route.
func WithAuth(a auth.Authenticator, cfg auth.MiddlewareConfig) Option {
	return func(s *Server) {
		s.authn = a
		s.authCfg = cfg
	}
}

// WithAdminRole sets the role required to invalidate cached reports when
// authentication is on. Empty admits any authenticated caller.
func WithAdminRole(role string) Option {
	return func(s *Server) {
		s.adminRole = role
	}
}

// WithAllowedOrigins sets the CORS and websocket origin allow list.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = append(s.origins, origins...)
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithReadiness sets the /readyz probe.
func WithReadiness(probe func(context.Context) error) Option {
	return func(s *Server) {
		if probe != nil {
			s.ready = probe
		}
	}
}

// WithLogger sets the access and error logger.
func WithLogger(l observe.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a server running checks on checker.
func New(checker *health.Checker, opts ...Option) *Server {
	s := &Server{
		checker:  checker,
		resolver: metainfo.NewResolver(),
		exec:     resilience.NewExecutor(),
		ready:    func(context.Context) error { return nil },
		logger:   observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authCfg.Logger == nil {
		s.authCfg.Logger = s.logger
	}

	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", auth.DefaultAPIKeyHeader},
		ExposedHeaders: []string{headerCheckID, headerCache, "Retry-After"},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(s.ready))
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		if s.authn != nil {
			r.Use(auth.Middleware(s.authn, s.authCfg))
		}
		r.Get("/health", s.handleCheckQuery)
		r.Post("/health", s.handleCheckBody)
		r.Get("/stream", s.handleStream)
		if s.reports != nil {
			r.With(s.requireAdmin).Delete("/health", s.handleInvalidate)
		}
	})
	return r
}

// checkOrigin admits websocket upgrades from non-browser clients, allowed
// origins and localhost.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.origins {
		if o == "*" || o == origin {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "server listening", observe.F("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
