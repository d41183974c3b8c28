package server

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/carlot/carlot/internal/auth"
	"github.com/carlot/carlot/internal/config"
	"github.com/carlot/carlot/internal/handler"
	"github.com/carlot/carlot/internal/metrics"
	"github.com/carlot/carlot/internal/middleware"
	"github.com/carlot/carlot/internal/repository"
	"github.com/carlot/carlot/internal/service"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *slog.Logger
	Store  repository.Store
	Tokens *auth.TokenIssuer
	// Metrics defaults to a no-op recorder.
	Metrics metrics.Recorder
	// Gatherer backs /metrics. A nil gatherer makes /metrics answer 503.
	Gatherer prometheus.Gatherer
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(d Deps) (*chi.Mux, error) {
	if d.Config == nil || d.Store == nil || d.Tokens == nil {
		return nil, errors.New("router requires config, store and token issuer")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.NewNoop()
	}
	cfg := d.Config
	exposeErrors := cfg.IsDevelopment()

	userService := service.NewUserService(d.Store, d.Tokens, d.Logger, d.Metrics)
	carService := service.NewCarService(d.Store, d.Logger, d.Metrics)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(d.Store, cfg.StoreDriver)
	userHandler := handler.NewUserHandler(userService, d.Logger, exposeErrors)
	carHandler := handler.NewCarHandler(carService, d.Logger, exposeErrors)
	metricsHandler := handler.NewMetricsHandler(d.Gatherer)
	docsHandler, err := handler.NewDocsHandler("")
	if err != nil {
		return nil, fmt.Errorf("build api docs: %w", err)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Operational endpoints
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Get("/api/docs", docsHandler.UI)
	r.Get("/api/docs/openapi.json", docsHandler.JSON)
	r.Get("/api/docs/openapi.yaml", docsHandler.YAML)

	// Public routes
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Get("/api/cars/all", carHandler.ListAll)

	authCfg := middleware.AuthConfig{
		Logger:   d.Logger,
		Verifier: d.Tokens,
		Metrics:  d.Metrics,
	}

	// Bearer-protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))

		r.Get("/", h.Hello)

		r.Get("/api/cars", carHandler.ListOwn)
		r.Post("/api/cars/create", carHandler.Create)
		r.Get("/api/cars/{id}", carHandler.Get)
		r.Put("/api/cars/{id}", carHandler.Update)
		r.Delete("/api/cars/{id}", carHandler.Delete)
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r, nil
}
