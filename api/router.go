package api

import (
	"net/http"
	"rxvision_server/api/auth"
	"rxvision_server/api/debug"
	"rxvision_server/api/email"
	"rxvision_server/api/groups"
	"rxvision_server/api/health"
	"rxvision_server/api/middleware"
	"rxvision_server/api/molecules"
	"rxvision_server/api/users"
	"rxvision_server/services"
	"rxvision_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func App(cfg *structs.Config, logger *gecho.Logger, svc *services.ServiceManager) chi.Router {
	r := chi.NewRouter()

	// Request logs stay quiet about callers
	mwLogger := gecho.NewLogger(gecho.NewConfig(gecho.WithShowCaller(false), gecho.WithLogLevel(gecho.ParseLogLevel(logLevel(cfg)))))

	// Each app gets its own registry so several can live in one process
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	mw := middleware.NewMiddleware(cfg, mwLogger, svc.CacheService, svc.AuthService)

	// Core infra
	r.Use(chiware.RequestID)
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(10 * 1024 * 1024))
	r.Use(mw.SecurityHeaders())

	// Observability
	r.Use(mw.SetupLoggerMiddleware())
	r.Use(metrics.Middleware)

	// CORS (must be before auth / csrf)
	r.Use(mw.SetupCORS().Handler)
	r.Use(mw.RateLimitMiddleware())

	NewRouterManager(
		health.NewHealthRoutesManager(svc.HealthService, registry),
		auth.NewAuthRoutesManager(logger, cfg, svc.AuthService, svc.UserService, svc.TokenService, mw),
		email.NewEmailRoutesManager(logger, cfg, svc.EmailService, mw),
		users.NewUserRoutesManager(logger, svc.UserService, svc.AuthService, mw),
		groups.NewGroupRoutesManager(logger, svc.GroupService, mw),
		molecules.NewMoleculeRoutesManager(logger, svc.MoleculeService, mw),
		debug.NewDebugRoutesManager(cfg, svc.CacheService, mw),
	).RegisterRoutes(r)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gecho.Success(w,
			gecho.WithMessage("Welcome to the RxVision API"),
			gecho.Send(),
		)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.Send(),
		)
	})

	return r
}

func logLevel(cfg *structs.Config) string {
	if cfg.Server.Environment == "production" {
		return "info"
	}
	return "debug"
}
