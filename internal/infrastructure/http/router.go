package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/domain"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/handlers"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	AuthHandler          *handlers.AuthHandler
	HealthHandler        *handlers.HealthHandler
	UsersHandler         *handlers.UsersHandler
	OrganizationsHandler *handlers.OrganizationsHandler
	InvitationsHandler   *handlers.InvitationsHandler
	TasksHandler         *handlers.TasksHandler
	RequireJWT           func(http.Handler) http.Handler
	OrgGuard             *middleware.OrgGuard
	Log                  zerolog.Logger
	Secure               func(http.Handler) http.Handler
	CORS                 func(http.Handler) http.Handler
	IPRateLimit          func(http.Handler) http.Handler
	Metrics              bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.CORS != nil {
		r.Use(cfg.CORS)
	}
	r.Use(chimid.AllowContentType("application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/verify", cfg.AuthHandler.VerifyEmail)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.Post("/logout", cfg.AuthHandler.Logout)
		})
	})

	r.Route("/organization", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Post("/", cfg.OrganizationsHandler.Create)
		r.Get("/", cfg.OrganizationsHandler.List)
		r.With(cfg.OrgGuard.RequireMember).Get("/{id}", cfg.OrganizationsHandler.Get)
		r.With(cfg.OrgGuard.RequireRoles(domain.TenantRoleAdmin, domain.TenantRoleOwner)).
			Patch("/{id}", cfg.OrganizationsHandler.Rename)
		r.Delete("/{id}", cfg.OrganizationsHandler.Delete)
		r.With(cfg.OrgGuard.RequireRoles(domain.TenantRoleAdmin, domain.TenantRoleOwner)).
			Post("/{id}/members", cfg.OrganizationsHandler.AddMember)
		r.With(cfg.OrgGuard.RequireMember).Get("/{id}/members", cfg.OrganizationsHandler.ListMembers)
	})

	r.Route("/invitation", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.With(cfg.OrgGuard.RequireRoles(domain.TenantRoleAdmin, domain.TenantRoleOwner)).
			Post("/organizations/{orgId}/invitations", cfg.InvitationsHandler.Send)
		r.Post("/organizations/invitations/accept", cfg.InvitationsHandler.Accept)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Get("/mine", cfg.TasksHandler.ListMine)
		r.Get("/one/{id}", cfg.TasksHandler.Get)
		r.With(cfg.OrgGuard.RequireMember).Post("/{id}", cfg.TasksHandler.Create)
		r.With(cfg.OrgGuard.RequireMember).Get("/{id}", cfg.TasksHandler.ListByOrganization)
		r.Patch("/{id}", cfg.TasksHandler.Update)
		r.Delete("/{id}", cfg.TasksHandler.Delete)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(cfg.RequireJWT)
		r.Patch("/me", cfg.UsersHandler.UpdateMe)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSystemRoles(domain.SystemRoleAdmin, domain.SystemRoleOwner))
			r.Post("/", cfg.UsersHandler.Create)
			r.Get("/", cfg.UsersHandler.List)
			r.Delete("/{userId}", cfg.UsersHandler.Delete)
		})
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
