// Package http arma el router y el servidor del servicio de identidad.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wearefrancis/auth/internal/authz"
	authctrl "github.com/wearefrancis/auth/internal/http/controllers/auth"
	healthctrl "github.com/wearefrancis/auth/internal/http/controllers/health"
	usersctrl "github.com/wearefrancis/auth/internal/http/controllers/users"
	httperrors "github.com/wearefrancis/auth/internal/http/errors"
	mw "github.com/wearefrancis/auth/internal/http/middlewares"
	"github.com/wearefrancis/auth/internal/service"
	"github.com/wearefrancis/auth/internal/store"
	"github.com/wearefrancis/auth/internal/token"
)

// RouterDeps contiene las dependencias para armar el router completo.
type RouterDeps struct {
	Store    store.Store
	Codec    *token.Codec
	Users    *service.UserService
	Login    *service.LoginService
	Eval     *authz.Evaluator
	Registry *prometheus.Registry
	Probes   map[string]healthctrl.Pinger
}

// NewRouter construye el handler raíz: middlewares globales + rutas v1 +
// endpoints operacionales.
func NewRouter(deps RouterDeps) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(WithMetrics(routePattern))
	r.Use(mw.Authenticate(deps.Codec, deps.Store.Accounts()))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	users := usersctrl.NewController(deps.Users, deps.Eval)
	login := authctrl.NewLoginController(deps.Login)
	health := healthctrl.NewController(deps.Probes)

	// Operacional
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if deps.Registry != nil {
		metricsHandler, err := RegisterMetrics(deps.Registry)
		if err != nil {
			return nil, err
		}
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// login acepta GET con query params y POST con body JSON
		r.Get("/login", login.Login)
		r.Post("/login", login.Login)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.Create)
			r.With(mw.RequireIdentity()).Get("/", users.Me)

			// segmento estático antes que los params
			r.Put("/activate/{tokenValue}", users.Activate)

			r.Get("/{idOrUsername}", users.Get)
			r.Put("/{userID}", users.Update)
			r.Delete("/{userID}", users.Delete)
			r.Put("/{userID}/enable", users.Enable)
			r.Put("/{userID}/lock", users.Lock)
			r.Put("/{userID}/unlock", users.Unlock)
			r.Put("/{userID}/role", users.ChangeRole)
		})
	})

	return r, nil
}

// routePattern acota la cardinalidad de las métricas usando el patrón de
// ruta de chi en lugar del path crudo.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
