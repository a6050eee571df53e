// Package health contiene los controllers de health check.
package health

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/wearefrancis/auth/internal/http/errors"
	"github.com/wearefrancis/auth/internal/observability/logger"
)

// Pinger es lo mínimo que un backend debe exponer para el readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controller responde /healthz y /readyz.
type Controller struct {
	deps map[string]Pinger
}

// NewController crea el controller con las dependencias a chequear en
// readyz (store, cache).
func NewController(deps map[string]Pinger) *Controller {
	return &Controller{deps: deps}
}

// Healthz: liveness. Si el proceso responde, está vivo.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz: readiness. Ping a cada dependencia con timeout corto; la primera
// que falle tumba el probe.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, p := range c.deps {
		if err := p.Ping(ctx); err != nil {
			logger.From(r.Context()).Warn("readiness probe failed",
				logger.Component(name), logger.Err(err))
			httperrors.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"dep":    name,
			})
			return
		}
	}
	httperrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
