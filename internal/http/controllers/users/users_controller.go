// Package users contiene el controller de cuentas: registro, activación,
// lecturas proyectadas y las operaciones administrativas.
//
// El patrón por operación es siempre el mismo: resolver identidad del
// contexto -> evaluar permiso -> ejecutar el service -> proyectar.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/authz"
	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/http/dto"
	httperrors "github.com/wearefrancis/auth/internal/http/errors"
	"github.com/wearefrancis/auth/internal/http/middlewares"
	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/service"
	"github.com/wearefrancis/auth/internal/store"
)

const maxBodySize = 64 * 1024 // 64KB

// Controller agrupa los handlers de /v1/users.
type Controller struct {
	users *service.UserService
	eval  *authz.Evaluator
}

// NewController crea el controller.
func NewController(users *service.UserService, eval *authz.Evaluator) *Controller {
	return &Controller{users: users, eval: eval}
}

// Create maneja POST /v1/users.
// Anónimo: self-registro (cuenta deshabilitada + mail de activación).
// Caller >= ADMIN: alta directa habilitada.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middlewares.IdentityFrom(ctx)

	if !c.authorize(w, r, caller, authz.TargetRef{Kind: authz.TargetUser}, authz.ActionCreate) {
		return
	}

	var req dto.RegisterRequest
	if !c.readJSON(w, r, &req) {
		return
	}

	view, err := c.users.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}, !caller.IsAnonymous())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusCreated, view)
}

// Activate maneja PUT /v1/users/activate/{tokenValue}.
// Público: el token ES la credencial.
func (c *Controller) Activate(w http.ResponseWriter, r *http.Request) {
	value, err := uuid.Parse(chi.URLParam(r, "tokenValue"))
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidInput.WithDetail("activation token malformado"))
		return
	}
	if err := c.users.Activate(r.Context(), value); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me maneja GET /v1/users (requiere identidad; ver RequireIdentity en rutas).
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	caller := middlewares.IdentityFrom(r.Context())
	httperrors.WriteJSON(w, http.StatusOK, c.users.Self(caller))
}

// Get maneja GET /v1/users/{idOrUsername}. Un segmento que parsea como UUID
// busca por id; si matchea el patrón de username, por username. La
// visibilidad la decide la proyección, no el permiso: read es siempre
// permitido, incluso anónimo.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middlewares.IdentityFrom(ctx)
	param := chi.URLParam(r, "idOrUsername")

	var (
		view domain.View
		err  error
	)
	if id, perr := uuid.Parse(param); perr == nil {
		view, err = c.users.GetByID(ctx, id, caller)
	} else if domain.UsernameRegexp.MatchString(param) {
		view, err = c.users.GetByUsername(ctx, param, caller)
	} else {
		httperrors.WriteError(w, httperrors.ErrInvalidInput.WithDetail("se espera un UUID o un username"))
		return
	}
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, view)
}

// Update maneja PUT /v1/users/{userID}: cambia email y password.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middlewares.IdentityFrom(ctx)

	id, ok := c.pathID(w, r)
	if !ok {
		return
	}
	if !c.authorize(w, r, caller, authz.UserTarget(id), authz.ActionUpdate) {
		return
	}

	var req dto.UpdateUserRequest
	if !c.readJSON(w, r, &req) {
		return
	}

	byAdmin := caller.Role().AtLeast(domain.RoleAdmin)
	view, err := c.users.Update(ctx, id, service.UpdateInput{Email: req.Email, Password: req.Password}, byAdmin)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, view)
}

// Delete maneja DELETE /v1/users/{userID}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middlewares.IdentityFrom(r.Context())

	id, ok := c.pathID(w, r)
	if !ok {
		return
	}
	if !c.authorize(w, r, caller, authz.UserTarget(id), authz.ActionDelete) {
		return
	}
	if err := c.users.Delete(r.Context(), id); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Enable maneja PUT /v1/users/{userID}/enable.
func (c *Controller) Enable(w http.ResponseWriter, r *http.Request) {
	c.adminFlagOp(w, r, authz.ActionEnable, c.users.Enable)
}

// Lock maneja PUT /v1/users/{userID}/lock.
func (c *Controller) Lock(w http.ResponseWriter, r *http.Request) {
	c.adminFlagOp(w, r, authz.ActionLock, c.users.Lock)
}

// Unlock maneja PUT /v1/users/{userID}/unlock.
func (c *Controller) Unlock(w http.ResponseWriter, r *http.Request) {
	c.adminFlagOp(w, r, authz.ActionUnlock, c.users.Unlock)
}

// ChangeRole maneja PUT /v1/users/{userID}/role.
func (c *Controller) ChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middlewares.IdentityFrom(ctx)

	id, ok := c.pathID(w, r)
	if !ok {
		return
	}
	if !c.authorize(w, r, caller, authz.UserTarget(id), authz.ActionChangeRole) {
		return
	}

	var req dto.ChangeRoleRequest
	if !c.readJSON(w, r, &req) {
		return
	}
	role, valid := domain.ParseRole(req.Role)
	if !valid {
		httperrors.WriteError(w, httperrors.ErrInvalidInput.WithDetail("rol desconocido"))
		return
	}

	view, err := c.users.ChangeRole(ctx, id, role)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, view)
}

// adminFlagOp factoriza enable/lock/unlock: mismo shape, distinto action.
func (c *Controller) adminFlagOp(
	w http.ResponseWriter,
	r *http.Request,
	action authz.Action,
	op func(ctx context.Context, id uuid.UUID) (domain.View, error),
) {
	ctx := r.Context()
	caller := middlewares.IdentityFrom(ctx)

	id, ok := c.pathID(w, r)
	if !ok {
		return
	}
	if !c.authorize(w, r, caller, authz.UserTarget(id), action) {
		return
	}
	view, err := op(ctx, id)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, view)
}

// pathID parsea el path param {userID}.
func (c *Controller) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidInput.WithDetail("id malformado"))
		return uuid.Nil, false
	}
	return id, true
}

// authorize evalúa el permiso y escribe la respuesta de denegación.
// Un error del evaluador (action/target inválido) es un bug de wiring:
// se loguea fuerte y responde 500.
func (c *Controller) authorize(w http.ResponseWriter, r *http.Request, caller domain.Identity, target authz.TargetRef, action authz.Action) bool {
	allowed, err := c.eval.Evaluate(r.Context(), caller, target, action)
	if err != nil {
		logger.From(r.Context()).Error("permission evaluation failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return false
	}
	if !allowed {
		if caller.IsAnonymous() {
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
		} else {
			httperrors.WriteError(w, httperrors.ErrForbidden)
		}
		return false
	}
	return true
}

// readJSON decodifica el body con límite de tamaño.
func (c *Controller) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return false
	}
	return true
}

// writeServiceError mapea los sentinel del core a errores HTTP.
func (c *Controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound)
	case errors.Is(err, store.ErrConflict):
		httperrors.WriteError(w, httperrors.ErrAlreadyExists.WithDetail(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrInvalidInput.WithDetail(err.Error()))
	default:
		logger.From(r.Context()).Error("unexpected service error", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
	}
}
