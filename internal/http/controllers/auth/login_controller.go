// Package auth contiene el controller de login.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wearefrancis/auth/internal/http/dto"
	httperrors "github.com/wearefrancis/auth/internal/http/errors"
	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/service"
)

const maxLoginBodySize = 64 * 1024 // 64KB

// LoginController maneja el endpoint de login.
type LoginController struct {
	service *service.LoginService
}

// NewLoginController crea el controller.
func NewLoginController(svc *service.LoginService) *LoginController {
	return &LoginController{service: svc}
}

// Login maneja GET /v1/login (query params, compat con clientes viejos)
// y POST /v1/login (JSON body).
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	switch r.Method {
	case http.MethodGet:
		req.Username = r.URL.Query().Get("username")
		req.Password = r.URL.Query().Get("password")

	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodySize)
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httperrors.WriteError(w, httperrors.ErrInvalidJSON)
			return
		}

	default:
		w.Header().Set("Allow", "GET, POST")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	if req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("username y password son obligatorios"))
		return
	}

	jwt, err := c.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			// Mismo error exista o no el username.
			httperrors.WriteError(w, httperrors.ErrBadCredentials)
			return
		}
		log.Error("login failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	httperrors.WriteJSON(w, http.StatusOK, dto.LoginResponse{JWT: jwt})
}
