package service

import (
	"context"

	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/store"
	"github.com/wearefrancis/auth/internal/token"
)

// LoginService autentica credenciales y emite el bearer token de sesión.
type LoginService struct {
	accounts store.AccountStore
	verifier CredentialVerifier
	codec    *token.Codec
}

// NewLoginService arma el service.
func NewLoginService(st store.Store, verifier CredentialVerifier, codec *token.Codec) *LoginService {
	return &LoginService{accounts: st.Accounts(), verifier: verifier, codec: codec}
}

// Login verifica (username, password) y emite un JWT.
// Username inexistente y password incorrecto fallan igual, con
// ErrBadCredentials: no se revela si el username existe.
//
// No chequea enabled/locked acá: el token de una cuenta deshabilitada o
// bloqueada nunca pasa Validate, así que no abre ninguna puerta.
func (s *LoginService) Login(ctx context.Context, username, password string) (string, error) {
	acct, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if store.IsNotFound(err) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if !s.verifier.Verify(password, acct.PasswordHash) {
		return "", ErrBadCredentials
	}

	jwt, err := s.codec.Mint(acct.Username)
	if err != nil {
		return "", err
	}
	logger.From(ctx).Info("jwt generated", logger.Username(username))
	return jwt, nil
}
