package middlewares

import (
	"net/http"
	"strings"

	"github.com/wearefrancis/auth/internal/domain"
	httperrors "github.com/wearefrancis/auth/internal/http/errors"
	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/store"
	"github.com/wearefrancis/auth/internal/token"
)

// Authenticate resuelve la identidad del caller a partir del header
// Authorization, por request:
//
//   - Sin header, o esquema que no es Bearer => sigue como Anonymous. Un
//     esquema malformado no es fallo duro: los endpoints públicos tienen que
//     seguir funcionando.
//   - Bearer presente => decode; firma inválida => 401, corta.
//   - Subject sin cuenta => 401 (mismo error que token inválido: no se
//     filtra si el username existe).
//   - Validate false (deshabilitada, bloqueada, subject ajeno o expirado)
//     => 401. True => la cuenta queda como Identity en el contexto.
func Authenticate(codec *token.Codec, accounts store.AccountStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := codec.Decode(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			acct, err := accounts.FindByUsername(r.Context(), claims.Subject)
			if err != nil {
				if !store.IsNotFound(err) {
					logger.From(r.Context()).Error("account lookup failed", logger.Err(err))
					httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
					return
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ok, err := codec.Validate(raw, acct)
			if err != nil || !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := WithIdentity(r.Context(), domain.Identity{Account: acct})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity corta con 401 si no hay identidad autenticada en el
// contexto. Debe usarse después de Authenticate.
func RequireIdentity() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IdentityFrom(r.Context()).IsAnonymous() {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
