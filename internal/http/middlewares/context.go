package middlewares

import (
	"context"

	"github.com/wearefrancis/auth/internal/domain"
)

type identityKey struct{}
type requestIDKey struct{}

// WithIdentity inyecta la identidad resuelta en el contexto.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extrae la identidad del contexto. Si el middleware de
// autenticación no corrió (o el caller no presentó token), retorna Anonymous:
// nunca hay estado ambiente implícito, solo este valor explícito.
func IdentityFrom(ctx context.Context) domain.Identity {
	if v := ctx.Value(identityKey{}); v != nil {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Anonymous
}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// GetRequestID extrae el request ID del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(requestIDKey{}); v != nil {
		if rid, ok := v.(string); ok {
			return rid
		}
	}
	return ""
}
