// Package store define los contratos de persistencia que consume el core.
// Los adapters viven en subpaquetes (pg, memory, cached); el core solo ve
// estas interfaces y los errores sentinel.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/domain"
)

// AccountStore persiste cuentas. Las restricciones de unicidad de
// username/email las garantiza el backend de forma atómica (constraints en
// Postgres, mutex en memory); las escrituras concurrentes sobre el mismo id
// serializan en el backend.
type AccountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByEmailAndIDNot reporta si otro usuario (id distinto) ya usa el
	// email. Es la semántica correcta para updates: un usuario re-enviando
	// su propio email sin cambios no debe chocar consigo mismo.
	ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error)

	// RoleOf es el lookup mínimo que necesita el evaluador de permisos.
	RoleOf(ctx context.Context, id uuid.UUID) (role domain.Role, found bool, err error)

	// Save inserta o actualiza la cuenta (upsert por id).
	// Violación de unicidad => ErrConflict.
	Save(ctx context.Context, acct *domain.Account) (*domain.Account, error)

	// Delete borra la cuenta. Los activation tokens pendientes caen en
	// cascada. Cuenta inexistente => ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivationTokenStore persiste los tokens de activación (1:1 con cuentas
// deshabilitadas, un solo uso).
type ActivationTokenStore interface {
	// Create guarda un token nuevo para la cuenta.
	Create(ctx context.Context, tok *domain.ActivationToken) error

	// FindByValue busca el token por su valor. Inexistente => ErrNotFound.
	FindByValue(ctx context.Context, value uuid.UUID) (*domain.ActivationToken, error)

	// Delete consume el token. Inexistente => ErrNotFound.
	Delete(ctx context.Context, value uuid.UUID) error
}

// Store agrupa los repositorios que expone un backend.
type Store interface {
	Accounts() AccountStore
	ActivationTokens() ActivationTokenStore

	// Ping verifica la conexión al backend (readiness).
	Ping(ctx context.Context) error

	// Close libera recursos del backend.
	Close() error
}
