// Package cached decora un store.Store cacheando los lookups de cuentas
// (los puntos calientes: el autenticador de sesión resuelve una cuenta por
// username en cada request autenticada).
//
// Escrituras invalidan (write-through invalidation) y el TTL es corto: un
// lock/disable se ve como máximo una entrada de cache después, y de
// inmediato dentro del mismo proceso que escribió.
package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/cache"
	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/store"
)

const (
	keyByIDPrefix       = "acct:id:"
	keyByUsernamePrefix = "acct:u:"
)

// Store envuelve otro store.Store con un cache.Client.
type Store struct {
	inner    store.Store
	accounts *accountRepo
}

// New crea el decorador. ttl limita cuánto puede vivir una cuenta cacheada.
func New(inner store.Store, client cache.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Store{
		inner: inner,
		accounts: &accountRepo{
			inner:  inner.Accounts(),
			client: client,
			ttl:    ttl,
		},
	}
}

func (s *Store) Accounts() store.AccountStore                 { return s.accounts }
func (s *Store) ActivationTokens() store.ActivationTokenStore { return s.inner.ActivationTokens() }
func (s *Store) Ping(ctx context.Context) error               { return s.inner.Ping(ctx) }
func (s *Store) Close() error                                 { return s.inner.Close() }

type accountRepo struct {
	inner  store.AccountStore
	client cache.Client
	ttl    time.Duration
}

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	if acct, ok := r.cached(ctx, keyByIDPrefix+id.String()); ok {
		return acct, nil
	}
	acct, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.put(ctx, acct)
	return acct, nil
}

func (r *accountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	if acct, ok := r.cached(ctx, keyByUsernamePrefix+username); ok {
		return acct, nil
	}
	acct, err := r.inner.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	r.put(ctx, acct)
	return acct, nil
}

// Los exists/RoleOf alimentan decisiones de unicidad y permisos: van
// siempre al backend.

func (r *accountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.inner.ExistsByUsername(ctx, username)
}

func (r *accountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.inner.ExistsByEmail(ctx, email)
}

func (r *accountRepo) ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	return r.inner.ExistsByEmailAndIDNot(ctx, email, id)
}

func (r *accountRepo) RoleOf(ctx context.Context, id uuid.UUID) (domain.Role, bool, error) {
	return r.inner.RoleOf(ctx, id)
}

func (r *accountRepo) Save(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	saved, err := r.inner.Save(ctx, acct)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, saved.ID, saved.Username)
	return saved, nil
}

func (r *accountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Resolver el username antes de borrar para invalidar ambas keys.
	username := ""
	if acct, err := r.inner.FindByID(ctx, id); err == nil {
		username = acct.Username
	}
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id, username)
	return nil
}

// ─── helpers ───

func (r *accountRepo) cached(ctx context.Context, key string) (*domain.Account, bool) {
	b, err := r.client.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var acct domain.Account
	if err := json.Unmarshal(b, &acct); err != nil {
		return nil, false
	}
	return &acct, true
}

func (r *accountRepo) put(ctx context.Context, acct *domain.Account) {
	b, err := json.Marshal(acct)
	if err != nil {
		return
	}
	// Errores de cache nunca afectan la request: log y seguir.
	if err := r.client.Set(ctx, keyByIDPrefix+acct.ID.String(), b, r.ttl); err != nil {
		logger.From(ctx).Debug("cache set failed", logger.Err(err))
	}
	if err := r.client.Set(ctx, keyByUsernamePrefix+acct.Username, b, r.ttl); err != nil {
		logger.From(ctx).Debug("cache set failed", logger.Err(err))
	}
}

func (r *accountRepo) invalidate(ctx context.Context, id uuid.UUID, username string) {
	keys := []string{keyByIDPrefix + id.String()}
	if username != "" {
		keys = append(keys, keyByUsernamePrefix+username)
	}
	if err := r.client.Delete(ctx, keys...); err != nil {
		logger.From(ctx).Warn("cache invalidation failed", logger.Err(err))
	}
}
