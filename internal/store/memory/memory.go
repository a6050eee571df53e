// Package memory implementa store.Store en memoria, para desarrollo y tests.
// Las operaciones serializan bajo un mutex, que cumple el mismo papel que
// las constraints atómicas del backend real.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]domain.Account
	tokens   map[uuid.UUID]domain.ActivationToken

	accountRepo *accountRepo
	tokenRepo   *activationTokenRepo
}

// New crea un Store vacío.
func New() *Store {
	s := &Store{
		accounts: make(map[uuid.UUID]domain.Account),
		tokens:   make(map[uuid.UUID]domain.ActivationToken),
	}
	s.accountRepo = &accountRepo{s: s}
	s.tokenRepo = &activationTokenRepo{s: s}
	return s
}

func (s *Store) Accounts() store.AccountStore                 { return s.accountRepo }
func (s *Store) ActivationTokens() store.ActivationTokenStore { return s.tokenRepo }
func (s *Store) Ping(ctx context.Context) error               { return nil }
func (s *Store) Close() error                                 { return nil }

// ─── AccountStore ───

type accountRepo struct{ s *Store }

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.accounts[id]; ok {
		out := a
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (r *accountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Username == username {
			out := a
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *accountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepo) ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Email == email && a.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (r *accountRepo) RoleOf(ctx context.Context, id uuid.UUID) (domain.Role, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if a, ok := r.s.accounts[id]; ok {
		return a.Role, true, nil
	}
	return "", false, nil
}

func (r *accountRepo) Save(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.ID == acct.ID {
			continue
		}
		if a.Username == acct.Username || a.Email == acct.Email {
			return nil, store.ErrConflict
		}
	}
	r.s.accounts[acct.ID] = *acct
	out := *acct
	return &out, nil
}

func (r *accountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.accounts, id)
	// cascade: tokens de activación pendientes
	for v, t := range r.s.tokens {
		if t.AccountID == id {
			delete(r.s.tokens, v)
		}
	}
	return nil
}

// ─── ActivationTokenStore ───

type activationTokenRepo struct{ s *Store }

func (r *activationTokenRepo) Create(ctx context.Context, tok *domain.ActivationToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[tok.Value]; ok {
		return store.ErrConflict
	}
	r.s.tokens[tok.Value] = *tok
	return nil
}

func (r *activationTokenRepo) FindByValue(ctx context.Context, value uuid.UUID) (*domain.ActivationToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if t, ok := r.s.tokens[value]; ok {
		out := t
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (r *activationTokenRepo) Delete(ctx context.Context, value uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[value]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.tokens, value)
	return nil
}
