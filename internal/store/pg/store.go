// Package pg implementa store.Store sobre Postgres usando pgx/v5.
package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearefrancis/auth/internal/store"
)

// Store es el backend Postgres. Las constraints UNIQUE de username/email y
// la FK ON DELETE CASCADE de activation_tokens viven en el schema
// (migrations/postgres); acá solo mapeamos errores.
type Store struct {
	pool     *pgxpool.Pool
	accounts *accountRepo
	tokens   *activationTokenRepo
}

// New crea el Store conectando al DSN dado.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:     pool,
		accounts: &accountRepo{pool: pool},
		tokens:   &activationTokenRepo{pool: pool},
	}, nil
}

func (s *Store) Accounts() store.AccountStore                 { return s.accounts }
func (s *Store) ActivationTokens() store.ActivationTokenStore { return s.tokens }

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// mapWriteErr traduce errores de Postgres a los sentinel del contrato.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return store.ErrConflict
	}
	return err
}
