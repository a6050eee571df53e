package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/store"
)

type activationTokenRepo struct{ pool *pgxpool.Pool }

func (r *activationTokenRepo) Create(ctx context.Context, tok *domain.ActivationToken) error {
	const query = `INSERT INTO activation_tokens (value, account_id) VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, query, tok.Value, tok.AccountID)
	return mapWriteErr(err)
}

func (r *activationTokenRepo) FindByValue(ctx context.Context, value uuid.UUID) (*domain.ActivationToken, error) {
	const query = `SELECT value, account_id FROM activation_tokens WHERE value = $1`
	var t domain.ActivationToken
	err := r.pool.QueryRow(ctx, query, value).Scan(&t.Value, &t.AccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *activationTokenRepo) Delete(ctx context.Context, value uuid.UUID) error {
	const query = `DELETE FROM activation_tokens WHERE value = $1`
	tag, err := r.pool.Exec(ctx, query, value)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
