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

type accountRepo struct{ pool *pgxpool.Pool }

const accountColumns = `id, username, email, password_hash, role, enabled, locked`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.Enabled, &a.Locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepo) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, username))
}

func (r *accountRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, username).Scan(&exists)
	return exists, err
}

func (r *accountRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	return exists, err
}

func (r *accountRepo) ExistsByEmailAndIDNot(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1 AND NOT id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, email, id).Scan(&exists)
	return exists, err
}

func (r *accountRepo) RoleOf(ctx context.Context, id uuid.UUID) (domain.Role, bool, error) {
	const query = `SELECT role FROM accounts WHERE id = $1`
	var role domain.Role
	err := r.pool.QueryRow(ctx, query, id).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}

func (r *accountRepo) Save(ctx context.Context, acct *domain.Account) (*domain.Account, error) {
	const query = `
		INSERT INTO accounts (id, username, email, password_hash, role, enabled, locked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			enabled = EXCLUDED.enabled,
			locked = EXCLUDED.locked
	`
	_, err := r.pool.Exec(ctx, query,
		acct.ID, acct.Username, acct.Email, acct.PasswordHash, acct.Role, acct.Enabled, acct.Locked,
	)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	out := *acct
	return &out, nil
}

func (r *accountRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// El schema tiene ON DELETE CASCADE sobre activation_tokens: la cuenta
	// no sobrevive a una activación pendiente ni al revés.
	const query = `DELETE FROM accounts WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
