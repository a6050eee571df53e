// Package bootstrap siembra el estado inicial del servicio: la primera
// cuenta SUPER_ADMIN, sin la cual nadie puede administrar roles.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/config"
	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/security/password"
	"github.com/wearefrancis/auth/internal/store"
)

// EnsureAdmin crea la cuenta SUPER_ADMIN inicial si no existe. Idempotente:
// si el username ya está tomado no toca nada. Sin password configurado
// (BOOTSTRAP_ADMIN_PASSWORD) loguea un warning y sigue; útil en entornos
// donde el seed se hace por otra vía.
func EnsureAdmin(ctx context.Context, st store.Store, hasher *password.Hasher, cfg *config.Config) error {
	log := logger.Named("bootstrap")

	if cfg.Bootstrap.AdminPassword == "" {
		log.Warn("no admin password configured; skipping super admin seed")
		return nil
	}

	exists, err := st.Accounts().ExistsByUsername(ctx, cfg.Bootstrap.AdminUsername)
	if err != nil {
		return fmt.Errorf("bootstrap: check admin: %w", err)
	}
	if exists {
		log.Debug("super admin already present", logger.Username(cfg.Bootstrap.AdminUsername))
		return nil
	}

	hash, err := hasher.Hash(cfg.Bootstrap.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap: hash admin password: %w", err)
	}

	acct := &domain.Account{
		ID:           uuid.New(),
		Username:     cfg.Bootstrap.AdminUsername,
		Email:        cfg.Bootstrap.AdminEmail,
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		Enabled:      true,
		Locked:       false,
	}
	if _, err := st.Accounts().Save(ctx, acct); err != nil {
		return fmt.Errorf("bootstrap: save admin: %w", err)
	}

	log.Info("super admin seeded",
		logger.UserID(acct.ID.String()),
		logger.Username(acct.Username))
	return nil
}
