// Package service orquesta las operaciones expuestas: registro, activación,
// login y administración de cuentas. Los chequeos de permisos ocurren antes,
// en la capa HTTP (evaluador de authz); acá se asume caller autorizado.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/email"
	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/security/password"
	"github.com/wearefrancis/auth/internal/store"
)

// CredentialVerifier es el contrato de hashing one-way que consume el core.
// Lo implementa security/password.Hasher (argon2id).
type CredentialVerifier interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// UserService implementa el ciclo de vida de cuentas.
type UserService struct {
	accounts store.AccountStore
	tokens   store.ActivationTokenStore
	verifier CredentialVerifier
	notifier email.Notifier
	policy   password.Policy
}

// NewUserService arma el service con sus colaboradores.
func NewUserService(st store.Store, verifier CredentialVerifier, notifier email.Notifier, policy password.Policy) *UserService {
	if notifier == nil {
		notifier = email.Noop{}
	}
	return &UserService{
		accounts: st.Accounts(),
		tokens:   st.ActivationTokens(),
		verifier: verifier,
		notifier: notifier,
		policy:   policy,
	}
}

// RegisterInput son los datos de un registro nuevo.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register crea una cuenta nueva.
//
// Auto-registro (byAdmin=false): la cuenta nace deshabilitada, se emite un
// activation token y se manda el mail; retorna OwnerView.
// Creación por admin (byAdmin=true): nace habilitada; retorna AdminView.
// Username o email ya usados => store.ErrConflict antes de escribir nada.
func (s *UserService) Register(ctx context.Context, in RegisterInput, byAdmin bool) (domain.View, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("UserService.Register"))

	if err := s.validateRegister(in); err != nil {
		return domain.View{}, err
	}

	if exists, err := s.accounts.ExistsByUsername(ctx, in.Username); err != nil {
		return domain.View{}, err
	} else if exists {
		return domain.View{}, fmt.Errorf("username %s already used: %w", in.Username, store.ErrConflict)
	}
	if exists, err := s.accounts.ExistsByEmail(ctx, in.Email); err != nil {
		return domain.View{}, err
	} else if exists {
		return domain.View{}, fmt.Errorf("email %s already used: %w", in.Email, store.ErrConflict)
	}

	hash, err := s.verifier.Hash(in.Password)
	if err != nil {
		return domain.View{}, err
	}

	acct, err := s.accounts.Save(ctx, &domain.Account{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Enabled:      byAdmin, // self-register queda pendiente de activación
	})
	if err != nil {
		return domain.View{}, err
	}
	log.Info("user created", logger.Username(acct.Username), logger.UserID(acct.ID.String()))

	if byAdmin {
		return domain.AdminView(acct), nil
	}

	tok := &domain.ActivationToken{Value: uuid.New(), AccountID: acct.ID}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return domain.View{}, err
	}
	log.Info("activation token created", logger.UserID(acct.ID.String()))

	// Fire-and-forget: un fallo de mail no voltea el registro.
	if err := s.notifier.SendActivation(ctx, acct, tok.Value.String()); err != nil {
		log.Error("unable to send activation mail", logger.Username(acct.Username), logger.Err(err))
	}
	return domain.OwnerView(acct), nil
}

// Activate consume el activation token: habilita la cuenta y borra el token.
// Un segundo intento con el mismo valor => store.ErrNotFound.
func (s *UserService) Activate(ctx context.Context, value uuid.UUID) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("UserService.Activate"))

	tok, err := s.tokens.FindByValue(ctx, value)
	if err != nil {
		return fmt.Errorf("activation token %s: %w", value, err)
	}
	acct, err := s.accounts.FindByID(ctx, tok.AccountID)
	if err != nil {
		return err
	}
	acct.Enabled = true
	if _, err := s.accounts.Save(ctx, acct); err != nil {
		return err
	}
	log.Info("user activated", logger.Username(acct.Username))

	if err := s.tokens.Delete(ctx, tok.Value); err != nil {
		return err
	}
	log.Info("activation token deleted")
	return nil
}

// Self proyecta la cuenta del caller: AdminView para roles >= ADMIN,
// OwnerView para el resto.
func (s *UserService) Self(caller domain.Identity) domain.View {
	if caller.Role().AtLeast(domain.RoleAdmin) {
		return domain.AdminView(caller.Account)
	}
	return domain.OwnerView(caller.Account)
}

// GetByID busca por id y proyecta según el viewer.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID, caller domain.Identity) (domain.View, error) {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return domain.View{}, fmt.Errorf("user %s: %w", id, err)
	}
	return domain.Project(acct, caller), nil
}

// GetByUsername busca por username y proyecta según el viewer.
func (s *UserService) GetByUsername(ctx context.Context, username string, caller domain.Identity) (domain.View, error) {
	acct, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return domain.View{}, fmt.Errorf("user %s: %w", username, err)
	}
	return domain.Project(acct, caller), nil
}

// UpdateInput son los campos mutables de una cuenta.
type UpdateInput struct {
	Email    string
	Password string
}

// Update cambia email y password. La unicidad de email excluye al propio
// usuario (re-enviar el email sin cambios no es conflicto). Retorna
// AdminView si byAdmin, sino OwnerView.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateInput, byAdmin bool) (domain.View, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("UserService.Update"))

	if err := s.validateUpdate(in); err != nil {
		return domain.View{}, err
	}

	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return domain.View{}, fmt.Errorf("user %s: %w", id, err)
	}
	if exists, err := s.accounts.ExistsByEmailAndIDNot(ctx, in.Email, id); err != nil {
		return domain.View{}, err
	} else if exists {
		return domain.View{}, fmt.Errorf("email %s already used: %w", in.Email, store.ErrConflict)
	}

	hash, err := s.verifier.Hash(in.Password)
	if err != nil {
		return domain.View{}, err
	}
	acct.Email = in.Email
	acct.PasswordHash = hash

	saved, err := s.accounts.Save(ctx, acct)
	if err != nil {
		return domain.View{}, err
	}
	log.Info("user updated", logger.Username(saved.Username))

	if byAdmin {
		return domain.AdminView(saved), nil
	}
	return domain.OwnerView(saved), nil
}

// Delete borra la cuenta (y su activation token pendiente, en cascada).
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("user %s: %w", id, err)
	}
	logger.From(ctx).Info("user deleted", logger.UserID(id.String()))
	return nil
}

// Enable habilita la cuenta sin pasar por activación (operación de admin).
func (s *UserService) Enable(ctx context.Context, id uuid.UUID) (domain.View, error) {
	return s.setFlags(ctx, id, "enabled", func(a *domain.Account) { a.Enabled = true })
}

// Lock bloquea la cuenta. Independiente de Enabled.
func (s *UserService) Lock(ctx context.Context, id uuid.UUID) (domain.View, error) {
	return s.setFlags(ctx, id, "locked", func(a *domain.Account) { a.Locked = true })
}

// Unlock desbloquea la cuenta.
func (s *UserService) Unlock(ctx context.Context, id uuid.UUID) (domain.View, error) {
	return s.setFlags(ctx, id, "unlocked", func(a *domain.Account) { a.Locked = false })
}

// ChangeRole cambia el rol de la cuenta.
func (s *UserService) ChangeRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.View, error) {
	if !role.Valid() {
		return domain.View{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.setFlags(ctx, id, "role changed to "+string(role), func(a *domain.Account) { a.Role = role })
}

func (s *UserService) setFlags(ctx context.Context, id uuid.UUID, what string, mutate func(*domain.Account)) (domain.View, error) {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return domain.View{}, fmt.Errorf("user %s: %w", id, err)
	}
	mutate(acct)
	saved, err := s.accounts.Save(ctx, acct)
	if err != nil {
		return domain.View{}, err
	}
	logger.From(ctx).Info("user "+what, logger.Username(saved.Username))
	return domain.AdminView(saved), nil
}

// ─── validación ───

func (s *UserService) validateRegister(in RegisterInput) error {
	if !domain.UsernameRegexp.MatchString(in.Username) {
		return fmt.Errorf("%w: username must match %s", ErrInvalidInput, domain.UsernameRegexp)
	}
	if !domain.EmailRegexp.MatchString(in.Email) {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if ok, reasons := s.policy.Validate(in.Password); !ok {
		return fmt.Errorf("%w: weak password (%s)", ErrInvalidInput, strings.Join(reasons, ", "))
	}
	return nil
}

func (s *UserService) validateUpdate(in UpdateInput) error {
	if !domain.EmailRegexp.MatchString(in.Email) {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if ok, reasons := s.policy.Validate(in.Password); !ok {
		return fmt.Errorf("%w: weak password (%s)", ErrInvalidInput, strings.Join(reasons, ", "))
	}
	return nil
}
