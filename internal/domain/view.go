package domain

import "github.com/google/uuid"

// ViewKind identifica cuánto de la cuenta se revela al viewer.
type ViewKind string

const (
	ViewAdmin  ViewKind = "admin"  // id, username, email, role, enabled, locked
	ViewOwner  ViewKind = "owner"  // id, username, email, role
	ViewPublic ViewKind = "public" // id, username
)

// View es la proyección de una cuenta según el viewer. Los campos que la
// proyección omite quedan en su zero value y no se serializan.
// PasswordHash no aparece en ninguna vista.
type View struct {
	Kind     ViewKind  `json:"-"`
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Role     Role      `json:"role,omitempty"`
	Enabled  *bool     `json:"enabled,omitempty"`
	Locked   *bool     `json:"locked,omitempty"`
}

// Project mapea (cuenta, viewer) a una de las tres vistas.
// Orden de selección: admin primero, después owner, sino public.
// Un ADMIN viendo su propia cuenta recibe la vista admin: el privilegio
// domina sobre la pertenencia.
func Project(acct *Account, viewer Identity) View {
	switch {
	case viewer.Role().AtLeast(RoleAdmin):
		return AdminView(acct)
	case viewer.Owns(acct.ID):
		return OwnerView(acct)
	default:
		return PublicView(acct)
	}
}

// AdminView expone la cuenta completa menos el hash de password.
func AdminView(acct *Account) View {
	enabled, locked := acct.Enabled, acct.Locked
	return View{
		Kind:     ViewAdmin,
		ID:       acct.ID,
		Username: acct.Username,
		Email:    acct.Email,
		Role:     acct.Role,
		Enabled:  &enabled,
		Locked:   &locked,
	}
}

// OwnerView expone los datos propios sin los flags de moderación.
func OwnerView(acct *Account) View {
	return View{
		Kind:     ViewOwner,
		ID:       acct.ID,
		Username: acct.Username,
		Email:    acct.Email,
		Role:     acct.Role,
	}
}

// PublicView expone solo id y username.
func PublicView(acct *Account) View {
	return View{
		Kind:     ViewPublic,
		ID:       acct.ID,
		Username: acct.Username,
	}
}
