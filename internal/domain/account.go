// Package domain contiene el modelo central: cuentas, roles, identidades
// y las proyecciones de visibilidad.
package domain

import (
	"regexp"

	"github.com/google/uuid"
)

// Límites de username (se aplican también en el routing: un path segment
// que matchea UsernameRegexp se interpreta como username, no como UUID).
const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
)

var (
	// UsernameRegexp valida el username: letras, dígitos y underscore.
	UsernameRegexp = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

	// EmailRegexp es una validación sintáctica mínima de email.
	EmailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Role es el nivel de privilegio de una cuenta.
// El orden de privilegio NO depende del orden de declaración: usar Rank().
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Rank define el orden total USER < ADMIN < SUPER_ADMIN.
// Roles desconocidos quedan por debajo de USER.
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	default:
		return 0
	}
}

// AtLeast reporta si r tiene al menos el privilegio de other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// Valid reporta si r es uno de los tres roles definidos.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// ParseRole convierte un string a Role. Retorna false si no es un rol válido.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Account representa una identidad registrada.
// PasswordHash nunca sale del core: las vistas lo omiten siempre.
type Account struct {
	ID           uuid.UUID
	Username     string // único, inmutable después de creación
	Email        string // único, mutable
	PasswordHash string
	Role         Role
	Enabled      bool // false hasta activación (self-register); true si lo creó un admin
	Locked       bool // seteable por administración, independiente de Enabled
}

// ActivationToken es una credencial de un solo uso que prueba control del
// registro. 1:1 con una cuenta deshabilitada; se consume y borra al activar.
// No confundir con el bearer token de sesión (ver internal/token).
type ActivationToken struct {
	Value     uuid.UUID
	AccountID uuid.UUID
}
