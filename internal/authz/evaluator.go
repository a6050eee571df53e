// Package authz implementa la evaluación de permisos sobre recursos de
// usuario: (caller, target, action) -> allow/deny.
//
// La evaluación es una función de decisión pura salvo por una capability
// mínima inyectada (RoleLookup) que se usa solo en lock/unlock para conocer
// el rol actual del target. Eso mantiene el evaluador testeable con un fake,
// sin repositorio real.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/wearefrancis/auth/internal/domain"
)

// Action es una operación sobre un recurso de usuario.
type Action string

const (
	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionEnable     Action = "enable"
	ActionLock       Action = "lock"
	ActionUnlock     Action = "unlock"
	ActionChangeRole Action = "changeRole"
)

// TargetKind identifica el tipo de recurso. Por ahora solo "user".
type TargetKind string

const TargetUser TargetKind = "user"

// Errores de programación/wiring: llegar acá no es un deny de negocio sino
// un bug en las rutas. Nunca deben ser alcanzables desde las operaciones
// expuestas.
var (
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidTarget = errors.New("invalid target kind")
)

// TargetRef referencia el recurso sobre el que se evalúa la acción.
type TargetRef struct {
	Kind TargetKind
	ID   uuid.UUID
}

// UserTarget construye un TargetRef de tipo user.
func UserTarget(id uuid.UUID) TargetRef {
	return TargetRef{Kind: TargetUser, ID: id}
}

// RoleLookup es la capability mínima de lectura que el evaluador necesita
// del store de cuentas.
type RoleLookup interface {
	// RoleOf retorna el rol actual de la cuenta. found=false si no existe
	// (el evaluador trata target inexistente como no-privilegiado; el 404
	// lo decide la capa de servicio).
	RoleOf(ctx context.Context, id uuid.UUID) (role domain.Role, found bool, err error)
}

// Evaluator decide si una identidad puede ejecutar una acción sobre un
// recurso. Sin estado mutable: seguro para uso concurrente.
type Evaluator struct {
	roles RoleLookup
}

// NewEvaluator crea un evaluador con la capability de lookup dada.
func NewEvaluator(roles RoleLookup) *Evaluator {
	return &Evaluator{roles: roles}
}

// Evaluate aplica la tabla de decisión:
//
//	create      caller anónimo, o rol >= ADMIN
//	read        siempre permitido (la proyección limita el output)
//	update      dueño del target, o rol >= ADMIN
//	delete      dueño del target, o rol == SUPER_ADMIN
//	enable      rol >= ADMIN
//	lock/unlock rol >= ADMIN, no sobre sí mismo; targets SUPER_ADMIN solo
//	            alcanzables por otro SUPER_ADMIN
//	changeRole  rol == SUPER_ADMIN y no sobre sí mismo
//
// La pertenencia (caller == target) se chequea antes que el rol: un ADMIN
// actuando sobre su propia cuenta satisface update por ownership, no por
// elevación.
func (e *Evaluator) Evaluate(ctx context.Context, caller domain.Identity, target TargetRef, action Action) (bool, error) {
	if target.Kind != TargetUser {
		return false, fmt.Errorf("%w: %q", ErrInvalidTarget, target.Kind)
	}

	switch action {
	case ActionCreate:
		return caller.IsAnonymous() || caller.Role().AtLeast(domain.RoleAdmin), nil

	case ActionRead:
		return true, nil

	case ActionUpdate:
		return caller.Owns(target.ID) || caller.Role().AtLeast(domain.RoleAdmin), nil

	case ActionDelete:
		return caller.Owns(target.ID) || caller.Role() == domain.RoleSuperAdmin, nil

	case ActionEnable:
		return caller.Role().AtLeast(domain.RoleAdmin), nil

	case ActionLock, ActionUnlock:
		if !caller.Role().AtLeast(domain.RoleAdmin) || caller.Owns(target.ID) {
			return false, nil
		}
		role, found, err := e.roles.RoleOf(ctx, target.ID)
		if err != nil {
			return false, fmt.Errorf("authz: role lookup: %w", err)
		}
		// Solo actores SUPER_ADMIN pueden tocar el lock de cuentas
		// SUPER_ADMIN; para el resto el target queda fuera de alcance.
		if found && role == domain.RoleSuperAdmin && caller.Role() != domain.RoleSuperAdmin {
			return false, nil
		}
		return true, nil

	case ActionChangeRole:
		return caller.Role() == domain.RoleSuperAdmin && !caller.Owns(target.ID), nil

	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
}
