package domain

import "github.com/google/uuid"

// Identity es el resultado de la autenticación de sesión: o bien un caller
// anónimo, o bien una cuenta resuelta. Se pasa explícitamente por contexto;
// nunca se lee de estado global.
type Identity struct {
	Account *Account // nil => anónimo
}

// Anonymous es la identidad de un caller sin sesión autenticada.
var Anonymous = Identity{}

// IsAnonymous reporta si la identidad no tiene cuenta asociada.
func (i Identity) IsAnonymous() bool {
	return i.Account == nil
}

// ID retorna el id de la cuenta, o uuid.Nil si es anónimo.
func (i Identity) ID() uuid.UUID {
	if i.Account == nil {
		return uuid.Nil
	}
	return i.Account.ID
}

// Role retorna el rol de la cuenta. Un caller anónimo no tiene rol:
// retorna el Role vacío (rank 0, por debajo de USER).
func (i Identity) Role() Role {
	if i.Account == nil {
		return ""
	}
	return i.Account.Role
}

// Owns reporta si la identidad es dueña de la cuenta con el id dado.
func (i Identity) Owns(accountID uuid.UUID) bool {
	return i.Account != nil && i.Account.ID == accountID
}
