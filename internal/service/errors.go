package service

import "errors"

var (
	// ErrBadCredentials indica username/password que no matchean. El mensaje
	// al exterior nunca revela cuál de los dos falló ni si el username existe.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidInput indica datos de registro/update que no pasan la
	// validación (formato de username/email, policy de password, rol
	// desconocido). Se envuelve con el detalle concreto.
	ErrInvalidInput = errors.New("invalid input")
)
