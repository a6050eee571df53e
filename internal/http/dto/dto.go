// Package dto define los cuerpos de request/response de la API.
// Las vistas de usuario se serializan directamente desde domain.View.
package dto

// RegisterRequest es el body de POST /v1/users.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest es el body de PUT /v1/users/{id}.
type UpdateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangeRoleRequest es el body de PUT /v1/users/{id}/role.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// LoginRequest es el body de POST /v1/login (la variante GET usa query params).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse lleva el bearer token emitido.
type LoginResponse struct {
	JWT string `json:"jwt"`
}
