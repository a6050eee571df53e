// Package token implementa el codec del bearer token de sesión: un JWT
// firmado con MAC simétrico (HS512) que lleva subject, iat y exp.
// El token nunca se persiste; la expiración es la única invalidación.
package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/wearefrancis/auth/internal/domain"
)

// ErrInvalidToken indica un token malformado, sin firma válida o imposible
// de parsear. Se presenta al exterior como no-autenticado.
var ErrInvalidToken = errors.New("invalid token")

// Clock abstrae el tiempo actual para poder testear expiración.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock retorna el reloj del sistema.
func SystemClock() Clock { return systemClock{} }

// Claims son los claims que el codec embebe y recupera.
type Claims struct {
	Subject   string // username de la cuenta
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec firma y verifica bearer tokens. Mint y Decode son puros: no tocan
// ningún estado compartido, seguros para uso concurrente.
type Codec struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// NewCodec crea un codec con el secreto simétrico y TTL dados.
// Si clock es nil usa el reloj del sistema.
func NewCodec(secret string, ttl time.Duration, clock Clock) *Codec {
	if clock == nil {
		clock = SystemClock()
	}
	return &Codec{secret: []byte(secret), ttl: ttl, clock: clock}
}

// Mint emite un token firmado para el subject dado.
// exp = now + ttl; iat = now.
func (c *Codec) Mint(subject string) (string, error) {
	now := c.clock.Now()
	claims := jwtv5.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(c.ttl)),
	}
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS512, claims).SignedString(c.secret)
}

// Decode verifica la firma y recupera los claims.
// NO chequea expiración: esa es una decisión del caller (ver Validate).
// Cualquier fallo de firma/estructura retorna ErrInvalidToken.
func (c *Codec) Decode(token string) (Claims, error) {
	var rc jwtv5.RegisteredClaims
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS512.Alg()}),
		// La expiración se evalúa en Validate contra el Clock inyectado.
		jwtv5.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(token, &rc, func(t *jwtv5.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	out := Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		out.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out, nil
}

// Validate decide si el token autoriza a la cuenta dada, ahora.
// Requiere TODO a la vez: firma válida, cuenta habilitada, no bloqueada,
// subject == username y exp > now. Chequear enabled/locked acá (y no al
// emitir) hace que un token emitido antes de un lock muera de inmediato
// sin necesidad de revocación.
func (c *Codec) Validate(token string, acct *domain.Account) (bool, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return false, err
	}
	ok := acct != nil &&
		acct.Enabled &&
		!acct.Locked &&
		claims.Subject == acct.Username &&
		claims.ExpiresAt.After(c.clock.Now())
	return ok, nil
}
