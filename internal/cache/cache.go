// Package cache provee una abstracción de caching con soporte multi-backend.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// El único consumidor es el decorador de store/cached, que cachea lookups
// de cuentas con TTL corto e invalida en cada escritura.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indica que la key no existe en el cache.
var ErrNotFound = errors.New("cache: key not found")

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set guarda un valor con TTL. Si ttl es 0 usa el default del backend.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete elimina una key. Borrar una key inexistente no es error.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	// Driver: "memory" | "redis". Default: "memory".
	Driver string

	// DefaultTTL para entradas sin TTL explícito.
	DefaultTTL time.Duration

	// Addr y Password solo aplican al driver redis.
	Addr     string
	Password string
	DB       int
}

// New crea un Client según el driver configurado.
func New(cfg Config) (Client, error) {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Minute
	}
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(cfg.DefaultTTL), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}
