// Package config carga la configuración del servicio desde YAML con
// overrides por variable de entorno. Los secretos (JWT, SMTP password,
// DSN con credenciales) se esperan por env, nunca commiteados en el YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		TTL   string `yaml:"ttl"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	JWT struct {
		// Secret viene SOLO por env (JWT_SECRET); el campo existe para dev.
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"jwt"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
		// auto | starttls | none
		TLS string `yaml:"tls"`
	} `yaml:"smtp"`

	Email struct {
		// Enabled=false => notifier noop (dev, tests)
		Enabled bool   `yaml:"enabled"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"email"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
	} `yaml:"security"`

	Bootstrap struct {
		// Primer SUPER_ADMIN. Password por env (BOOTSTRAP_ADMIN_PASSWORD).
		AdminUsername string `yaml:"admin_username"`
		AdminEmail    string `yaml:"admin_email"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"bootstrap"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load lee el YAML de path, aplica defaults, overrides por env y valida.
// path vacío arranca con defaults puros (útil en tests y dev).
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "30s"
	}
	if c.JWT.TTL == "" {
		c.JWT.TTL = "24h"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Email.BaseURL == "" {
		c.Email.BaseURL = "http://localhost:8080"
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 8
		c.Security.PasswordPolicy.RequireUpper = true
		c.Security.PasswordPolicy.RequireLower = true
		c.Security.PasswordPolicy.RequireDigit = true
		c.Security.PasswordPolicy.RequireSymbol = true
	}
	if c.Bootstrap.AdminUsername == "" {
		c.Bootstrap.AdminUsername = "admin"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("DATABASE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("JWT_TTL"); ok {
		c.JWT.TTL = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvBool("EMAIL_ENABLED"); ok {
		c.Email.Enabled = v
	}
	if v, ok := getEnvStr("EMAIL_BASE_URL"); ok {
		c.Email.BaseURL = v
	}
	if v, ok := getEnvStr("BOOTSTRAP_ADMIN_USERNAME"); ok {
		c.Bootstrap.AdminUsername = v
	}
	if v, ok := getEnvStr("BOOTSTRAP_ADMIN_EMAIL"); ok {
		c.Bootstrap.AdminEmail = v
	}
	if v, ok := getEnvStr("BOOTSTRAP_ADMIN_PASSWORD"); ok {
		c.Bootstrap.AdminPassword = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}

// Validate chequea coherencia y rechaza configuraciones inseguras en prod.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("config: storage.driver desconocido %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.driver=postgres requiere DSN (DATABASE_DSN)")
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: cache.kind desconocido %q", c.Cache.Kind)
	}
	if c.Cache.Kind == "redis" && strings.TrimSpace(c.Cache.Redis.Addr) == "" {
		return fmt.Errorf("config: cache.kind=redis requiere redis.addr (REDIS_ADDR)")
	}
	if _, err := time.ParseDuration(c.JWT.TTL); err != nil {
		return fmt.Errorf("config: jwt.ttl inválido: %w", err)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("config: cache.ttl inválido: %w", err)
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return fmt.Errorf("config: postgres.conn_max_lifetime inválido: %w", err)
		}
	}
	if strings.EqualFold(c.App.Env, "prod") {
		if strings.TrimSpace(c.JWT.Secret) == "" {
			return fmt.Errorf("config: JWT_SECRET es obligatorio en prod")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("config: JWT_SECRET demasiado corto para HS512 (mínimo 32 bytes)")
		}
	}
	return nil
}

// JWTTTL devuelve el TTL parseado (Validate ya garantizó que parsea).
func (c *Config) JWTTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.TTL)
	return d
}

// CacheTTL devuelve el TTL de cache parseado.
func (c *Config) CacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.TTL)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
