package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Errorf("addr = %q", c.Server.Addr)
	}
	if c.Storage.Driver != "memory" || c.Cache.Kind != "memory" {
		t.Errorf("drivers = %q/%q", c.Storage.Driver, c.Cache.Kind)
	}
	if c.JWTTTL() != 24*time.Hour {
		t.Errorf("jwt ttl = %v", c.JWTTTL())
	}
	if c.Security.PasswordPolicy.MinLength != 8 {
		t.Errorf("min length = %d", c.Security.PasswordPolicy.MinLength)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":9000"
storage:
  driver: memory
jwt:
  ttl: 1h
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SERVER_ADDR", ":7777")
	t.Setenv("JWT_SECRET", "from-the-environment")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// env gana sobre YAML
	if c.Server.Addr != ":7777" {
		t.Errorf("addr = %q, want env override", c.Server.Addr)
	}
	if c.JWT.Secret != "from-the-environment" {
		t.Errorf("secret = %q", c.JWT.Secret)
	}
	if c.JWTTTL() != time.Hour {
		t.Errorf("ttl = %v", c.JWTTTL())
	}
	if c.Log.Level != "warn" {
		t.Errorf("level = %q", c.Log.Level)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage driver", func(c *Config) { c.Storage.Driver = "dbase" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"unknown cache kind", func(c *Config) { c.Cache.Kind = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Kind = "redis" }},
		{"bad jwt ttl", func(c *Config) { c.JWT.TTL = "pronto" }},
		{"prod without secret", func(c *Config) { c.App.Env = "prod"; c.JWT.Secret = "" }},
		{"prod with short secret", func(c *Config) { c.App.Env = "prod"; c.JWT.Secret = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load("")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("validate accepted a bad config")
			}
		})
	}
}
