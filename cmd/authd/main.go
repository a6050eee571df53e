// authd es el binario del servicio de identidad: server HTTP, migraciones
// y seed del primer SUPER_ADMIN, como subcomandos de cobra.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wearefrancis/auth/internal/authz"
	"github.com/wearefrancis/auth/internal/bootstrap"
	"github.com/wearefrancis/auth/internal/cache"
	"github.com/wearefrancis/auth/internal/config"
	"github.com/wearefrancis/auth/internal/email"
	httpserver "github.com/wearefrancis/auth/internal/http"
	healthctrl "github.com/wearefrancis/auth/internal/http/controllers/health"
	"github.com/wearefrancis/auth/internal/observability/logger"
	"github.com/wearefrancis/auth/internal/security/password"
	"github.com/wearefrancis/auth/internal/service"
	"github.com/wearefrancis/auth/internal/store"
	"github.com/wearefrancis/auth/internal/store/cached"
	"github.com/wearefrancis/auth/internal/store/memory"
	pgstore "github.com/wearefrancis/auth/internal/store/pg"
	"github.com/wearefrancis/auth/internal/token"
	"github.com/wearefrancis/auth/migrations"
)

var version = "dev"

func main() {
	// .env es best-effort: en prod la config viene del entorno real.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:     "authd",
		Short:   "Servicio de identidad y autenticación de sesiones",
		Version: version,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path al YAML de configuración")

	root.AddCommand(serveCmd(&configPath))
	root.AddCommand(migrateCmd(&configPath))
	root.AddCommand(seedAdminCmd(&configPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el server HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := buildStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			cacheClient, err := cache.New(cache.Config{
				Driver:     cfg.Cache.Kind,
				DefaultTTL: cfg.CacheTTL(),
				Addr:       cfg.Cache.Redis.Addr,
				Password:   cfg.Cache.Redis.Password,
				DB:         cfg.Cache.Redis.DB,
			})
			if err != nil {
				return err
			}
			defer cacheClient.Close()

			cachedStore := cached.New(st, cacheClient, cfg.CacheTTL())

			hasher := password.New(password.Default)
			policy := password.Policy{
				MinLength:     cfg.Security.PasswordPolicy.MinLength,
				RequireUpper:  cfg.Security.PasswordPolicy.RequireUpper,
				RequireLower:  cfg.Security.PasswordPolicy.RequireLower,
				RequireDigit:  cfg.Security.PasswordPolicy.RequireDigit,
				RequireSymbol: cfg.Security.PasswordPolicy.RequireSymbol,
			}

			codec := token.NewCodec(cfg.JWT.Secret, cfg.JWTTTL(), token.SystemClock())

			var notifier email.Notifier = email.Noop{}
			if cfg.Email.Enabled {
				notifier = &email.SMTPNotifier{
					Host:     cfg.SMTP.Host,
					Port:     cfg.SMTP.Port,
					From:     cfg.SMTP.From,
					User:     cfg.SMTP.Username,
					Pass:     cfg.SMTP.Password,
					Subject:  "Activate your account",
					APIURL:   cfg.Email.BaseURL,
					StartTLS: cfg.SMTP.TLS != "none",
				}
			}

			users := service.NewUserService(cachedStore, hasher, notifier, policy)
			login := service.NewLoginService(cachedStore, hasher, codec)
			eval := authz.NewEvaluator(cachedStore.Accounts())

			if err := bootstrap.EnsureAdmin(ctx, st, hasher, cfg); err != nil {
				return err
			}

			handler, err := httpserver.NewRouter(httpserver.RouterDeps{
				Store:    cachedStore,
				Codec:    codec,
				Users:    users,
				Login:    login,
				Eval:     eval,
				Registry: prometheus.NewRegistry(),
				Probes: map[string]healthctrl.Pinger{
					"store": st,
					"cache": pingerFunc(cacheClient.Ping),
				},
			})
			if err != nil {
				return err
			}

			return httpserver.Serve(ctx, cfg.Server.Addr, handler)
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Aplica o revierte las migraciones de postgres",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			defer func() { _ = logger.Sync() }()

			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requiere storage.driver=postgres")
			}

			ctx := context.Background()
			pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			switch action {
			case "up":
				return migrations.Up(ctx, pool, steps)
			case "down":
				return migrations.Down(ctx, pool, steps)
			default:
				return fmt.Errorf("acción desconocida %q (up|down)", action)
			}
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "Cantidad de migraciones a aplicar (0 = todas)")
	return cmd
}

func seedAdminCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-admin",
		Short: "Crea la cuenta SUPER_ADMIN inicial si no existe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			initLogger(cfg)
			defer func() { _ = logger.Sync() }()

			ctx := context.Background()
			st, err := buildStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			return bootstrap.EnsureAdmin(ctx, st, password.New(password.Default), cfg)
		},
	}
}

func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "authd",
		Version:     version,
	})
}

func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return pgstore.New(ctx, cfg.Storage.DSN)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("storage driver desconocido %q", cfg.Storage.Driver)
	}
}

// pingerFunc adapta un func(ctx) error al Pinger de health.
type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }
