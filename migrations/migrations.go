// Package migrations embebe las migraciones SQL y expone un runner mínimo
// por convención de nombres: NNNN_descripcion_up.sql / _down.sql, aplicadas
// en orden ascendente (up) o descendente (down).
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wearefrancis/auth/internal/observability/logger"
)

//go:embed postgres/*.sql
var files embed.FS

// Up aplica todas las migraciones up pendientes. steps=0 aplica todas.
func Up(ctx context.Context, pool *pgxpool.Pool, steps int) error {
	names, err := listSQL("_up.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	if steps > 0 && steps < len(names) {
		names = names[:steps]
	}
	return apply(ctx, pool, names)
}

// Down revierte migraciones, la más reciente primero. steps=0 revierte todas.
func Down(ctx context.Context, pool *pgxpool.Pool, steps int) error {
	names, err := listSQL("_down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if steps > 0 && steps < len(names) {
		names = names[:steps]
	}
	return apply(ctx, pool, names)
}

func listSQL(suffix string) ([]string, error) {
	entries, err := files.ReadDir("postgres")
	if err != nil {
		return nil, fmt.Errorf("migrations: read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, names []string) error {
	log := logger.Named("migrations")
	for _, name := range names {
		sql, err := files.ReadFile("postgres/" + name)
		if err != nil {
			return fmt.Errorf("migrations: read %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migrations: exec %s: %w", name, err)
		}
		log.Info("applied", logger.String("file", name))
	}
	return nil
}
