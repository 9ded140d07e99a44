package postgres

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Despensa-api/pkg/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate aplica las migraciones pendientes de migrations/ (esquema y catálogo inicial).
// La versión aplicada queda en la tabla schema_migrations.
func Migrate(cfg config.DBConfig, log zerolog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("fuente de migraciones: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(cfg))
	if err != nil {
		return fmt.Errorf("iniciar migraciones: %w", err)
	}
	defer m.Close()

	from, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("versión del esquema: %w", err)
	}
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Uint("version", from).Msg("esquema al día")
			return nil
		}
		return fmt.Errorf("aplicar migraciones: %w", err)
	}
	to, _, _ := m.Version()
	log.Info().Uint("from", from).Uint("to", to).Msg("migraciones aplicadas")
	return nil
}

// migrateURL connection string con el esquema pgx5:// del driver de golang-migrate.
func migrateURL(cfg config.DBConfig) string {
	raw := cfg.ConnectionString()
	if cfg.DatabaseURL != "" {
		raw = databaseURLWithIPv4(raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Scheme = "pgx5"
	return u.String()
}
