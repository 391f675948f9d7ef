package postgres

import (
	"context"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"

	"github.com/giggo/readings-report/internal/domain"
	"github.com/giggo/readings-report/pkg/config"
)

// Connect abre la única conexión PostgreSQL del proceso.
// El caller la libera con defer conn.Close(ctx). Los timeouts son los del driver.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgx.Conn, error) {
	connConfig, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w: %w", domain.ErrConfig, err)
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("conectar a %s:%d/%s: %w: %w", cfg.Host, cfg.Port, cfg.DBName, domain.ErrConnection, err)
	}

	// Registrar codec para NUMERIC -> shopspring/decimal.
	pgxdecimal.Register(conn.TypeMap())

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("ping DB: %w: %w", domain.ErrConnection, err)
	}
	return conn, nil
}
