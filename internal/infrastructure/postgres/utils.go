package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/giggo/readings-report/internal/domain"
)

// classifyError envuelve err con el sentinel de dominio que corresponde:
// errores del servidor (SQLSTATE) son de consulta; fallos de red o de conexión, de conexión.
func classifyError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: [%s] %w", op, domain.ErrQuery, pgErr.Code, err)
	}
	if isConnectionError(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConnection, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrQuery, err)
}

func isConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return pgconn.Timeout(err)
}
