package report

import (
	"context"
	"time"

	"github.com/giggo/readings-report/internal/domain/entity"
)

// Exporter escribe el reporte y devuelve el nombre del archivo generado.
type Exporter interface {
	Export(ctx context.Context, rows []entity.ReportRow, now time.Time) (string, error)
}

// Clock fuente de la hora de ejecución (nombre del archivo).
type Clock func() time.Time
