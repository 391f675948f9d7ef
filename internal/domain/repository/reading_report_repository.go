package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/giggo/readings-report/internal/domain/entity"
)

// LatestReading resultado crudo de la consulta: la lectura más reciente de un medidor.
// Lo produce la DB; el transformador lo convierte en entity.ReportRow.
type LatestReading struct {
	Seq             int64  // ROW_NUMBER() de la proyección externa
	Client          string // REPLACE(name, ',', ' '); vacío si no hay contrato
	Address         string // CONCAT(street, ' ', num_pol, ' ', floor)
	MeterLocationID string
	ConsumerID      string
	SerialNumber    string
	BuildingID      string
	Volume          decimal.NullDecimal // NUMERIC de origen, sin truncar
	ReadAt          time.Time
}

// ReadingReportRepository define la consulta de lectura del reporte.
// Las implementaciones son read-only (no modifican datos).
type ReadingReportRepository interface {
	// LatestReadings devuelve una fila por número de serie con su lectura más reciente
	// dentro de la ventana de la política, numeradas 1..N por número de serie.
	LatestReadings(ctx context.Context, policy entity.SelectionPolicy) ([]LatestReading, error)
}
