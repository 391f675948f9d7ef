package report

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/giggo/readings-report/internal/domain"
	"github.com/giggo/readings-report/internal/domain/entity"
	"github.com/giggo/readings-report/internal/domain/repository"
)

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// Transform normaliza las filas crudas:
//   - "Ultima Leitura" pasa a UTC (el formato DD/MM/YYYY HH:MM se aplica al escribir).
//   - "Leitura1" se trunca a entero (hacia cero, sin redondeo).
//
// Es todo o nada: la primera fila no convertible aborta con domain.ErrTransform.
func Transform(rows []repository.LatestReading) ([]entity.ReportRow, error) {
	out := make([]entity.ReportRow, 0, len(rows))
	for i, raw := range rows {
		if raw.Seq != int64(i+1) {
			return nil, fmt.Errorf("%w: correlativo %d en la posición %d (medidor %q)", domain.ErrTransform, raw.Seq, i+1, raw.SerialNumber)
		}
		reading, err := truncateVolume(raw.Volume)
		if err != nil {
			return nil, fmt.Errorf("%w: medidor %q: %w", domain.ErrTransform, raw.SerialNumber, err)
		}
		if raw.ReadAt.IsZero() {
			return nil, fmt.Errorf("%w: medidor %q: fecha de lectura vacía", domain.ErrTransform, raw.SerialNumber)
		}
		out = append(out, entity.ReportRow{
			Seq:             raw.Seq,
			Client:          raw.Client,
			Address:         raw.Address,
			MeterLocationID: raw.MeterLocationID,
			ConsumerID:      raw.ConsumerID,
			SerialNumber:    raw.SerialNumber,
			BuildingID:      raw.BuildingID,
			Reading:         reading,
			LastReadingAt:   raw.ReadAt.UTC(),
		})
	}
	return out, nil
}

func truncateVolume(v decimal.NullDecimal) (int64, error) {
	if !v.Valid {
		return 0, errors.New("volumen NULL")
	}
	t := v.Decimal.Truncate(0)
	if t.LessThan(minInt64) || t.GreaterThan(maxInt64) {
		return 0, fmt.Errorf("volumen %s fuera de rango int64", v.Decimal.String())
	}
	return t.IntPart(), nil
}
