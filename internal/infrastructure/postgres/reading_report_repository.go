package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/giggo/readings-report/internal/domain/entity"
	"github.com/giggo/readings-report/internal/domain/repository"
)

var _ repository.ReadingReportRepository = (*ReadingReportRepo)(nil)

// Querier lo mínimo que el repositorio necesita de la conexión (*pgx.Conn, *pgxpool.Pool o pgx.Tx).
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// latestReadingsQuery última lectura por medidor dentro de la ventana.
//
//	$1 segundos de la ventana, $2 estados de cliente excluidos, $3 número de serie excluido.
//
// DISTINCT ON se queda con la primera fila de cada device según el ORDER BY interno:
// fecha más reciente y, a igualdad de fecha, el mayor volumen. El correlativo externo
// se asigna por número de serie.
const latestReadingsQuery = `
	SELECT
	    ROW_NUMBER() OVER (ORDER BY resultado_final.serial_number) AS seq,
	    resultado_final.client_name,
	    resultado_final.address,
	    resultado_final.meter_location_id,
	    resultado_final.consumer_id,
	    resultado_final.serial_number,
	    resultado_final.building_id,
	    resultado_final.volume,
	    resultado_final.read_at
	FROM (
	    SELECT DISTINCT ON (volume.device)
	        COALESCE(REPLACE(infocontrato.name::TEXT, ',', ' '), '')                        AS client_name,
	        CONCAT(infocontrato.street, ' ', infocontrato.num_pol, ' ', infocontrato.floor) AS address,
	        COALESCE(infocontrato.local::TEXT, '')                                           AS meter_location_id,
	        COALESCE(infocontrato.client::TEXT, '')                                          AS consumer_id,
	        volume.device::TEXT                                                              AS serial_number,
	        COALESCE(clients.building::TEXT, '')                                             AS building_id,
	        volume.volume::NUMERIC                                                           AS volume,
	        volume.date                                                                      AS read_at
	    FROM volume
	    LEFT JOIN infocontrato ON infocontrato.device = volume.device
	    LEFT JOIN clients      ON clients.client      = infocontrato.client
	    LEFT JOIN ramaisrua    ON ramaisrua.ramal     = clients.ramal
	    WHERE volume.date > NOW() - make_interval(secs => $1)
	      AND clients.situation::TEXT <> ALL($2::TEXT[])
	      AND volume.device::TEXT <> $3
	    ORDER BY volume.device, volume.date DESC, volume.volume DESC NULLS LAST
	) AS resultado_final
	ORDER BY seq`

// ReadingReportRepo consulta de solo lectura sobre volume, infocontrato, clients y ramaisrua.
type ReadingReportRepo struct {
	db Querier
}

// NewReadingReportRepository construye el adaptador.
func NewReadingReportRepository(db Querier) *ReadingReportRepo {
	return &ReadingReportRepo{db: db}
}

// LatestReadings ejecuta la consulta del reporte y devuelve las filas crudas en orden de correlativo.
func (r *ReadingReportRepo) LatestReadings(ctx context.Context, policy entity.SelectionPolicy) ([]repository.LatestReading, error) {
	rows, err := r.db.Query(ctx, latestReadingsQuery, queryArgs(policy)...)
	if err != nil {
		return nil, classifyError("readings.LatestReadings", err)
	}
	defer rows.Close()

	var results []repository.LatestReading
	for rows.Next() {
		var row repository.LatestReading
		if err := rows.Scan(
			&row.Seq,
			&row.Client,
			&row.Address,
			&row.MeterLocationID,
			&row.ConsumerID,
			&row.SerialNumber,
			&row.BuildingID,
			&row.Volume,
			&row.ReadAt,
		); err != nil {
			return nil, classifyError("readings.LatestReadings scan", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("readings.LatestReadings rows", err)
	}
	if results == nil {
		results = []repository.LatestReading{}
	}
	return results, nil
}

// queryArgs parámetros $1..$3 de latestReadingsQuery; la ventana va en segundos exactos.
func queryArgs(policy entity.SelectionPolicy) []any {
	statuses := policy.ExcludedStatuses
	if statuses == nil {
		statuses = []string{}
	}
	return []any{policy.Lookback.Seconds(), statuses, policy.ExcludedSerial}
}
