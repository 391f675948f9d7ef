package entity

import (
	"strconv"
	"time"
)

// TimestampLayout formato de "Ultima Leitura": DD/MM/YYYY HH:MM en UTC.
const TimestampLayout = "02/01/2006 15:04"

// ReportColumns encabezados del reporte, en el orden fijo del archivo.
var ReportColumns = []string{
	"Não.",
	"Cliente",
	"Morada",
	"ID de Medidor",
	"ID do Consumidor",
	"N/S Medidor",
	"ID Imovel",
	"Leitura1",
	"Ultima Leitura",
}

// ReportRow una fila del reporte: la última lectura de un medidor.
type ReportRow struct {
	Seq             int64  // Correlativo 1..N asignado tras la selección
	Client          string // Nombre del cliente, sin comas
	Address         string // calle + número + piso
	MeterLocationID string
	ConsumerID      string
	SerialNumber    string // N/S del medidor; clave de unicidad
	BuildingID      string
	Reading         int64 // Volumen truncado
	LastReadingAt   time.Time
}

// Record devuelve la fila como campos de texto en el orden de ReportColumns.
func (r ReportRow) Record() []string {
	return []string{
		strconv.FormatInt(r.Seq, 10),
		r.Client,
		r.Address,
		r.MeterLocationID,
		r.ConsumerID,
		r.SerialNumber,
		r.BuildingID,
		strconv.FormatInt(r.Reading, 10),
		r.LastReadingAt.UTC().Format(TimestampLayout),
	}
}
