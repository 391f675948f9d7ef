package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/giggo/readings-report/internal/application/report"
	"github.com/giggo/readings-report/internal/domain"
	"github.com/giggo/readings-report/internal/domain/entity"
)

var _ report.Exporter = (*TSVExporter)(nil)

// Encoding UTF-16 little endian con BOM, igual que el códec "utf-16" de Python en x86.
var Encoding encoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// FileName readings_DDMMYYYY.csv con la fecha local de ejecución.
func FileName(now time.Time) string {
	return "readings_" + now.Local().Format("02012006") + ".csv"
}

// TSVExporter escribe el reporte separado por tabuladores en Dir.
type TSVExporter struct {
	Dir string
}

// NewTSVExporter construye el exportador.
func NewTSVExporter(dir string) *TSVExporter {
	return &TSVExporter{Dir: dir}
}

// Export escribe encabezado + filas y devuelve el nombre del archivo (sin directorio).
// Se escribe en un temporal del mismo directorio y se renombra: un archivo del mismo día se
// reemplaza y un fallo no deja un reporte a medias.
func (e *TSVExporter) Export(ctx context.Context, rows []entity.ReportRow, now time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("export: %w: %w", domain.ErrExport, err)
	}
	name := FileName(now)

	tmp, err := os.CreateTemp(e.Dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("export: crear temporal en %s: %w: %w", e.Dir, domain.ErrExport, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := writeTSV(tmp, rows); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("export: escribir %s: %w: %w", name, domain.ErrExport, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("export: cerrar %s: %w: %w", name, domain.ErrExport, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return "", fmt.Errorf("export: permisos %s: %w: %w", name, domain.ErrExport, err)
	}
	if err := os.Rename(tmpPath, filepath.Join(e.Dir, name)); err != nil {
		return "", fmt.Errorf("export: renombrar %s: %w: %w", name, domain.ErrExport, err)
	}
	return name, nil
}

func writeTSV(f *os.File, rows []entity.ReportRow) error {
	buf := bufio.NewWriter(f)
	enc := transform.NewWriter(buf, Encoding.NewEncoder())

	if err := writeRecord(enc, entity.ReportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeRecord(enc, row.Record()); err != nil {
			return err
		}
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return buf.Flush()
}

// writeRecord escribe una línea separada por tabuladores terminada en \n.
// Solo se entrecomilla un campo que contiene tabulador, comillas o salto de línea;
// los espacios al inicio o al final se escriben tal cual.
func writeRecord(w io.Writer, record []string) error {
	var b strings.Builder
	for i, field := range record {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(quoteField(field))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func quoteField(field string) string {
	if !strings.ContainsAny(field, "\t\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
