package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/giggo/readings-report/internal/application/report"
	"github.com/giggo/readings-report/internal/domain"
	"github.com/giggo/readings-report/internal/domain/entity"
	"github.com/giggo/readings-report/internal/domain/repository"
	"github.com/giggo/readings-report/internal/infrastructure/export"
	"github.com/giggo/readings-report/internal/infrastructure/memory"
	"github.com/giggo/readings-report/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func status(s string) *string { return &s }

// seedStore carga un escenario con medidores activos, liquidados, anulados y fuera de ventana.
func seedStore() *memory.ReadingReportRepo {
	repo := memory.NewReadingReportRepository(fixedClock)
	repo.AddClients(
		memory.Client{Client: "C1", Building: "B1", Ramal: "R1", Situation: status("ATIVO")},
		memory.Client{Client: "C2", Building: "B2", Ramal: "R1", Situation: status("LIQUIDADO")},
		memory.Client{Client: "C3", Building: "B3", Ramal: "R2", Situation: status("ANULADO")},
		memory.Client{Client: "C4", Building: "B4", Ramal: "R2", Situation: status("ATIVO")},
		memory.Client{Client: "C5", Building: "B5", Ramal: "R3", Situation: status("ATIVO")},
	)
	repo.AddContracts(
		memory.ContractInfo{Device: "12345", Client: "C1", Name: "Silva, João", Street: "Rua A", NumPol: "10", Floor: "1", Local: "L1"},
		memory.ContractInfo{Device: "22222", Client: "C2", Name: "Liquidado SA", Street: "Rua B", NumPol: "2", Floor: "0", Local: "L2"},
		memory.ContractInfo{Device: "33333", Client: "C3", Name: "Anulado Lda", Street: "Rua C", NumPol: "3", Floor: "0", Local: "L3"},
		memory.ContractInfo{Device: "8868310", Client: "C4", Name: "Excluido", Street: "Rua D", NumPol: "4", Floor: "0", Local: "L4"},
		memory.ContractInfo{Device: "00777", Client: "C5", Name: "Costa", Street: "Rua E", NumPol: "5", Floor: "2", Local: "L5"},
		memory.ContractInfo{Device: "99999", Client: "C5", Name: "Costa", Street: "Rua E", NumPol: "5", Floor: "3", Local: "L6"},
	)
	repo.AddVolumes(
		memory.Volume{Device: "12345", Volume: vol("50.0"), Date: testNow.Add(-24 * time.Hour)},
		memory.Volume{Device: "12345", Volume: vol("47.3"), Date: testNow.Add(-10 * 24 * time.Hour)},
		memory.Volume{Device: "22222", Volume: vol("10"), Date: testNow.Add(-2 * time.Hour)},
		memory.Volume{Device: "33333", Volume: vol("11"), Date: testNow.Add(-3 * time.Hour)},
		memory.Volume{Device: "8868310", Volume: vol("12"), Date: testNow.Add(-4 * time.Hour)},
		memory.Volume{Device: "00777", Volume: vol("7.9"), Date: testNow.Add(-14 * 24 * time.Hour)},
		memory.Volume{Device: "99999", Volume: vol("99"), Date: testNow.Add(-16 * 24 * time.Hour)},
	)
	return repo
}

// readReport decodifica el UTF-16 y separa por tabuladores.
func readReport(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xFF, 0xFE}), "debe empezar con BOM UTF-16LE")

	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = '\t'
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func newUseCase(repo repository.ReadingReportRepository, dir string) *report.GenerateReportUseCase {
	return report.NewGenerateReportUseCase(
		repo,
		export.NewTSVExporter(dir),
		entity.DefaultSelectionPolicy(),
		fixedClock,
		logger.Nop(),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_GeneraReporteCompleto(t *testing.T) {
	dir := t.TempDir()
	uc := newUseCase(seedStore(), dir)

	fileName, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, export.FileName(testNow), fileName)

	records := readReport(t, filepath.Join(dir, fileName))
	require.Len(t, records, 3, "encabezado + 2 medidores válidos")
	assert.Equal(t, entity.ReportColumns, records[0])

	// Orden explícito por número de serie: "00777" < "12345".
	assert.Equal(t, []string{"1", "Costa", "Rua E 5 2", "L5", "C5", "00777", "B5", "7", "03/10/2026 09:30"}, records[1])
	assert.Equal(t, []string{"2", "Silva  João", "Rua A 10 1", "L1", "C1", "12345", "B1", "50", "16/10/2026 09:30"}, records[2])
}

func TestExecute_PropiedadesDelReporte(t *testing.T) {
	dir := t.TempDir()
	fileName, err := newUseCase(seedStore(), dir).Execute(context.Background())
	require.NoError(t, err)

	records := readReport(t, filepath.Join(dir, fileName))[1:]
	tsPattern := regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}$`)
	intPattern := regexp.MustCompile(`^-?\d+$`)
	since := testNow.Add(-entity.DefaultLookback)

	seen := map[string]bool{}
	for i, rec := range records {
		assert.Equal(t, strconv.Itoa(i+1), rec[0], "correlativo denso 1..N")

		serial := rec[5]
		assert.False(t, seen[serial], "un solo registro por medidor: %s", serial)
		seen[serial] = true
		assert.NotEqual(t, entity.DefaultExcludedSerial, serial)
		assert.NotContains(t, []string{"22222", "33333"}, serial, "clientes LIQUIDADO/ANULADO fuera")

		assert.Regexp(t, intPattern, rec[7], "Leitura1 sin punto decimal")
		assert.Regexp(t, tsPattern, rec[8])

		at, err := time.Parse(entity.TimestampLayout, rec[8])
		require.NoError(t, err)
		assert.True(t, at.After(since), "lectura dentro de los 15 días: %s", rec[8])
	}
	assert.NotContains(t, seen, "99999", "lectura de hace 16 días fuera de ventana")
}

// Ejemplo: medidor 12345 con 50.0 (T-1d) y 47.3 (T-10d) -> una sola fila con 50 y la fecha de T-1d.
func TestExecute_UltimaLecturaPorMedidor(t *testing.T) {
	repo := memory.NewReadingReportRepository(fixedClock)
	repo.AddClients(memory.Client{Client: "C1", Situation: status("ATIVO")})
	repo.AddContracts(memory.ContractInfo{Device: "12345", Client: "C1", Name: "Silva"})
	repo.AddVolumes(
		memory.Volume{Device: "12345", Volume: vol("47.3"), Date: testNow.Add(-10 * 24 * time.Hour)},
		memory.Volume{Device: "12345", Volume: vol("50.0"), Date: testNow.Add(-24 * time.Hour)},
	)

	dir := t.TempDir()
	fileName, err := newUseCase(repo, dir).Execute(context.Background())
	require.NoError(t, err)

	records := readReport(t, filepath.Join(dir, fileName))
	require.Len(t, records, 2)
	assert.Equal(t, "12345", records[1][5])
	assert.Equal(t, "50", records[1][7])
	assert.Equal(t, testNow.Add(-24*time.Hour).Format(entity.TimestampLayout), records[1][8])
}

func TestExecute_ClienteLiquidadoAusente(t *testing.T) {
	repo := memory.NewReadingReportRepository(fixedClock)
	repo.AddClients(memory.Client{Client: "C2", Situation: status("LIQUIDADO")})
	repo.AddContracts(memory.ContractInfo{Device: "22222", Client: "C2"})
	repo.AddVolumes(memory.Volume{Device: "22222", Volume: vol("10"), Date: testNow.Add(-time.Hour)})

	dir := t.TempDir()
	fileName, err := newUseCase(repo, dir).Execute(context.Background())
	require.NoError(t, err)

	records := readReport(t, filepath.Join(dir, fileName))
	assert.Len(t, records, 1, "solo el encabezado")
}

// Dos ejecuciones el mismo día escriben el mismo archivo; gana el contenido de la última.
func TestExecute_MismoDiaSobrescribe(t *testing.T) {
	dir := t.TempDir()
	repo := seedStore()

	first, err := newUseCase(repo, dir).Execute(context.Background())
	require.NoError(t, err)

	repo.AddClients(memory.Client{Client: "C6", Situation: status("ATIVO")})
	repo.AddContracts(memory.ContractInfo{Device: "55555", Client: "C6"})
	repo.AddVolumes(memory.Volume{Device: "55555", Volume: vol("1"), Date: testNow.Add(-time.Minute)})

	second, err := newUseCase(repo, dir).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "sin temporales ni duplicados")
	assert.Len(t, readReport(t, filepath.Join(dir, second)), 4)
}

type failingRepo struct{ err error }

func (f failingRepo) LatestReadings(context.Context, entity.SelectionPolicy) ([]repository.LatestReading, error) {
	return nil, f.err
}

func TestExecute_ErrorDeConsultaNoGeneraArchivo(t *testing.T) {
	dir := t.TempDir()
	queryErr := errors.Join(domain.ErrQuery, errors.New("relation \"volume\" does not exist"))

	fileName, err := newUseCase(failingRepo{err: queryErr}, dir).Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.Empty(t, fileName)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExecute_ErrorDeTransformacionNoGeneraArchivo(t *testing.T) {
	repo := memory.NewReadingReportRepository(fixedClock)
	repo.AddClients(memory.Client{Client: "C1", Situation: status("ATIVO")})
	repo.AddContracts(memory.ContractInfo{Device: "12345", Client: "C1"})
	repo.AddVolumes(memory.Volume{Device: "12345", Date: testNow.Add(-time.Hour)}) // volumen NULL

	dir := t.TempDir()
	_, err := newUseCase(repo, dir).Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransform)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
