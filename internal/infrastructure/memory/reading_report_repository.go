package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/giggo/readings-report/internal/domain/entity"
	"github.com/giggo/readings-report/internal/domain/repository"
)

var _ repository.ReadingReportRepository = (*ReadingReportRepo)(nil)

// Volume fila de la relación volume: una lectura de un medidor.
type Volume struct {
	Device string
	Volume decimal.NullDecimal
	Date   time.Time
}

// ContractInfo fila de infocontrato: vincula un medidor con consumidor y dirección.
type ContractInfo struct {
	Device string
	Client string
	Name   string
	Street string
	NumPol string
	Floor  string
	Local  string
}

// Client fila de clients. Situation nil equivale a NULL.
type Client struct {
	Client    string
	Building  string
	Ramal     string
	Situation *string
}

// ReadingReportRepo repositorio en memoria para pruebas y demos.
// Reproduce los LEFT JOIN, filtros, DISTINCT ON y numeración de la consulta PostgreSQL.
// La relación ramaisrua no aporta columnas al reporte y no se modela.
type ReadingReportRepo struct {
	mu        sync.RWMutex
	volumes   []Volume
	contracts []ContractInfo
	clients   []Client
	now       func() time.Time
}

// NewReadingReportRepository construye un repositorio vacío; now hace de NOW() del servidor.
func NewReadingReportRepository(now func() time.Time) *ReadingReportRepo {
	if now == nil {
		now = time.Now
	}
	return &ReadingReportRepo{now: now}
}

// AddVolumes agrega lecturas.
func (r *ReadingReportRepo) AddVolumes(v ...Volume) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volumes = append(r.volumes, v...)
}

// AddContracts agrega contratos.
func (r *ReadingReportRepo) AddContracts(c ...ContractInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = append(r.contracts, c...)
}

// AddClients agrega clientes.
func (r *ReadingReportRepo) AddClients(c ...Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = append(r.clients, c...)
}

type joinedRow struct {
	volume   Volume
	contract *ContractInfo
	client   *Client
}

// LatestReadings misma semántica que postgres.ReadingReportRepo.LatestReadings.
func (r *ReadingReportRepo) LatestReadings(ctx context.Context, policy entity.SelectionPolicy) ([]repository.LatestReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	since := policy.Since(r.now())

	var candidates []joinedRow
	for _, v := range r.volumes {
		if !v.Date.After(since) {
			continue
		}
		for _, jr := range r.join(v) {
			var status *string
			if jr.client != nil {
				status = jr.client.Situation
			}
			if policy.Excludes(status, v.Device) {
				continue
			}
			candidates = append(candidates, jr)
		}
	}

	// ORDER BY device, date DESC, volume DESC NULLS LAST; el estable conserva el orden de inserción en empates.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].volume, candidates[j].volume
		if a.Device != b.Device {
			return a.Device < b.Device
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if a.Volume.Valid != b.Volume.Valid {
			return a.Volume.Valid
		}
		return a.Volume.Decimal.GreaterThan(b.Volume.Decimal)
	})

	results := []repository.LatestReading{}
	for i, jr := range candidates {
		if i > 0 && candidates[i-1].volume.Device == jr.volume.Device {
			continue
		}
		results = append(results, project(int64(len(results)+1), jr))
	}
	return results, nil
}

// join devuelve las combinaciones LEFT JOIN de una lectura con contratos y clientes.
func (r *ReadingReportRepo) join(v Volume) []joinedRow {
	var out []joinedRow
	for i := range r.contracts {
		c := &r.contracts[i]
		if c.Device != v.Device {
			continue
		}
		matched := false
		for j := range r.clients {
			cl := &r.clients[j]
			if cl.Client == c.Client {
				out = append(out, joinedRow{volume: v, contract: c, client: cl})
				matched = true
			}
		}
		if !matched {
			out = append(out, joinedRow{volume: v, contract: c})
		}
	}
	if len(out) == 0 {
		out = append(out, joinedRow{volume: v})
	}
	return out
}

func project(seq int64, jr joinedRow) repository.LatestReading {
	row := repository.LatestReading{
		Seq:          seq,
		SerialNumber: jr.volume.Device,
		Volume:       jr.volume.Volume,
		ReadAt:       jr.volume.Date,
		Address:      "  ",
	}
	if c := jr.contract; c != nil {
		row.Client = strings.ReplaceAll(c.Name, ",", " ")
		row.Address = strings.Join([]string{c.Street, c.NumPol, c.Floor}, " ")
		row.MeterLocationID = c.Local
		row.ConsumerID = c.Client
	}
	if cl := jr.client; cl != nil {
		row.BuildingID = cl.Building
	}
	return row
}
