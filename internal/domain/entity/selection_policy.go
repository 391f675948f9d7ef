package entity

import "time"

// Valores fijos de selección del reporte.
const (
	DefaultLookback       = 15 * 24 * time.Hour
	StatusLiquidado       = "LIQUIDADO" // Cuenta liquidada
	StatusAnulado         = "ANULADO"   // Cuenta anulada
	DefaultExcludedSerial = "8868310"
)

// SelectionPolicy reglas que decide qué lecturas entran en el reporte.
type SelectionPolicy struct {
	Lookback         time.Duration
	ExcludedStatuses []string
	ExcludedSerial   string
}

// DefaultSelectionPolicy últimos 15 días, sin cuentas liquidadas ni anuladas y sin el medidor 8868310.
func DefaultSelectionPolicy() SelectionPolicy {
	return SelectionPolicy{
		Lookback:         DefaultLookback,
		ExcludedStatuses: []string{StatusLiquidado, StatusAnulado},
		ExcludedSerial:   DefaultExcludedSerial,
	}
}

// Since límite inferior exclusivo de la ventana: solo cuentan lecturas con fecha > Since(now).
func (p SelectionPolicy) Since(now time.Time) time.Time {
	return now.Add(-p.Lookback)
}

// Excludes indica si una lectura queda fuera por estado del cliente o por número de serie.
// status nil significa cliente ausente; igual que en SQL, NULL <> ALL(...) no pasa el filtro
// salvo que la lista de estados excluidos esté vacía.
func (p SelectionPolicy) Excludes(status *string, serial string) bool {
	if serial == p.ExcludedSerial {
		return true
	}
	if status == nil {
		return len(p.ExcludedStatuses) > 0
	}
	for _, s := range p.ExcludedStatuses {
		if *status == s {
			return true
		}
	}
	return false
}
