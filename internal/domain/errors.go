package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Cada etapa del reporte envuelve su error con uno de estos para que el caller use errors.Is.
var (
	ErrConfig     = errors.New("configuración inválida")
	ErrConnection = errors.New("conexión a la base de datos")
	ErrQuery      = errors.New("consulta de lecturas")
	ErrTransform  = errors.New("transformación de lecturas")
	ErrExport     = errors.New("exportación del reporte")
)
