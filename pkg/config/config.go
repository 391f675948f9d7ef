package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/giggo/readings-report/internal/domain"
)

// Variables de entorno con las credenciales de PostgreSQL (nombres exactos, sensibles a mayúsculas).
const (
	EnvUser     = "psqlGiggoUser"
	EnvPassword = "psqlGiggoPassword"
	EnvHost     = "psqlGiggoHost"
	EnvPort     = "psqlGiggoPort"
	EnvDatabase = "psqlGiggoDatabase"
)

// DefaultOutputDir directorio fijo donde se deja el reporte.
const DefaultOutputDir = "/home/giggo/nodejs/events"

// Config agrupa la configuración del proceso. Se construye una vez con Load y no se modifica.
type Config struct {
	DB     DBConfig
	Report ReportConfig
}

// DBConfig configuración de PostgreSQL.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ReportConfig destino del archivo.
type ReportConfig struct {
	OutputDir string
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

var bindings = []struct {
	key string
	env string
}{
	{"db.user", EnvUser},
	{"db.password", EnvPassword},
	{"db.host", EnvHost},
	{"db.port", EnvPort},
	{"db.name", EnvDatabase},
}

// Load lee las credenciales del entorno y las valida antes de intentar conectar.
// Todas las variables son obligatorias; si falta alguna se devuelve un único error
// (domain.ErrConfig) que las nombra.
func Load() (*Config, error) {
	v := viper.New()
	for _, b := range bindings {
		// BindEnv con nombre explícito: viper no lo pasa a mayúsculas.
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", b.env, err)
		}
	}

	var missing []string
	for _, b := range bindings {
		if !v.IsSet(b.key) {
			missing = append(missing, b.env)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: faltan variables de entorno: %s", domain.ErrConfig, strings.Join(missing, ", "))
	}

	port, err := parsePort(v.GetString("db.port"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfig, EnvPort, err)
	}

	return &Config{
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     port,
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  "prefer",
		},
		Report: ReportConfig{
			OutputDir: DefaultOutputDir,
		},
	}, nil
}

func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("puerto %q no numérico", s)
	}
	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("puerto %d fuera de rango", n)
	}
	return n, nil
}
