// readings genera el reporte de últimas lecturas de medidores (readings_DDMMYYYY.csv).
//
// Uso: readings
// Credenciales en psqlGiggoUser, psqlGiggoPassword, psqlGiggoHost, psqlGiggoPort, psqlGiggoDatabase.
// En stdout se imprime el nombre del archivo generado o, si algo falla, "An error occurred:" y la traza.
// Los logs estructurados van a stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/giggo/readings-report/internal/application/report"
	"github.com/giggo/readings-report/internal/domain/entity"
	"github.com/giggo/readings-report/internal/infrastructure/export"
	"github.com/giggo/readings-report/internal/infrastructure/postgres"
	"github.com/giggo/readings-report/pkg/config"
	"github.com/giggo/readings-report/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Env: "production", Level: "info"})

	fileName, err := run(context.Background(), log)
	emit(os.Stdout, log, fileName, err)
}

// emit escribe la única señal del proceso en out: el nombre del archivo o la traza del error.
// En ambos casos el proceso termina normalmente.
func emit(out io.Writer, log *logger.Logger, fileName string, err error) {
	if err != nil {
		log.Error().Stack().Err(err).Msg("An error occurred")
		fmt.Fprintf(out, "An error occurred:\n%+v\n", err)
		return
	}
	fmt.Fprintln(out, fileName)
}

func run(ctx context.Context, log *logger.Logger) (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", errors.WithStack(err)
	}

	conn, err := postgres.Connect(ctx, cfg.DB)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer conn.Close(ctx)

	uc := report.NewGenerateReportUseCase(
		postgres.NewReadingReportRepository(conn),
		export.NewTSVExporter(cfg.Report.OutputDir),
		entity.DefaultSelectionPolicy(),
		nil,
		log,
	)
	return uc.Execute(ctx)
}
