package report

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/giggo/readings-report/internal/domain/entity"
	"github.com/giggo/readings-report/internal/domain/repository"
	"github.com/giggo/readings-report/pkg/logger"
)

// GenerateReportUseCase orquesta el reporte de lecturas: consulta -> transformación -> exportación.
type GenerateReportUseCase struct {
	repo     repository.ReadingReportRepository
	exporter Exporter
	policy   entity.SelectionPolicy
	clock    Clock
	log      *logger.Logger
}

// NewGenerateReportUseCase construye el caso de uso. clock nil usa time.Now.
func NewGenerateReportUseCase(
	repo repository.ReadingReportRepository,
	exporter Exporter,
	policy entity.SelectionPolicy,
	clock Clock,
	log *logger.Logger,
) *GenerateReportUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &GenerateReportUseCase{
		repo:     repo,
		exporter: exporter,
		policy:   policy,
		clock:    clock,
		log:      log,
	}
}

// Execute genera el archivo y devuelve su nombre. Si cualquier etapa falla no se escribe nada.
func (uc *GenerateReportUseCase) Execute(ctx context.Context) (string, error) {
	began := time.Now()

	raw, err := uc.repo.LatestReadings(ctx, uc.policy)
	if err != nil {
		return "", errors.WithStack(err)
	}
	uc.log.Debug().
		Int("rows", len(raw)).
		Dur("elapsed", time.Since(began)).
		Msg("consulta de lecturas ejecutada")

	rows, err := Transform(raw)
	if err != nil {
		return "", errors.WithStack(err)
	}

	fileName, err := uc.exporter.Export(ctx, rows, uc.clock())
	if err != nil {
		return "", errors.WithStack(err)
	}

	uc.log.Info().
		Str("file", fileName).
		Int("rows", len(rows)).
		Dur("lookback", uc.policy.Lookback).
		Msg("reporte de lecturas generado")
	return fileName, nil
}
