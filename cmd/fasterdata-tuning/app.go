package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"fasterdata-tuning/internal/application/usecases"
	"fasterdata-tuning/internal/domain/entities"
	domainErrors "fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/services"
	"fasterdata-tuning/internal/infrastructure/container"
	"fasterdata-tuning/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
)

// Application은 한 번의 튜닝 실행을 조립합니다
type Application struct {
	container      *container.Container
	logger         *logrus.Logger
	out            io.Writer
	applyUseCase   *usecases.ApplyTuningUseCase
	persistUseCase *usecases.PersistSysctlUseCase
}

// NewApplication은 새로운 Application을 생성합니다
func NewApplication(container *container.Container, logger *logrus.Logger, out io.Writer) *Application {
	return &Application{
		container:      container,
		logger:         logger,
		out:            out,
		applyUseCase:   container.GetApplyTuningUseCase(),
		persistUseCase: container.GetPersistSysctlUseCase(),
	}
}

// Run은 카탈로그를 준비하고 적용한 뒤 결과를 출력합니다. 반환하는 에러는 항상 치명적 에러입니다.
func (a *Application) Run(ctx context.Context, opts *tuneOptions) (int, error) {
	started := a.container.GetClock().Now()

	osName := "unknown"
	if osInfo, err := a.container.GetOSDetector().DetectOS(); err == nil {
		osName = osInfo.String()
	}
	metrics.SetTunerInfo(version, osName, opts.dryRun)

	catalogue, facts, err := a.loadCatalogue(ctx, opts)
	if err != nil {
		return usecases.ExitFatal, err
	}

	output := a.applyUseCase.Execute(ctx, usecases.ApplyTuningInput{
		Catalogue: catalogue,
		DryRun:    opts.dryRun,
	})
	code := output.ExitCode()

	// sysctl 파일 기록 실패는 경고로만 남깁니다. 종료 코드는 지시 결과로만 정해집니다.
	var persisted *usecases.PersistSysctlOutput
	var persistErr error
	if opts.persist {
		persisted, persistErr = a.persistUseCase.Execute(ctx, usecases.PersistSysctlInput{
			Results: output.Results(),
			DryRun:  opts.dryRun,
		})
		if persistErr != nil {
			a.logger.WithError(persistErr).Warn("Failed to persist sysctl settings, applied values will not survive a reboot")
			if errType := domainErrors.TypeOf(persistErr); errType != "" {
				metrics.RecordError(string(errType))
			}
			metrics.SetSysctlPersisted(false)
		} else {
			metrics.SetSysctlPersisted(persisted.Written)
		}
	}

	report := &Report{
		Source:     catalogue.Source,
		Facts:      facts,
		Output:     output,
		Persisted:  persisted,
		PersistErr: persistErr,
	}
	if err := report.Write(a.out); err != nil {
		a.logger.WithError(err).Warn("Failed to write report")
	}

	a.writeMetrics(code, started)
	return code, nil
}

// loadCatalogue는 --catalogue 파일을 읽거나 호스트 정보로 카탈로그를 계산합니다
func (a *Application) loadCatalogue(ctx context.Context, opts *tuneOptions) (entities.Catalogue, *services.HostFacts, error) {
	if opts.cataloguePath != "" {
		if opts.pacingGbps > 0 || opts.ringMax || opts.pauseFrames != "" || len(opts.interfaces) > 0 {
			a.logger.Warn("--pacing, --ring-max, --pause-frames and --interfaces are ignored when --catalogue is given")
		}
		catalogue, err := a.container.GetCatalogueLoader().Load(opts.cataloguePath)
		if err != nil {
			return entities.Catalogue{}, nil, err
		}
		return catalogue, nil, nil
	}

	catalogue, facts, err := a.container.GetCatalogueBuilder().Build(ctx, buildOptions(opts))
	if err != nil {
		return entities.Catalogue{}, nil, fmt.Errorf("failed to compute tuning catalogue: %w", err)
	}
	return catalogue, &facts, nil
}

// writeMetrics는 METRICS_FILE이 설정된 경우 textfile을 기록합니다
func (a *Application) writeMetrics(code int, started time.Time) {
	path := a.container.GetConfig().Output.MetricsFile
	if path == "" {
		return
	}

	now := a.container.GetClock().Now()
	metrics.RecordRun(code, now.Sub(started), now)
	if err := metrics.WriteTextfile(path); err != nil {
		a.logger.WithError(err).WithField("path", path).Warn("Failed to write metrics textfile")
		return
	}
	a.logger.WithField("path", path).Debug("Metrics textfile written")
}
