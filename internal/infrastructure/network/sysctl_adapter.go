package network

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"
	"fasterdata-tuning/internal/domain/services"

	"github.com/sirupsen/logrus"
)

// SysctlAdapter는 sysctl 명령으로 커널 파라미터를 조회/설정합니다.
type SysctlAdapter struct {
	commandExecutor interfaces.CommandExecutor
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewSysctlAdapter는 새로운 SysctlAdapter를 생성합니다.
func NewSysctlAdapter(executor interfaces.CommandExecutor, timeout time.Duration, logger *logrus.Logger) *SysctlAdapter {
	return &SysctlAdapter{
		commandExecutor: executor,
		timeout:         timeout,
		logger:          logger,
	}
}

// Scope는 SYSCTL을 반환합니다.
func (a *SysctlAdapter) Scope() entities.Scope {
	return entities.ScopeSysctl
}

// ReadCurrent는 `sysctl -n KEY`로 현재 값을 읽습니다.
func (a *SysctlAdapter) ReadCurrent(ctx context.Context, d entities.TuningDirective) (string, error) {
	output, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.SysctlTool, "-n", d.Key())
	if err != nil {
		return "", errors.NewReadError(fmt.Sprintf("sysctl -n %s 실패", d.Key()), err)
	}

	value := services.NormalizeSysctlValue(string(output))
	if value == "" {
		return "", errors.NewReadError(fmt.Sprintf("sysctl %s 출력이 비어있음", d.Key()), nil)
	}
	return value, nil
}

// ResolveDesired는 목표 값의 공백을 정리해서 반환합니다.
func (a *SysctlAdapter) ResolveDesired(ctx context.Context, d entities.TuningDirective) (string, error) {
	return services.NormalizeSysctlValue(d.DesiredValue()), nil
}

// Equal은 필드 단위 수치 비교를 수행합니다.
func (a *SysctlAdapter) Equal(current, desired string) bool {
	return services.SysctlValuesEqual(current, desired)
}

// Write는 `sysctl -w KEY=VALUE`로 값을 설정합니다.
func (a *SysctlAdapter) Write(ctx context.Context, d entities.TuningDirective, value string) error {
	args := a.CommandLine(d, value)[1:]
	a.logger.WithFields(logrus.Fields{
		"key":   d.Key(),
		"value": value,
	}).Debug("sysctl 값 설정")

	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.SysctlTool, args...); err != nil {
		return err
	}
	return nil
}

// CommandLine은 Write가 실행할 명령을 반환합니다.
func (a *SysctlAdapter) CommandLine(d entities.TuningDirective, value string) []string {
	return []string{constants.SysctlTool, "-w", d.Key() + "=" + strings.TrimSpace(value)}
}
