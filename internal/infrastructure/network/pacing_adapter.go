package network

import (
	"bufio"
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

// ParseFQMaxrate는 `tc qdisc show dev IFACE root` 출력에서 root fq qdisc의 maxrate를 찾습니다.
// root가 fq가 아니거나 maxrate가 없으면 "none"을 반환합니다.
func ParseFQMaxrate(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "qdisc" || fields[1] != "fq" {
			continue
		}

		isRoot := false
		for _, f := range fields {
			if f == "root" {
				isRoot = true
				break
			}
		}
		if !isRoot {
			continue
		}

		for i := 0; i < len(fields)-1; i++ {
			if fields[i] == "maxrate" {
				return fields[i+1]
			}
		}
		return constants.PacingNone
	}
	return constants.PacingNone
}

// PacingAdapter는 tc로 root fq qdisc의 maxrate pacing을 조회/설정합니다.
type PacingAdapter struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewPacingAdapter는 새로운 PacingAdapter를 생성합니다.
func NewPacingAdapter(executor interfaces.CommandExecutor, fs interfaces.FileSystem, timeout time.Duration, logger *logrus.Logger) *PacingAdapter {
	return &PacingAdapter{
		commandExecutor: executor,
		fileSystem:      fs,
		timeout:         timeout,
		logger:          logger,
	}
}

// Scope는 TC_PACING을 반환합니다.
func (a *PacingAdapter) Scope() entities.Scope {
	return entities.ScopeTCPacing
}

// ReadCurrent는 현재 maxrate를 반환합니다 (없으면 "none").
func (a *PacingAdapter) ReadCurrent(ctx context.Context, d entities.TuningDirective) (string, error) {
	iface := d.TargetInterface()
	if err := requireInterface(a.fileSystem, iface); err != nil {
		return "", err
	}

	output, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.TCTool, "qdisc", "show", "dev", iface, "root")
	if err != nil {
		return "", errors.NewReadError(fmt.Sprintf("tc qdisc show dev %s 실패", iface), err)
	}
	return ParseFQMaxrate(string(output)), nil
}

// ResolveDesired는 tc가 해석할 수 있는 속도인지 확인합니다. "none"은 pacing이 없어야 함을 뜻합니다.
func (a *PacingAdapter) ResolveDesired(ctx context.Context, d entities.TuningDirective) (string, error) {
	if strings.EqualFold(d.DesiredValue(), constants.PacingNone) {
		return constants.PacingNone, nil
	}
	if _, err := services.ParseTCRate(d.DesiredValue()); err != nil {
		return "", errors.NewValidationError("pacing 속도가 유효하지 않음", err)
	}
	return d.DesiredValue(), nil
}

// Equal은 bits/s로 비교합니다.
func (a *PacingAdapter) Equal(current, desired string) bool {
	return services.RateEqual(current, desired)
}

// Write는 `tc qdisc replace dev IFACE root fq maxrate RATE`를 실행합니다.
func (a *PacingAdapter) Write(ctx context.Context, d entities.TuningDirective, value string) error {
	// tc에는 maxrate를 없애는 값이 없습니다
	if strings.EqualFold(value, constants.PacingNone) {
		return errors.NewValidationError("maxrate none은 확인 전용 지시로만 사용할 수 있음", nil)
	}
	if err := requireInterface(a.fileSystem, d.TargetInterface()); err != nil {
		return err
	}

	a.logger.WithFields(logrus.Fields{
		"interface": d.TargetInterface(),
		"maxrate":   value,
	}).Debug("fq pacing 설정")

	_, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.TCTool, a.CommandLine(d, value)[1:]...)
	return err
}

// CommandLine은 Write가 실행할 명령을 반환합니다.
func (a *PacingAdapter) CommandLine(d entities.TuningDirective, value string) []string {
	return []string{constants.TCTool, "qdisc", "replace", "dev", d.TargetInterface(), "root", "fq", "maxrate", value}
}
