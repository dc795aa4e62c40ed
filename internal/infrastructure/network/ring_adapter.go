package network

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"
	"fasterdata-tuning/internal/domain/services"

	"github.com/sirupsen/logrus"
)

// RingParameters는 `ethtool -g` 출력의 두 섹션입니다. 키는 rx, rx-mini, rx-jumbo, tx입니다.
type RingParameters struct {
	Max     map[string]string
	Current map[string]string
}

// ParseRingParameters는 `ethtool -g IFACE` 출력을 해석합니다.
//
//	Ring parameters for eth0:
//	Pre-set maximums:
//	RX:             4096
//	TX:             4096
//	Current hardware settings:
//	RX:             1024
//	TX:             1024
func ParseRingParameters(output string) (RingParameters, error) {
	params := RingParameters{
		Max:     make(map[string]string),
		Current: make(map[string]string),
	}

	var section map[string]string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Pre-set maximums"):
			section = params.Max
			continue
		case strings.HasPrefix(line, "Current hardware settings"):
			section = params.Current
			continue
		}
		if section == nil {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(parts[0]), " ", "-"))
		section[key] = strings.TrimSpace(parts[1])
	}

	if len(params.Current) == 0 {
		return RingParameters{}, fmt.Errorf("ring 파라미터 출력에 'Current hardware settings' 섹션이 없음")
	}
	return params, nil
}

// RingAdapter는 ethtool -g/-G로 NIC ring buffer 크기를 조회/설정합니다.
type RingAdapter struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewRingAdapter는 새로운 RingAdapter를 생성합니다.
func NewRingAdapter(executor interfaces.CommandExecutor, fs interfaces.FileSystem, timeout time.Duration, logger *logrus.Logger) *RingAdapter {
	return &RingAdapter{
		commandExecutor: executor,
		fileSystem:      fs,
		timeout:         timeout,
		logger:          logger,
	}
}

// Scope는 NIC_RING을 반환합니다.
func (a *RingAdapter) Scope() entities.Scope {
	return entities.ScopeNICRing
}

func (a *RingAdapter) query(ctx context.Context, iface string) (RingParameters, error) {
	if err := requireInterface(a.fileSystem, iface); err != nil {
		return RingParameters{}, err
	}

	output, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.EthtoolTool, "-g", iface)
	if err != nil {
		return RingParameters{}, errors.NewReadError(fmt.Sprintf("ethtool -g %s 실패", iface), err)
	}

	params, err := ParseRingParameters(string(output))
	if err != nil {
		return RingParameters{}, errors.NewReadError(fmt.Sprintf("ethtool -g %s 출력 해석 실패", iface), err)
	}
	return params, nil
}

// ReadCurrent는 현재 ring 크기를 반환합니다.
func (a *RingAdapter) ReadCurrent(ctx context.Context, d entities.TuningDirective) (string, error) {
	params, err := a.query(ctx, d.TargetInterface())
	if err != nil {
		return "", err
	}

	value, ok := params.Current[d.Key()]
	if !ok || value == "n/a" {
		return "", errors.NewReadError(fmt.Sprintf("%s의 ring 파라미터 %s를 지원하지 않음", d.TargetInterface(), d.Key()), nil)
	}
	return value, nil
}

// ResolveDesired는 "max"를 NIC의 pre-set maximum으로 바꿉니다.
func (a *RingAdapter) ResolveDesired(ctx context.Context, d entities.TuningDirective) (string, error) {
	if !strings.EqualFold(d.DesiredValue(), constants.RingSizeMax) {
		if _, err := strconv.ParseUint(d.DesiredValue(), 10, 32); err != nil {
			return "", errors.NewValidationError(fmt.Sprintf("ring 크기가 숫자가 아님: %q", d.DesiredValue()), err)
		}
		return d.DesiredValue(), nil
	}

	params, err := a.query(ctx, d.TargetInterface())
	if err != nil {
		return "", err
	}

	value, ok := params.Max[d.Key()]
	if !ok || value == "n/a" {
		return "", errors.NewReadError(fmt.Sprintf("%s의 ring 최대값 %s를 알 수 없음", d.TargetInterface(), d.Key()), nil)
	}
	return value, nil
}

// Equal은 수치 비교를 수행합니다.
func (a *RingAdapter) Equal(current, desired string) bool {
	return services.NumericEqual(current, desired)
}

// Write는 `ethtool -G IFACE KEY VALUE`로 ring 크기를 설정합니다.
func (a *RingAdapter) Write(ctx context.Context, d entities.TuningDirective, value string) error {
	if err := requireInterface(a.fileSystem, d.TargetInterface()); err != nil {
		return err
	}

	a.logger.WithFields(logrus.Fields{
		"interface": d.TargetInterface(),
		"key":       d.Key(),
		"value":     value,
	}).Debug("ring buffer 크기 설정")

	_, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.EthtoolTool, a.CommandLine(d, value)[1:]...)
	return err
}

// CommandLine은 Write가 실행할 명령을 반환합니다.
func (a *RingAdapter) CommandLine(d entities.TuningDirective, value string) []string {
	return []string{constants.EthtoolTool, "-G", d.TargetInterface(), d.Key(), value}
}
