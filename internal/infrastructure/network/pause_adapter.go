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

// ParsePauseParameters는 `ethtool -a IFACE` 출력을 autoneg/rx/tx 맵으로 해석합니다.
//
//	Pause parameters for eth0:
//	Autonegotiate:  on
//	RX:             off
//	TX:             off
func ParsePauseParameters(output string) (map[string]string, error) {
	params := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		parts := strings.SplitN(strings.TrimSpace(scanner.Text()), ":", 2)
		if len(parts) != 2 {
			continue
		}
		value := strings.TrimSpace(parts[1])
		switch strings.ToLower(strings.TrimSpace(parts[0])) {
		case "autonegotiate":
			params["autoneg"] = value
		case "rx":
			params["rx"] = value
		case "tx":
			params["tx"] = value
		}
	}

	if len(params) == 0 {
		return nil, fmt.Errorf("pause 파라미터 출력에 RX/TX 항목이 없음")
	}
	return params, nil
}

// PauseAdapter는 ethtool -a/-A로 이더넷 흐름 제어(pause frame)를 조회/설정합니다.
type PauseAdapter struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewPauseAdapter는 새로운 PauseAdapter를 생성합니다.
func NewPauseAdapter(executor interfaces.CommandExecutor, fs interfaces.FileSystem, timeout time.Duration, logger *logrus.Logger) *PauseAdapter {
	return &PauseAdapter{
		commandExecutor: executor,
		fileSystem:      fs,
		timeout:         timeout,
		logger:          logger,
	}
}

// Scope는 NIC_PAUSE를 반환합니다.
func (a *PauseAdapter) Scope() entities.Scope {
	return entities.ScopeNICPause
}

// ReadCurrent는 현재 pause 설정을 on/off로 반환합니다.
func (a *PauseAdapter) ReadCurrent(ctx context.Context, d entities.TuningDirective) (string, error) {
	iface := d.TargetInterface()
	if err := requireInterface(a.fileSystem, iface); err != nil {
		return "", err
	}

	output, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.EthtoolTool, "-a", iface)
	if err != nil {
		return "", errors.NewReadError(fmt.Sprintf("ethtool -a %s 실패", iface), err)
	}

	params, err := ParsePauseParameters(string(output))
	if err != nil {
		return "", errors.NewReadError(fmt.Sprintf("ethtool -a %s 출력 해석 실패", iface), err)
	}

	value, ok := params[d.Key()]
	if !ok {
		return "", errors.NewReadError(fmt.Sprintf("%s의 pause 파라미터 %s가 출력에 없음", iface, d.Key()), nil)
	}
	return value, nil
}

// ResolveDesired는 true/1/yes 같은 표기를 on/off로 정규화합니다.
func (a *PauseAdapter) ResolveDesired(ctx context.Context, d entities.TuningDirective) (string, error) {
	on, err := services.ParseOnOff(d.DesiredValue())
	if err != nil {
		return "", errors.NewValidationError("pause 목표 값이 유효하지 않음", err)
	}
	if on {
		return "on", nil
	}
	return "off", nil
}

// Equal은 on/off 비교를 수행합니다.
func (a *PauseAdapter) Equal(current, desired string) bool {
	return services.OnOffEqual(current, desired)
}

// Write는 `ethtool -A IFACE KEY on|off`로 설정합니다.
func (a *PauseAdapter) Write(ctx context.Context, d entities.TuningDirective, value string) error {
	if err := requireInterface(a.fileSystem, d.TargetInterface()); err != nil {
		return err
	}

	a.logger.WithFields(logrus.Fields{
		"interface": d.TargetInterface(),
		"key":       d.Key(),
		"value":     value,
	}).Debug("pause frame 설정")

	_, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.timeout, constants.EthtoolTool, a.CommandLine(d, value)[1:]...)
	return err
}

// CommandLine은 Write가 실행할 명령을 반환합니다.
func (a *PauseAdapter) CommandLine(d entities.TuningDirective, value string) []string {
	return []string{constants.EthtoolTool, "-A", d.TargetInterface(), d.Key(), value}
}
