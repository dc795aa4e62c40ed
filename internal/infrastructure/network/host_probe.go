package network

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

var (
	// "2: ens3: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 ..."
	linkLinePattern = regexp.MustCompile(`^\d+:\s+([^:]+):`)
	speedPattern    = regexp.MustCompile(`Speed:\s*([0-9]+)\s*Mb/s`)
	mtuPattern      = regexp.MustCompile(`mtu\s+(\d+)`)
)

// HostProbe는 ip/ethtool/sysfs로 인터페이스 정보를 조회합니다
type HostProbe struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	timeout         time.Duration
	logger          *logrus.Logger
}

// NewHostProbe는 새로운 HostProbe를 생성합니다
func NewHostProbe(executor interfaces.CommandExecutor, fs interfaces.FileSystem, timeout time.Duration, logger *logrus.Logger) *HostProbe {
	return &HostProbe{
		commandExecutor: executor,
		fileSystem:      fs,
		timeout:         timeout,
		logger:          logger,
	}
}

// ListInterfaces는 `ip -o link show`로 loopback을 제외한 인터페이스를 나열합니다
func (p *HostProbe) ListInterfaces(ctx context.Context) ([]string, error) {
	output, err := p.commandExecutor.ExecuteWithTimeout(ctx, p.timeout, constants.IPTool, "-o", "link", "show")
	if err != nil {
		return nil, errors.NewSystemError("ip -o link show 실패", err)
	}

	seen := make(map[string]bool)
	for _, line := range strings.Split(string(output), "\n") {
		m := linkLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		// VLAN/veth는 "eth0.100@eth0" 형태로 출력됩니다
		if idx := strings.Index(name, "@"); idx != -1 {
			name = name[:idx]
		}
		if name == constants.LoopbackInterface || name == "" {
			continue
		}
		seen[name] = true
	}

	ifaces := make([]string, 0, len(seen))
	for name := range seen {
		ifaces = append(ifaces, name)
	}
	sort.Strings(ifaces)
	return ifaces, nil
}

// LinkSpeed는 `ethtool IFACE`의 "Speed: 10000Mb/s"를 bps로 반환합니다. 알 수 없으면 0입니다.
func (p *HostProbe) LinkSpeed(ctx context.Context, iface string) int64 {
	output, err := p.commandExecutor.ExecuteWithTimeout(ctx, p.timeout, constants.EthtoolTool, iface)
	if err != nil {
		// 가상 인터페이스는 ethtool을 지원하지 않을 수 있습니다
		p.logger.WithError(err).WithField("interface", iface).Debug("ethtool speed query failed")
		return 0
	}

	m := speedPattern.FindStringSubmatch(string(output))
	if m == nil {
		// "Speed: Unknown!"
		return 0
	}
	mbps, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return mbps * 1_000_000
}

// MTU는 sysfs에서 MTU를 읽고, 실패하면 `ip link show dev IFACE`를 해석합니다. 알 수 없으면 0입니다.
func (p *HostProbe) MTU(ctx context.Context, iface string) int {
	if data, err := p.fileSystem.ReadFile(filepath.Join(constants.SysClassNet, iface, "mtu")); err == nil {
		if mtu, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			return mtu
		}
	}

	output, err := p.commandExecutor.ExecuteWithTimeout(ctx, p.timeout, constants.IPTool, "link", "show", "dev", iface)
	if err != nil {
		p.logger.WithError(err).WithField("interface", iface).Debug("MTU query failed")
		return 0
	}
	m := mtuPattern.FindStringSubmatch(string(output))
	if m == nil {
		return 0
	}
	mtu, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return mtu
}

// InterfaceExists는 /sys/class/net/IFACE 존재 여부를 반환합니다
func (p *HostProbe) InterfaceExists(iface string) bool {
	return p.fileSystem.Exists(filepath.Join(constants.SysClassNet, iface))
}

