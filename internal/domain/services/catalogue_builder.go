package services

import (
	"context"
	"regexp"
	"sort"

	"fasterdata-tuning/internal/domain/constants"
	"fasterdata-tuning/internal/domain/entities"
	"fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/interfaces"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

var (
	centOSName   = regexp.MustCompile(`^CentOS`)
	debianName   = regexp.MustCompile(`^Debian`)
	versionSeven = regexp.MustCompile(`^7`)
	versionSix   = regexp.MustCompile(`^6`)
	versionEight = regexp.MustCompile(`^8`)
)

// BuildOptions는 계산 카탈로그에 포함할 선택 항목입니다
type BuildOptions struct {
	// PacingGbps가 0보다 크면 모든 대상 인터페이스에 fq maxrate 지시를 추가합니다
	PacingGbps float64
	// RingMax가 true면 RX/TX ring을 NIC 최대값으로 올리는 지시를 추가합니다
	RingMax bool
	// PauseFrames가 비어있지 않으면 rx/tx pause 설정을 확인만 하는 지시를 추가합니다
	PauseFrames string
	// Interfaces가 비어있지 않으면 ring/pause/pacing 지시를 이 인터페이스에만 만듭니다.
	// sysctl 값은 항상 호스트 전체 인터페이스의 최대 속도/MTU로 계산합니다.
	Interfaces []string
}

// HostFacts는 카탈로그 계산에 사용된 호스트 정보입니다
type HostFacts struct {
	Interfaces  []string // 호스트에서 탐색된 인터페이스
	Targets     []string // NIC 지시 대상 인터페이스
	Speeds      map[string]int64
	MTUs        map[string]int
	MaxSpeedBps int64
	MaxMTU      int
	OS          interfaces.OSInfo
}

// CatalogueBuilder는 호스트 정보로부터 권장 튜닝 카탈로그를 계산하는 도메인 서비스입니다
type CatalogueBuilder struct {
	probe      interfaces.HostProbe
	osDetector interfaces.OSDetector
	logger     *logrus.Logger
}

// NewCatalogueBuilder는 새로운 CatalogueBuilder를 생성합니다
func NewCatalogueBuilder(probe interfaces.HostProbe, osDetector interfaces.OSDetector, logger *logrus.Logger) *CatalogueBuilder {
	return &CatalogueBuilder{
		probe:      probe,
		osDetector: osDetector,
		logger:     logger,
	}
}

// Build는 호스트를 조사하고 카탈로그를 계산합니다
func (b *CatalogueBuilder) Build(ctx context.Context, opts BuildOptions) (entities.Catalogue, HostFacts, error) {
	facts, err := b.gatherFacts(ctx)
	if err != nil {
		return entities.Catalogue{}, HostFacts{}, err
	}

	facts.Targets = facts.Interfaces
	if len(opts.Interfaces) > 0 {
		facts.Targets = append([]string(nil), opts.Interfaces...)
		for _, iface := range facts.Targets {
			// 없는 인터페이스는 적용 단계에서 InterfaceNotFound로 보고됩니다
			if !b.probe.InterfaceExists(iface) {
				b.logger.WithField("interface", iface).Warn("Requested interface not present on host")
			}
		}
	}

	settings := ComputeSysctlSettings(facts.MaxSpeedBps, facts.MaxMTU, facts.OS)

	catalogue := entities.Catalogue{Source: entities.CatalogueSourceComputed}
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d, err := entities.NewTuningDirective(entities.ScopeSysctl, k, settings[k], "")
		if err != nil {
			return entities.Catalogue{}, HostFacts{}, errors.NewValidationError("계산된 sysctl 지시가 유효하지 않음", err)
		}
		catalogue.Directives = append(catalogue.Directives, d)
	}

	for _, iface := range facts.Targets {
		// 속도를 보고하는 물리 NIC에만 ring/pause 지시를 만듭니다. 명시한 인터페이스는 그대로 사용합니다.
		nicCapable := len(opts.Interfaces) > 0 || facts.Speeds[iface] > 0

		if opts.RingMax && nicCapable {
			for _, key := range []string{"rx", "tx"} {
				d, err := entities.NewTuningDirective(entities.ScopeNICRing, key, constants.RingSizeMax, iface)
				if err != nil {
					return entities.Catalogue{}, HostFacts{}, errors.NewValidationError("ring 지시 생성 실패", err)
				}
				catalogue.Directives = append(catalogue.Directives, d)
			}
		}

		if opts.PauseFrames != "" && nicCapable {
			for _, key := range []string{"rx", "tx"} {
				d, err := entities.NewTuningDirective(entities.ScopeNICPause, key, opts.PauseFrames, iface)
				if err != nil {
					return entities.Catalogue{}, HostFacts{}, errors.NewValidationError("pause 지시 생성 실패", err)
				}
				catalogue.Directives = append(catalogue.Directives, d.AsVerifyOnly())
			}
		}

		if opts.PacingGbps > 0 {
			d, err := entities.NewTuningDirective(entities.ScopeTCPacing, "maxrate", FormatGbitRate(opts.PacingGbps), iface)
			if err != nil {
				return entities.Catalogue{}, HostFacts{}, errors.NewValidationError("pacing 지시 생성 실패", err)
			}
			catalogue.Directives = append(catalogue.Directives, d)
		}
	}

	if err := catalogue.Validate(); err != nil {
		return entities.Catalogue{}, HostFacts{}, errors.NewValidationError("계산된 카탈로그가 유효하지 않음", err)
	}

	b.logger.WithFields(logrus.Fields{
		"directives": catalogue.Len(),
		"sysctl":     len(catalogue.ByScope(entities.ScopeSysctl)),
		"nic_ring":   len(catalogue.ByScope(entities.ScopeNICRing)),
		"nic_pause":  len(catalogue.ByScope(entities.ScopeNICPause)),
		"tc_pacing":  len(catalogue.ByScope(entities.ScopeTCPacing)),
		"interfaces": len(facts.Targets),
	}).Info("튜닝 카탈로그 계산 완료")

	return catalogue, facts, nil
}

// gatherFacts는 호스트의 모든 인터페이스에서 최대 속도, 최대 MTU를 구하고 OS 정보를 수집합니다
func (b *CatalogueBuilder) gatherFacts(ctx context.Context) (HostFacts, error) {
	facts := HostFacts{
		Speeds: make(map[string]int64),
		MTUs:   make(map[string]int),
	}

	ifaces, err := b.probe.ListInterfaces(ctx)
	if err != nil {
		return HostFacts{}, err
	}
	facts.Interfaces = ifaces

	for _, iface := range facts.Interfaces {
		// 탐색과 조회 사이에 사라진 인터페이스
		if !b.probe.InterfaceExists(iface) {
			b.logger.WithField("interface", iface).Warn("Interface not present on host")
			continue
		}
		speed := b.probe.LinkSpeed(ctx, iface)
		mtu := b.probe.MTU(ctx, iface)
		facts.Speeds[iface] = speed
		facts.MTUs[iface] = mtu

		b.logger.WithFields(logrus.Fields{
			"interface": iface,
			"speed":     FormatLinkSpeed(speed),
			"mtu":       mtu,
		}).Info("Interface detected")

		if speed > facts.MaxSpeedBps {
			facts.MaxSpeedBps = speed
		}
		if mtu > facts.MaxMTU {
			facts.MaxMTU = mtu
		}
	}

	osInfo, err := b.osDetector.DetectOS()
	if err != nil {
		// 배포판 규칙만 빠지므로 치명적이지 않습니다
		b.logger.WithError(err).Warn("OS detection failed, distribution specific rules skipped")
	}
	facts.OS = osInfo

	b.logger.WithFields(logrus.Fields{
		"max_speed": FormatLinkSpeed(facts.MaxSpeedBps),
		"max_mtu":   facts.MaxMTU,
		"os":        facts.OS.String(),
	}).Info("Host facts gathered")

	return facts, nil
}

// ComputeSysctlSettings는 링크 속도, MTU, 배포판에 따라 권장 sysctl 값을 계산합니다
func ComputeSysctlSettings(maxSpeedBps int64, maxMTU int, osInfo interfaces.OSInfo) map[string]string {
	settings := map[string]string{
		"net.core.rmem_max":            "67108864",
		"net.core.wmem_max":            "67108864",
		"net.ipv4.tcp_rmem":            "4096 87380 33554432",
		"net.ipv4.tcp_wmem":            "4096 65536 33554432",
		"net.ipv4.tcp_no_metrics_save": "1",
		"net.core.default_qdisc":       "fq",
	}

	switch {
	case maxSpeedBps >= constants.FortyGigabitPerSecond:
		settings["net.core.rmem_max"] = "536870912"
		settings["net.core.wmem_max"] = "536870912"
		settings["net.ipv4.tcp_rmem"] = "4096 87380 268435456"
		settings["net.ipv4.tcp_wmem"] = "4096 65536 268435456"
	case maxSpeedBps >= constants.TenGigabitPerSecond:
		settings["net.core.rmem_max"] = "268435456"
		settings["net.core.wmem_max"] = "268435456"
		settings["net.ipv4.tcp_rmem"] = "4096 87380 134217728"
		settings["net.ipv4.tcp_wmem"] = "4096 65536 134217728"
	}

	// 점보 프레임
	if maxMTU > constants.JumboFrameMTU {
		settings["net.ipv4.tcp_mtu_probing"] = "1"
	}

	switch {
	case centOSName.MatchString(osInfo.Name):
		if versionSeven.MatchString(osInfo.VersionID) {
			settings["net.core.default_qdisc"] = "fq"
		} else if versionSix.MatchString(osInfo.VersionID) && maxSpeedBps >= constants.TenGigabitPerSecond {
			settings["net.core.netdev_max_backlog"] = "250000"
		}
	case debianName.MatchString(osInfo.Name):
		if versionEight.MatchString(osInfo.VersionID) {
			settings["net.core.default_qdisc"] = "fq"
		}
	}

	return settings
}

// FormatLinkSpeed는 bps를 사람이 읽기 쉬운 형태로 변환합니다 (10000000000 -> "10 Gb/s")
func FormatLinkSpeed(bps int64) string {
	if bps <= 0 {
		return "unknown"
	}
	value, prefix := humanize.ComputeSI(float64(bps))
	return humanize.FtoaWithDigits(value, 2) + " " + prefix + "b/s"
}
