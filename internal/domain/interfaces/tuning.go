package interfaces

import (
	"context"

	"fasterdata-tuning/internal/domain/entities"
)

// SettingHandler는 한 scope의 지시를 외부 도구로 조회/적용하는 인터페이스입니다
type SettingHandler interface {
	// Scope는 처리하는 scope를 반환합니다
	Scope() entities.Scope

	// ReadCurrent는 도구로 현재 값을 조회합니다
	ReadCurrent(ctx context.Context, d entities.TuningDirective) (string, error)

	// ResolveDesired는 "max" 같은 상대 값을 실제 값으로 해석합니다
	ResolveDesired(ctx context.Context, d entities.TuningDirective) (string, error)

	// Equal은 scope 규칙에 따라 현재 값과 목표 값을 비교합니다
	Equal(current, desired string) bool

	// Write는 값을 적용합니다
	Write(ctx context.Context, d entities.TuningDirective, value string) error

	// CommandLine은 Write가 실행할 명령을 반환합니다 (dry-run 출력용)
	CommandLine(d entities.TuningDirective, value string) []string
}

// HandlerRegistry는 scope별 SettingHandler를 찾아줍니다
type HandlerRegistry interface {
	HandlerFor(scope entities.Scope) (SettingHandler, error)
}

// HostProbe는 카탈로그 계산에 필요한 호스트 정보를 조회합니다
type HostProbe interface {
	// ListInterfaces는 loopback을 제외한 인터페이스 이름을 정렬해서 반환합니다
	ListInterfaces(ctx context.Context) ([]string, error)

	// LinkSpeed는 bps 단위 링크 속도를 반환합니다. 알 수 없으면 0입니다.
	LinkSpeed(ctx context.Context, iface string) int64

	// MTU는 인터페이스 MTU를 반환합니다. 알 수 없으면 0입니다.
	MTU(ctx context.Context, iface string) int

	// InterfaceExists는 /sys/class/net 아래에 인터페이스가 있는지 확인합니다
	InterfaceExists(iface string) bool
}

// CatalogueLoader는 파일에서 카탈로그를 읽습니다
type CatalogueLoader interface {
	Load(path string) (entities.Catalogue, error)
}

// BackupService는 설정 파일 백업을 관리합니다
type BackupService interface {
	CreateBackup(ctx context.Context, name string, configPath string) (string, error)
	HasBackup(ctx context.Context, name string) bool
	LatestBackup(ctx context.Context, name string) (string, error)
}
