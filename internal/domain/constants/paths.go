package constants

import "time"

// 시스템 경로 상수들
const (
	// sysctl 영구 설정 파일
	SysctlConfFile = "/etc/sysctl.conf"

	// OS 감지 관련 경로
	OSReleaseFile = "/etc/os-release"

	// 백업 디렉토리
	DefaultBackupDir = "/var/lib/fasterdata-tuning/backups"

	// 시스템 네트워크 경로
	SysClassNet = "/sys/class/net"
)

// 외부 도구 이름
const (
	SysctlTool  = "sysctl"
	EthtoolTool = "ethtool"
	TCTool      = "tc"
	IPTool      = "ip"
)

// 튜닝 관련 상수들
const (
	// 루프백 인터페이스는 항상 제외
	LoopbackInterface = "lo"

	// 관리 블록 표시자. sysctl.conf에서 이 두 줄 사이를 매 실행마다 교체합니다.
	ManagedBlockBegin = "# BEGIN fasterdata-tuning managed block"
	ManagedBlockEnd   = "# END fasterdata-tuning managed block"

	// SysctlBackupName은 sysctl 설정 파일 백업 파일명의 접두사입니다
	SysctlBackupName = "sysctl"

	// 파일 권한
	ConfigFilePermission = 0644

	// 타임아웃
	DefaultCommandTimeout = 30 // seconds

	// 특정 값으로 ring 크기를 지정하지 않고 NIC 최대값을 쓰라는 표시
	RingSizeMax = "max"

	// fq qdisc가 없거나 maxrate가 설정되지 않았을 때의 현재 값
	PacingNone = "none"
)

// 기본값 상수들
const (
	DefaultLogLevel       = "info"
	DefaultConfirmDelay   = 500 * time.Millisecond
	DefaultConfirmTries   = 3
	BitsPerGigabit        = 1_000_000_000
	TenGigabitPerSecond   = 10 * BitsPerGigabit
	FortyGigabitPerSecond = 40 * BitsPerGigabit
	JumboFrameMTU         = 8000
)
