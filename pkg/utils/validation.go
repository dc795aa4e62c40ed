package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// 리눅스 IFNAMSIZ(16)에서 NUL 종료 문자를 뺀 길이
const maxInterfaceNameLength = 15

var (
	// 인터페이스 이름 패턴: 공백, '/', ':' 제외
	interfacePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-@]+$`)

	// sysctl 키 패턴: net.core.rmem_max, net.ipv4.conf.eth0/100.rp_filter 등
	sysctlKeyPattern = regexp.MustCompile(`^[a-z0-9_\-]+(\.[A-Za-z0-9_\-/]+)+$`)
)

// ValidateInterfaceName은 인터페이스 이름이 유효한지 검증
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("인터페이스 이름이 비어있음")
	}

	if len(name) > maxInterfaceNameLength {
		return fmt.Errorf("인터페이스 이름이 너무 김: %s (최대 %d자)", name, maxInterfaceNameLength)
	}

	if name == "." || name == ".." || !interfacePattern.MatchString(name) {
		return fmt.Errorf("잘못된 인터페이스 이름 형식: %s", name)
	}

	return nil
}

// ValidateSysctlKey는 sysctl 키가 유효한지 검증
func ValidateSysctlKey(key string) error {
	if key == "" {
		return fmt.Errorf("sysctl 키가 비어있음")
	}

	if !sysctlKeyPattern.MatchString(key) {
		return fmt.Errorf("잘못된 sysctl 키 형식: %s", key)
	}

	return nil
}

// ValidateSysctlBlock은 sysctl.conf에 기록할 블록이 "key = value" 줄과 주석만 포함하는지 검증
func ValidateSysctlBlock(block []byte) error {
	if len(block) == 0 {
		return fmt.Errorf("빈 설정")
	}

	for i, line := range strings.Split(strings.TrimRight(string(block), "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		parts := strings.SplitN(trimmed, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("%d번째 줄에 '=' 없음: %q", i+1, line)
		}
		if err := ValidateSysctlKey(strings.TrimSpace(parts[0])); err != nil {
			return fmt.Errorf("%d번째 줄: %w", i+1, err)
		}
		if strings.TrimSpace(parts[1]) == "" {
			return fmt.Errorf("%d번째 줄 값이 비어있음: %q", i+1, line)
		}
	}

	return nil
}
