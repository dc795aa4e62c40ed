package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NormalizeSysctlValue는 sysctl 출력의 탭/연속 공백을 단일 공백으로 정리합니다
func NormalizeSysctlValue(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// SysctlValuesEqual은 필드 단위로 비교합니다. 두 필드가 모두 정수이면 수치로 비교합니다.
func SysctlValuesEqual(current, desired string) bool {
	a := strings.Fields(current)
	b := strings.Fields(desired)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		x, errX := strconv.ParseInt(a[i], 10, 64)
		y, errY := strconv.ParseInt(b[i], 10, 64)
		if errX != nil || errY != nil || x != y {
			return false
		}
	}
	return true
}

// ParseOnOff는 ethtool 스타일의 on/off 값을 해석합니다
func ParseOnOff(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("on/off 값이 아님: %q", value)
}

// OnOffEqual은 두 값을 on/off로 해석해서 비교합니다
func OnOffEqual(current, desired string) bool {
	a, errA := ParseOnOff(current)
	b, errB := ParseOnOff(desired)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(desired))
	}
	return a == b
}

// NumericEqual은 두 값을 정수로 비교합니다
func NumericEqual(current, desired string) bool {
	a, errA := strconv.ParseUint(strings.TrimSpace(current), 10, 64)
	b, errB := strconv.ParseUint(strings.TrimSpace(desired), 10, 64)
	if errA != nil || errB != nil {
		return strings.TrimSpace(current) == strings.TrimSpace(desired)
	}
	return a == b
}

// tc(8) 단위표. bit 계열은 bits/s, bps 계열은 bytes/s입니다.
var tcRateUnits = []struct {
	suffix     string
	multiplier float64
}{
	{"tibit", 1 << 40},
	{"gibit", 1 << 30},
	{"mibit", 1 << 20},
	{"kibit", 1 << 10},
	{"tbit", 1e12},
	{"gbit", 1e9},
	{"mbit", 1e6},
	{"kbit", 1e3},
	{"tibps", 8 * (1 << 40)},
	{"gibps", 8 * (1 << 30)},
	{"mibps", 8 * (1 << 20)},
	{"kibps", 8 * (1 << 10)},
	{"tbps", 8e12},
	{"gbps", 8e9},
	{"mbps", 8e6},
	{"kbps", 8e3},
	{"bps", 8},
	{"bit", 1},
}

// ParseTCRate는 tc 속도 표기(10gbit, 10Gbit, 1250MBps...)를 bits/s로 변환합니다.
// 단위 없는 숫자는 tc와 같이 bits/s로 취급합니다.
func ParseTCRate(value string) (uint64, error) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return 0, fmt.Errorf("빈 속도 값")
	}

	multiplier := 1.0
	for _, unit := range tcRateUnits {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.multiplier
			s = strings.TrimSuffix(s, unit.suffix)
			break
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, fmt.Errorf("잘못된 속도 값: %q", value)
	}
	return uint64(math.Round(n * multiplier)), nil
}

// RateEqual은 두 tc 속도 값을 bits/s로 비교합니다
func RateEqual(current, desired string) bool {
	a, errA := ParseTCRate(current)
	b, errB := ParseTCRate(desired)
	if errA != nil || errB != nil {
		return strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(desired))
	}
	return a == b
}

// FormatGbitRate는 Gbps 값을 tc 인자로 변환합니다 (10 -> "10gbit", 2.5 -> "2.5gbit")
func FormatGbitRate(gbps float64) string {
	return strconv.FormatFloat(gbps, 'f', -1, 64) + "gbit"
}
