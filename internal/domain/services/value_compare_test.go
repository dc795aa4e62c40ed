package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysctlValuesEqual(t *testing.T) {
	tests := []struct {
		name    string
		current string
		desired string
		want    bool
	}{
		{"같은 숫자", "4096", "4096", true},
		{"다른 숫자", "1024", "4096", false},
		{"탭 구분 출력", "4096\t87380\t33554432", "4096 87380 33554432", true},
		{"앞자리 0", "01", "1", true},
		{"필드 수 다름", "4096 87380", "4096 87380 33554432", false},
		{"문자열 값", "fq", "fq", true},
		{"다른 문자열", "pfifo_fast", "fq", false},
		{"개행 포함", "67108864\n", "67108864", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SysctlValuesEqual(tt.current, tt.desired))
		})
	}
}

func TestNormalizeSysctlValue(t *testing.T) {
	assert.Equal(t, "4096 87380 33554432", NormalizeSysctlValue(" 4096\t87380   33554432\n"))
}

func TestOnOffEqual(t *testing.T) {
	assert.True(t, OnOffEqual("on", "true"))
	assert.True(t, OnOffEqual("off", "0"))
	assert.False(t, OnOffEqual("on", "off"))
	assert.True(t, OnOffEqual("Unknown", "unknown"))

	_, err := ParseOnOff("maybe")
	assert.Error(t, err)
}

func TestNumericEqual(t *testing.T) {
	assert.True(t, NumericEqual("4096", " 4096"))
	assert.False(t, NumericEqual("1024", "4096"))
	assert.True(t, NumericEqual("n/a", "n/a"))
}

func TestParseTCRate(t *testing.T) {
	tests := []struct {
		input   string
		want    uint64
		wantErr bool
	}{
		{"10gbit", 10_000_000_000, false},
		{"10Gbit", 10_000_000_000, false},
		{"2.5gbit", 2_500_000_000, false},
		{"10000Mbit", 10_000_000_000, false},
		{"1250MBps", 10_000_000_000, false},
		{"550Kbit", 550_000, false},
		{"1Kibit", 1024, false},
		{"800", 800, false},
		{"", 0, true},
		{"fast", 0, true},
		{"-1gbit", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTCRate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRateEqual(t *testing.T) {
	assert.True(t, RateEqual("10Gbit", "10gbit"))
	assert.True(t, RateEqual("10000Mbit", "10gbit"))
	assert.False(t, RateEqual("none", "10gbit"))
	assert.True(t, RateEqual("none", "none"))
}

func TestFormatGbitRate(t *testing.T) {
	assert.Equal(t, "10gbit", FormatGbitRate(10))
	assert.Equal(t, "2.5gbit", FormatGbitRate(2.5))
}
