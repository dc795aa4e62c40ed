package catalogue

import (
	"os"
	"path/filepath"
	"testing"

	"fasterdata-tuning/internal/domain/entities"
	domainErrors "fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/infrastructure/adapters"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalogue = `directives:
  - scope: sysctl
    key: net.core.rmem_max
    value: 67108864
  - scope: SYSCTL
    key: net.ipv4.tcp_rmem
    value: "4096 87380 33554432"
  - scope: nic_ring
    interface: eth0
    key: rx
    value: max
  - scope: nic_pause
    interface: eth0
    key: rx
    value: off
    verify_only: true
  - scope: tc_pacing
    interface: eth0
    key: maxrate
    value: 10gbit
`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestParse(t *testing.T) {
	catalogue, err := Parse([]byte(sampleCatalogue))
	require.NoError(t, err)
	require.Equal(t, 5, catalogue.Len())

	first := catalogue.Directives[0]
	assert.Equal(t, entities.ScopeSysctl, first.Scope())
	assert.Equal(t, "67108864", first.DesiredValue())

	assert.Equal(t, entities.ScopeSysctl, catalogue.Directives[1].Scope())

	pause := catalogue.Directives[3]
	assert.Equal(t, entities.ScopeNICPause, pause.Scope())
	assert.Equal(t, "off", pause.DesiredValue())
	assert.True(t, pause.VerifyOnly())

	assert.False(t, catalogue.Directives[4].VerifyOnly())
	assert.Equal(t, "eth0", catalogue.Directives[4].TargetInterface())
}

func TestParse_PacingNoneVerifyOnly(t *testing.T) {
	catalogue, err := Parse([]byte("directives:\n  - scope: tc_pacing\n    interface: eth0\n    key: maxrate\n    value: none\n    verify_only: true\n"))
	require.NoError(t, err)

	d := catalogue.Directives[0]
	assert.Equal(t, "none", d.DesiredValue())
	assert.True(t, d.VerifyOnly())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "깨진 YAML",
			content: "directives: [",
		},
		{
			name:    "빈 카탈로그",
			content: "directives: []\n",
		},
		{
			name:    "알 수 없는 필드",
			content: "directives:\n  - scope: sysctl\n    key: net.core.rmem_max\n    value: 1\n    extra: yes\n",
		},
		{
			name:    "알 수 없는 scope",
			content: "directives:\n  - scope: bogus\n    key: x\n    value: 1\n",
		},
		{
			name:    "인터페이스 없는 ring 지시",
			content: "directives:\n  - scope: nic_ring\n    key: rx\n    value: 4096\n",
		},
		{
			name:    "중복 지시",
			content: "directives:\n  - scope: sysctl\n    key: net.core.rmem_max\n    value: 1\n  - scope: sysctl\n    key: net.core.rmem_max\n    value: 2\n",
		},
		{
			name:    "확인 전용이 아닌 maxrate none",
			content: "directives:\n  - scope: tc_pacing\n    interface: eth0\n    key: maxrate\n    value: none\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogue.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalogue), 0644))

	loader := NewYAMLLoader(adapters.NewRealFileSystem(), quietLogger())

	catalogue, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, catalogue.Source)
	assert.Equal(t, 5, catalogue.Len())

	_, err = loader.Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, domainErrors.IsValidationError(err))

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("directives: []\n"), 0644))
	_, err = loader.Load(badPath)
	assert.True(t, domainErrors.IsValidationError(err))
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	original, err := Parse([]byte(sampleCatalogue))
	require.NoError(t, err)

	data, err := Marshal(original)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, original.Len(), parsed.Len())
	for i := range original.Directives {
		assert.Equal(t, original.Directives[i].String(), parsed.Directives[i].String())
		assert.Equal(t, original.Directives[i].VerifyOnly(), parsed.Directives[i].VerifyOnly())
	}
}
