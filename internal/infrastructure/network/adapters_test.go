package network

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"fasterdata-tuning/internal/domain/entities"
	domainErrors "fasterdata-tuning/internal/domain/errors"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testTimeout = 30 * time.Second

// MockCommandExecutor는 테스트용 Mock CommandExecutor입니다
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	argList := []interface{}{ctx, command}
	for _, arg := range args {
		argList = append(argList, arg)
	}
	mockArgs := m.Called(argList...)
	return mockArgs.Get(0).([]byte), mockArgs.Error(1)
}

func (m *MockCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	argList := []interface{}{ctx, timeout, command}
	for _, arg := range args {
		argList = append(argList, arg)
	}
	mockArgs := m.Called(argList...)
	return mockArgs.Get(0).([]byte), mockArgs.Error(1)
}

// MockFileSystem는 테스트용 Mock FileSystem입니다
type MockFileSystem struct {
	mock.Mock
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockFileSystem) ListFiles(path string) ([]string, error) {
	args := m.Called(path)
	return args.Get(0).([]string), args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func mustDirective(t *testing.T, scope entities.Scope, key, value, iface string) entities.TuningDirective {
	t.Helper()
	d, err := entities.NewTuningDirective(scope, key, value, iface)
	require.NoError(t, err)
	return d
}

const ringOutput = `Ring parameters for eth0:
Pre-set maximums:
RX:             4096
RX Mini:        n/a
RX Jumbo:       n/a
TX:             4096
Current hardware settings:
RX:             1024
RX Mini:        n/a
RX Jumbo:       n/a
TX:             512
`

const pauseOutput = `Pause parameters for eth0:
Autonegotiate:	on
RX:		off
TX:		on
`

func TestParseRingParameters(t *testing.T) {
	params, err := ParseRingParameters(ringOutput)
	require.NoError(t, err)

	assert.Equal(t, "4096", params.Max["rx"])
	assert.Equal(t, "4096", params.Max["tx"])
	assert.Equal(t, "n/a", params.Max["rx-mini"])
	assert.Equal(t, "1024", params.Current["rx"])
	assert.Equal(t, "512", params.Current["tx"])
	assert.Equal(t, "n/a", params.Current["rx-jumbo"])

	_, err = ParseRingParameters("Cannot get device ring settings: Operation not supported\n")
	assert.Error(t, err)
}

func TestParsePauseParameters(t *testing.T) {
	params, err := ParsePauseParameters(pauseOutput)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"autoneg": "on", "rx": "off", "tx": "on"}, params)

	_, err = ParsePauseParameters("garbage")
	assert.Error(t, err)
}

func TestParseFQMaxrate(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected string
	}{
		{
			name:     "fq with maxrate",
			output:   "qdisc fq 8001: root refcnt 2 limit 10000p flow_limit 100p buckets 1024 orphan_mask 1023 quantum 3028 initial_quantum 15140 maxrate 10Gbit\n",
			expected: "10Gbit",
		},
		{
			name:     "fq without maxrate",
			output:   "qdisc fq 8001: root refcnt 2 limit 10000p flow_limit 100p buckets 1024\n",
			expected: "none",
		},
		{
			name:     "root is not fq",
			output:   "qdisc mq 0: root\nqdisc fq 0: parent :1 limit 10000p maxrate 1Gbit\n",
			expected: "none",
		},
		{
			name:     "empty output",
			output:   "",
			expected: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFQMaxrate(tt.output))
		})
	}
}

func TestSysctlAdapter(t *testing.T) {
	ctx := context.Background()
	d := mustDirective(t, entities.ScopeSysctl, "net.ipv4.tcp_rmem", "4096  87380   33554432", "")

	t.Run("현재 값 조회", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "sysctl", "-n", "net.ipv4.tcp_rmem").
			Return([]byte("4096\t87380\t6291456\n"), nil).Once()

		adapter := NewSysctlAdapter(executor, testTimeout, quietLogger())
		value, err := adapter.ReadCurrent(ctx, d)

		require.NoError(t, err)
		assert.Equal(t, "4096 87380 6291456", value)
		executor.AssertExpectations(t)
	})

	t.Run("알 수 없는 키는 READ 에러", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "sysctl", "-n", "net.ipv4.tcp_rmem").
			Return([]byte(nil), domainErrors.NewSystemError("sysctl: cannot stat", nil)).Once()

		adapter := NewSysctlAdapter(executor, testTimeout, quietLogger())
		_, err := adapter.ReadCurrent(ctx, d)

		assert.True(t, domainErrors.IsReadError(err))
	})

	t.Run("값 설정과 비교", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "sysctl", "-w", "net.ipv4.tcp_rmem=4096 87380 33554432").
			Return([]byte(""), nil).Once()

		adapter := NewSysctlAdapter(executor, testTimeout, quietLogger())
		desired, err := adapter.ResolveDesired(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, "4096 87380 33554432", desired)

		require.NoError(t, adapter.Write(ctx, d, desired))
		assert.True(t, adapter.Equal("4096\t87380\t33554432", desired))
		assert.False(t, adapter.Equal("4096 87380 6291456", desired))
		executor.AssertExpectations(t)
	})
}

func TestRingAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("현재 값 조회", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "ethtool", "-g", "eth0").
			Return([]byte(ringOutput), nil).Once()

		adapter := NewRingAdapter(executor, fs, testTimeout, quietLogger())
		value, err := adapter.ReadCurrent(ctx, mustDirective(t, entities.ScopeNICRing, "rx", "4096", "eth0"))

		require.NoError(t, err)
		assert.Equal(t, "1024", value)
		executor.AssertExpectations(t)
	})

	t.Run("max는 pre-set maximum으로 해석", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "ethtool", "-g", "eth0").
			Return([]byte(ringOutput), nil).Once()

		adapter := NewRingAdapter(executor, fs, testTimeout, quietLogger())
		value, err := adapter.ResolveDesired(ctx, mustDirective(t, entities.ScopeNICRing, "tx", "max", "eth0"))

		require.NoError(t, err)
		assert.Equal(t, "4096", value)
	})

	t.Run("숫자가 아닌 목표 값은 VALIDATION 에러", func(t *testing.T) {
		adapter := NewRingAdapter(new(MockCommandExecutor), new(MockFileSystem), testTimeout, quietLogger())
		_, err := adapter.ResolveDesired(ctx, mustDirective(t, entities.ScopeNICRing, "rx", "big", "eth0"))

		assert.True(t, domainErrors.IsValidationError(err))
	})

	t.Run("지원하지 않는 ring은 READ 에러", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "ethtool", "-g", "eth0").
			Return([]byte(ringOutput), nil).Once()

		adapter := NewRingAdapter(executor, fs, testTimeout, quietLogger())
		_, err := adapter.ReadCurrent(ctx, mustDirective(t, entities.ScopeNICRing, "rx-jumbo", "4096", "eth0"))

		assert.True(t, domainErrors.IsReadError(err))
	})

	t.Run("없는 인터페이스는 명령 실행 없이 INTERFACE_NOT_FOUND", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth9").Return(false)

		adapter := NewRingAdapter(executor, fs, testTimeout, quietLogger())
		d := mustDirective(t, entities.ScopeNICRing, "rx", "4096", "eth9")

		_, err := adapter.ReadCurrent(ctx, d)
		assert.True(t, domainErrors.IsInterfaceNotFoundError(err))

		err = adapter.Write(ctx, d, "4096")
		assert.True(t, domainErrors.IsInterfaceNotFoundError(err))
		executor.AssertNotCalled(t, "ExecuteWithTimeout")
	})

	t.Run("ethtool -G 실행", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "ethtool", "-G", "eth0", "rx", "4096").
			Return([]byte(""), nil).Once()

		adapter := NewRingAdapter(executor, fs, testTimeout, quietLogger())
		d := mustDirective(t, entities.ScopeNICRing, "rx", "4096", "eth0")

		require.NoError(t, adapter.Write(ctx, d, "4096"))
		assert.Equal(t, []string{"ethtool", "-G", "eth0", "rx", "4096"}, adapter.CommandLine(d, "4096"))
		assert.True(t, adapter.Equal("4096", "04096"))
		executor.AssertExpectations(t)
	})
}

func TestPauseAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("현재 값 조회", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "ethtool", "-a", "eth0").
			Return([]byte(pauseOutput), nil).Once()

		adapter := NewPauseAdapter(executor, fs, testTimeout, quietLogger())
		value, err := adapter.ReadCurrent(ctx, mustDirective(t, entities.ScopeNICPause, "tx", "off", "eth0"))

		require.NoError(t, err)
		assert.Equal(t, "on", value)
	})

	t.Run("목표 값 정규화", func(t *testing.T) {
		adapter := NewPauseAdapter(new(MockCommandExecutor), new(MockFileSystem), testTimeout, quietLogger())

		value, err := adapter.ResolveDesired(ctx, mustDirective(t, entities.ScopeNICPause, "rx", "true", "eth0"))
		require.NoError(t, err)
		assert.Equal(t, "on", value)

		value, err = adapter.ResolveDesired(ctx, mustDirective(t, entities.ScopeNICPause, "rx", "0", "eth0"))
		require.NoError(t, err)
		assert.Equal(t, "off", value)

		_, err = adapter.ResolveDesired(ctx, mustDirective(t, entities.ScopeNICPause, "rx", "maybe", "eth0"))
		assert.True(t, domainErrors.IsValidationError(err))
	})

	t.Run("ethtool -A 명령", func(t *testing.T) {
		adapter := NewPauseAdapter(new(MockCommandExecutor), new(MockFileSystem), testTimeout, quietLogger())
		d := mustDirective(t, entities.ScopeNICPause, "rx", "off", "eth0")

		assert.Equal(t, []string{"ethtool", "-A", "eth0", "rx", "off"}, adapter.CommandLine(d, "off"))
	})
}

func TestPacingAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("fq가 없으면 none", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout, "tc", "qdisc", "show", "dev", "eth0", "root").
			Return([]byte("qdisc mq 0: root\n"), nil).Once()

		adapter := NewPacingAdapter(executor, fs, testTimeout, quietLogger())
		value, err := adapter.ReadCurrent(ctx, mustDirective(t, entities.ScopeTCPacing, "maxrate", "10gbit", "eth0"))

		require.NoError(t, err)
		assert.Equal(t, "none", value)
		assert.False(t, adapter.Equal(value, "10gbit"))
	})

	t.Run("tc 표기 단위 비교", func(t *testing.T) {
		adapter := NewPacingAdapter(new(MockCommandExecutor), new(MockFileSystem), testTimeout, quietLogger())

		assert.True(t, adapter.Equal("10Gbit", "10gbit"))
		assert.True(t, adapter.Equal("10000Mbit", "10gbit"))
	})

	t.Run("잘못된 속도는 VALIDATION 에러", func(t *testing.T) {
		adapter := NewPacingAdapter(new(MockCommandExecutor), new(MockFileSystem), testTimeout, quietLogger())
		_, err := adapter.ResolveDesired(ctx, mustDirective(t, entities.ScopeTCPacing, "maxrate", "fast", "eth0"))

		assert.True(t, domainErrors.IsValidationError(err))
	})

	t.Run("none은 pacing 없음으로 해석", func(t *testing.T) {
		adapter := NewPacingAdapter(new(MockCommandExecutor), new(MockFileSystem), testTimeout, quietLogger())
		d := mustDirective(t, entities.ScopeTCPacing, "maxrate", "none", "eth0").AsVerifyOnly()

		desired, err := adapter.ResolveDesired(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, "none", desired)
		assert.True(t, adapter.Equal("none", desired))
		assert.False(t, adapter.Equal("10Gbit", desired))
	})

	t.Run("none은 쓰지 않음", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		adapter := NewPacingAdapter(executor, new(MockFileSystem), testTimeout, quietLogger())

		err := adapter.Write(ctx, mustDirective(t, entities.ScopeTCPacing, "maxrate", "none", "eth0"), "none")

		assert.True(t, domainErrors.IsValidationError(err))
		executor.AssertNotCalled(t, "ExecuteWithTimeout")
	})

	t.Run("tc qdisc replace 실행", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout,
			"tc", "qdisc", "replace", "dev", "eth0", "root", "fq", "maxrate", "10gbit").
			Return([]byte(""), nil).Once()

		adapter := NewPacingAdapter(executor, fs, testTimeout, quietLogger())
		d := mustDirective(t, entities.ScopeTCPacing, "maxrate", "10gbit", "eth0")

		require.NoError(t, adapter.Write(ctx, d, "10gbit"))
		executor.AssertExpectations(t)
	})

	t.Run("도구 실패는 그대로 전달", func(t *testing.T) {
		executor := new(MockCommandExecutor)
		fs := new(MockFileSystem)
		fs.On("Exists", "/sys/class/net/eth0").Return(true)
		toolErr := domainErrors.NewPermissionDeniedError("tc 실패", errors.New("Operation not permitted"))
		executor.On("ExecuteWithTimeout", mock.Anything, testTimeout,
			"tc", "qdisc", "replace", "dev", "eth0", "root", "fq", "maxrate", "10gbit").
			Return([]byte(nil), toolErr).Once()

		adapter := NewPacingAdapter(executor, fs, testTimeout, quietLogger())
		err := adapter.Write(ctx, mustDirective(t, entities.ScopeTCPacing, "maxrate", "10gbit", "eth0"), "10gbit")

		assert.True(t, domainErrors.IsPermissionDeniedError(err))
	})
}

func TestSettingHandlerFactory(t *testing.T) {
	factory := NewSettingHandlerFactory(new(MockCommandExecutor), new(MockFileSystem), testTimeout, quietLogger())

	for _, scope := range []entities.Scope{entities.ScopeSysctl, entities.ScopeNICRing, entities.ScopeNICPause, entities.ScopeTCPacing} {
		handler, err := factory.HandlerFor(scope)
		require.NoError(t, err)
		assert.Equal(t, scope, handler.Scope())
	}

	_, err := factory.HandlerFor(entities.Scope("BOGUS"))
	assert.True(t, domainErrors.IsSystemError(err))
}
