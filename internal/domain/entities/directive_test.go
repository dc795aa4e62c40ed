package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTuningDirective(t *testing.T) {
	tests := []struct {
		name      string
		scope     Scope
		key       string
		value     string
		iface     string
		wantError bool
		errorType error
	}{
		{
			name:  "유효한 sysctl 지시",
			scope: ScopeSysctl,
			key:   "net.core.rmem_max",
			value: "67108864",
		},
		{
			name:  "소문자 scope도 허용",
			scope: Scope("nic_ring"),
			key:   "rx",
			value: "max",
			iface: "eth0",
		},
		{
			name:      "알 수 없는 scope",
			scope:     Scope("IRQ"),
			key:       "affinity",
			value:     "1",
			wantError: true,
			errorType: ErrUnknownScope,
		},
		{
			name:      "빈 키",
			scope:     ScopeSysctl,
			value:     "1",
			wantError: true,
			errorType: ErrEmptyKey,
		},
		{
			name:      "빈 목표 값",
			scope:     ScopeSysctl,
			key:       "net.core.rmem_max",
			wantError: true,
			errorType: ErrEmptyDesiredValue,
		},
		{
			name:      "sysctl에 인터페이스 지정",
			scope:     ScopeSysctl,
			key:       "net.core.rmem_max",
			value:     "1",
			iface:     "eth0",
			wantError: true,
			errorType: ErrUnexpectedInterface,
		},
		{
			name:      "ring 지시에 인터페이스 없음",
			scope:     ScopeNICRing,
			key:       "rx",
			value:     "4096",
			wantError: true,
			errorType: ErrMissingInterface,
		},
		{
			name:      "pause 지시에 잘못된 키",
			scope:     ScopeNICPause,
			key:       "speed",
			value:     "off",
			iface:     "eth0",
			wantError: true,
			errorType: ErrInvalidKey,
		},
		{
			name:  "pacing 지시",
			scope: ScopeTCPacing,
			key:   "maxrate",
			value: "10gbit",
			iface: "ens3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewTuningDirective(tt.scope, tt.key, tt.value, tt.iface)

			if tt.wantError {
				assert.Error(t, err)
				if tt.errorType != nil {
					assert.True(t, errors.Is(err, tt.errorType), "got %v", err)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.key, d.Key())
			assert.Equal(t, tt.value, d.DesiredValue())
			assert.Equal(t, tt.iface, d.TargetInterface())
			assert.False(t, d.VerifyOnly())
		})
	}
}

func TestTuningDirective_AsVerifyOnlyLeavesOriginal(t *testing.T) {
	d, err := NewTuningDirective(ScopeNICPause, "rx", "off", "eth0")
	require.NoError(t, err)

	v := d.AsVerifyOnly()

	assert.True(t, v.VerifyOnly())
	assert.False(t, d.VerifyOnly())
	assert.Equal(t, d.DesiredValue(), v.DesiredValue())
	assert.Equal(t, "NIC_PAUSE[eth0].rx=off", v.String())
}

func TestApplyResult_Constructors(t *testing.T) {
	d, err := NewTuningDirective(ScopeSysctl, "net.core.rmem_max", "4096", "")
	require.NoError(t, err)

	t.Run("NO_OP 결과", func(t *testing.T) {
		r := NewNoOpResult(d, "4096", false)
		assert.Equal(t, DecisionNoOp, r.Decision())
		assert.False(t, r.Applied())
		assert.False(t, r.Failed())
		prev, ok := r.PreviousValue()
		assert.True(t, ok)
		assert.Equal(t, "4096", prev)
	})

	t.Run("적용된 결과", func(t *testing.T) {
		r := NewAppliedResult(d, "1024", "4096")
		assert.Equal(t, DecisionChange, r.Decision())
		assert.True(t, r.Applied())
		prev, _ := r.PreviousValue()
		assert.Equal(t, "1024", prev)
		assert.Equal(t, "4096", r.CurrentValue())
	})

	t.Run("값을 읽지 못한 실패", func(t *testing.T) {
		r := NewFailedResult(d, DecisionNoOp, nil, errors.New("boom"))
		assert.True(t, r.Failed())
		_, ok := r.PreviousValue()
		assert.False(t, ok)
	})

	t.Run("verify-only 불일치", func(t *testing.T) {
		pause, err := NewTuningDirective(ScopeNICPause, "tx", "off", "eth0")
		require.NoError(t, err)
		r := NewPlannedResult(pause.AsVerifyOnly(), "on", false)
		assert.True(t, r.VerifyMismatch())
		assert.False(t, r.Failed())
	})
}

func TestCatalogue_Validate(t *testing.T) {
	rmem, _ := NewTuningDirective(ScopeSysctl, "net.core.rmem_max", "67108864", "")
	wmem, _ := NewTuningDirective(ScopeSysctl, "net.core.wmem_max", "67108864", "")
	rx0, _ := NewTuningDirective(ScopeNICRing, "rx", "max", "eth0")
	rx1, _ := NewTuningDirective(ScopeNICRing, "rx", "max", "eth1")

	t.Run("유효한 카탈로그", func(t *testing.T) {
		c := Catalogue{Directives: []TuningDirective{rmem, wmem, rx0, rx1}}
		assert.NoError(t, c.Validate())
		assert.Len(t, c.ByScope(ScopeNICRing), 2)
	})

	t.Run("중복 지시", func(t *testing.T) {
		c := Catalogue{Directives: []TuningDirective{rmem, wmem, rmem}}
		err := c.Validate()
		assert.ErrorIs(t, err, ErrDuplicateDirective)
	})

	t.Run("영값 지시", func(t *testing.T) {
		c := Catalogue{Directives: []TuningDirective{{}}}
		assert.Error(t, c.Validate())
	})

	t.Run("maxrate none은 확인 전용만 허용", func(t *testing.T) {
		none, err := NewTuningDirective(ScopeTCPacing, "maxrate", "none", "eth0")
		require.NoError(t, err)

		assert.ErrorIs(t, Catalogue{Directives: []TuningDirective{none}}.Validate(), ErrPacingNoneNotVerifyOnly)
		assert.NoError(t, Catalogue{Directives: []TuningDirective{none.AsVerifyOnly()}}.Validate())
	})
}
